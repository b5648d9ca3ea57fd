package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestRecord_TagsAuditRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(slog.New(slog.NewJSONHandler(&buf, nil)))

	r.Record(context.Background(), "batch_committed",
		slog.Int("operations", 3),
		slog.String("batch_id", "b-1"),
	)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("parsing audit record: %v", err)
	}

	if record["log_type"] != "audit" {
		t.Fatalf("got log_type %v, want audit", record["log_type"])
	}
	if record["msg"] != "batch_committed" {
		t.Fatalf("got msg %v", record["msg"])
	}
	if record["operations"] != float64(3) {
		t.Fatalf("got operations %v", record["operations"])
	}
}
