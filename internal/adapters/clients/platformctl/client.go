package platformctl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/adimka/admin-console-beta/internal/platform/httpclient"
)

// componentState mirrors the controller's GET /components/{name} response.
type componentState struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// featureState mirrors the controller's GET /features/{name} response.
type featureState struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
}

// Controller talks to the platform controller's management API. It
// implements ports.ComponentRuntime and ports.FeatureManager.
type Controller struct {
	client *httpclient.Client
	logger *slog.Logger
}

// New creates a Controller backed by the given instrumented HTTP client.
func New(client *httpclient.Client, logger *slog.Logger) *Controller {
	return &Controller{client: client, logger: logger}
}

// IsRunning reports whether the named component is running.
func (c *Controller) IsRunning(ctx context.Context, name string) (bool, error) {
	var state componentState
	if err := c.get(ctx, "/components/"+url.PathEscape(name), &state); err != nil {
		return false, err
	}
	return state.State == "running", nil
}

// Start asks the controller to start the named component.
func (c *Controller) Start(ctx context.Context, name string) error {
	return c.post(ctx, "/components/"+url.PathEscape(name)+"/start")
}

// Stop asks the controller to stop the named component.
func (c *Controller) Stop(ctx context.Context, name string) error {
	return c.post(ctx, "/components/"+url.PathEscape(name)+"/stop")
}

// IsInstalled reports whether the named feature is installed.
func (c *Controller) IsInstalled(ctx context.Context, name string) (bool, error) {
	var state featureState
	if err := c.get(ctx, "/features/"+url.PathEscape(name), &state); err != nil {
		return false, err
	}
	return state.Installed, nil
}

// Install asks the controller to install the named feature.
func (c *Controller) Install(ctx context.Context, name string) error {
	return c.post(ctx, "/features/"+url.PathEscape(name)+"/install")
}

// Uninstall asks the controller to uninstall the named feature.
func (c *Controller) Uninstall(ctx context.Context, name string) error {
	return c.post(ctx, "/features/"+url.PathEscape(name)+"/uninstall")
}

// Name returns the downstream service identifier. Together with HealthCheck
// (delegated to the underlying client's circuit breaker state) this lets
// Controller satisfy ports.HealthChecker.
func (c *Controller) Name() string {
	return c.client.Name()
}

// HealthCheck reports the controller's availability based on the circuit
// breaker state; no network call is made.
func (c *Controller) HealthCheck(ctx context.Context) error {
	return c.client.HealthCheck(ctx)
}

func (c *Controller) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.client.BaseURL()+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating GET request for %s: %w", path, err)
	}
	return c.execute(req, http.StatusOK, out)
}

func (c *Controller) post(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.client.BaseURL()+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating POST request for %s: %w", path, err)
	}
	return c.execute(req, http.StatusNoContent, nil)
}

// execute sends the request, checks the status code, and optionally decodes
// the response body. It ensures resp.Body is always closed.
func (c *Controller) execute(req *http.Request, wantStatus int, respBody any) error {
	resp, err := c.client.Do(req.Context(), req)
	if err != nil {
		// httpclient.Do can return both resp and err when retries are
		// exhausted on a retryable status (e.g. 5xx). In that case, translate
		// the HTTP response into a domain error rather than returning the raw
		// retry error.
		if resp != nil {
			defer c.closeBody(req.Context(), resp)
			if resp.StatusCode != wantStatus {
				return translateHTTPError(resp)
			}
		}
		c.logger.ErrorContext(req.Context(), "request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer c.closeBody(req.Context(), resp)

	if resp.StatusCode != wantStatus {
		translateErr := translateHTTPError(resp)
		c.logger.ErrorContext(req.Context(), "unexpected status",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Int("status", resp.StatusCode),
			slog.Int("want_status", wantStatus),
		)
		return translateErr
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decoding response from %s %s: %w", req.Method, req.URL.Path, err)
		}
	}

	return nil
}

// closeBody closes an HTTP response body and logs on failure.
func (c *Controller) closeBody(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.WarnContext(ctx, "failed to close response body",
			slog.String("error", err.Error()),
		)
	}
}
