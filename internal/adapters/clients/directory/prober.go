// Package directory implements connection probes against an external LDAP
// directory. A circuit breaker suspends probing when the directory host
// keeps refusing connections, so repeated admin-console tests do not hammer
// a dead host.
package directory

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/sony/gobreaker/v2"

	"github.com/adimka/admin-console-beta/internal/domain"
	dirdomain "github.com/adimka/admin-console-beta/internal/domain/directory"
)

// probeError carries the probe outcome alongside the underlying error so the
// circuit breaker can count failures while callers still receive a tagged
// ProbeResult.
type probeError struct {
	result dirdomain.ProbeResult
	err    error
}

func (e *probeError) Error() string {
	return fmt.Sprintf("%s: %v", e.result, e.err)
}

func (e *probeError) Unwrap() error { return e.err }

// Prober runs connection and bind tests against a directory. It implements
// ports.DirectoryService.
type Prober struct {
	breaker     *gobreaker.CircuitBreaker[dirdomain.ProbeResult]
	dialTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Prober. maxFailures consecutive connection failures open the
// breaker for resetTimeout.
func New(dialTimeout time.Duration, maxFailures int, resetTimeout time.Duration, logger *slog.Logger) *Prober {
	cb := gobreaker.NewCircuitBreaker[dirdomain.ProbeResult](gobreaker.Settings{
		Name:    "directory",
		Timeout: resetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return int(counts.ConsecutiveFailures) >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Prober{
		breaker:     cb,
		dialTimeout: dialTimeout,
		logger:      logger,
	}
}

// TestConnect checks that the directory host accepts connections with the
// configured encryption method. Bind credentials are not used.
func (p *Prober) TestConnect(ctx context.Context, cfg dirdomain.Config) (dirdomain.ProbeResult, error) {
	return p.run(ctx, cfg, func(_ *ldap.Conn) (dirdomain.ProbeResult, error) {
		return dirdomain.ProbeSuccessfulConnect, nil
	})
}

// TestBind connects and authenticates with the configured bind method and
// credentials.
func (p *Prober) TestBind(ctx context.Context, cfg dirdomain.Config) (dirdomain.ProbeResult, error) {
	return p.run(ctx, cfg, func(conn *ldap.Conn) (dirdomain.ProbeResult, error) {
		if err := p.bind(conn, cfg); err != nil {
			return "", &probeError{result: dirdomain.ProbeCannotBind, err: err}
		}
		return dirdomain.ProbeSuccessfulBind, nil
	})
}

// run dials the directory under the circuit breaker and hands the open
// connection to fn. Probe failures surface as tagged results, not errors;
// the only errors returned are breaker rejections and context cancellation.
func (p *Prober) run(ctx context.Context, cfg dirdomain.Config, fn func(*ldap.Conn) (dirdomain.ProbeResult, error)) (dirdomain.ProbeResult, error) {
	result, err := p.breaker.Execute(func() (dirdomain.ProbeResult, error) {
		conn, err := p.dial(cfg)
		if err != nil {
			return "", err
		}
		defer conn.Close()

		if err := ctx.Err(); err != nil {
			return "", err
		}
		return fn(conn)
	})
	if err == nil {
		return result, nil
	}

	var pe *probeError
	if errors.As(err, &pe) {
		p.logger.WarnContext(ctx, "directory probe failed",
			slog.String("operation", "directory.Probe"),
			slog.Any("config", cfg),
			slog.String("result", pe.result.String()),
			slog.Any("error", pe.err),
		)
		return pe.result, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("directory probes suspended by circuit breaker: %w", domain.ErrUnavailable)
	}
	return "", err
}

// dial opens a connection using the configured encryption method. Failures
// are reported as ProbeCannotConnect, except TLS setup problems which are
// ProbeCannotConfigure.
func (p *Prober) dial(cfg dirdomain.Config) (*ldap.Conn, error) {
	addr := net.JoinHostPort(cfg.HostName(), fmt.Sprint(cfg.Port()))
	dialer := &net.Dialer{Timeout: p.dialTimeout}
	tlsCfg := &tls.Config{
		ServerName: cfg.HostName(),
		MinVersion: tls.VersionTLS12,
	}

	switch cfg.Encryption() {
	case dirdomain.EncryptionLDAPS:
		conn, err := ldap.DialURL("ldaps://"+addr,
			ldap.DialWithDialer(dialer),
			ldap.DialWithTLSConfig(tlsCfg),
		)
		if err != nil {
			return nil, &probeError{result: dirdomain.ProbeCannotConnect, err: err}
		}
		return conn, nil

	case dirdomain.EncryptionStartTLS:
		conn, err := ldap.DialURL("ldap://"+addr, ldap.DialWithDialer(dialer))
		if err != nil {
			return nil, &probeError{result: dirdomain.ProbeCannotConnect, err: err}
		}
		if err := conn.StartTLS(tlsCfg); err != nil {
			conn.Close()
			return nil, &probeError{result: dirdomain.ProbeCannotConfigure, err: err}
		}
		return conn, nil

	case dirdomain.EncryptionNone:
		conn, err := ldap.DialURL("ldap://"+addr, ldap.DialWithDialer(dialer))
		if err != nil {
			return nil, &probeError{result: dirdomain.ProbeCannotConnect, err: err}
		}
		return conn, nil

	default:
		return nil, &probeError{
			result: dirdomain.ProbeCannotConfigure,
			err:    fmt.Errorf("unsupported encryption method %q", cfg.Encryption()),
		}
	}
}

// bind authenticates the connection with the configured bind method.
func (p *Prober) bind(conn *ldap.Conn, cfg dirdomain.Config) error {
	switch cfg.BindMethod() {
	case dirdomain.BindSimple:
		return conn.Bind(cfg.BindUser(), cfg.BindPassword())
	case dirdomain.BindDigestMD5:
		realm := cfg.Realm()
		if realm == "" {
			realm = cfg.HostName()
		}
		return conn.MD5Bind(realm, cfg.BindUser(), cfg.BindPassword())
	default:
		return fmt.Errorf("unsupported bind method %q", cfg.BindMethod())
	}
}
