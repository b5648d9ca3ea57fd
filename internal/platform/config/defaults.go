package config

const (
	defaultServerPort = 8080

	defaultRetryMaxAttempts = 3
	defaultRetryMultiplier  = 2.0

	defaultCircuitBreakerMaxFailures = 5
	defaultCircuitBreakerHalfOpen    = 1
)

// defaults returns the default configuration values.
// These are loaded first and can be overridden by base.yaml, profile YAML, and env vars.
func defaults() map[string]any {
	return map[string]any{
		"server.host":          "0.0.0.0",
		"server.port":          defaultServerPort,
		"server.read_timeout":  "5s",
		"server.write_timeout": "10s",
		"server.idle_timeout":  "120s",

		"log.level":  "info",
		"log.format": "json",

		"platform.base_url":                        "http://localhost:8181",
		"platform.timeout":                         "30s",
		"platform.retry.max_attempts":              defaultRetryMaxAttempts,
		"platform.retry.initial_interval":          "100ms",
		"platform.retry.max_interval":              "10s",
		"platform.retry.multiplier":                defaultRetryMultiplier,
		"platform.circuit_breaker.max_failures":    defaultCircuitBreakerMaxFailures,
		"platform.circuit_breaker.timeout":         "30s",
		"platform.circuit_breaker.half_open_limit": defaultCircuitBreakerHalfOpen,
		"platform.rate_limit.requests_per_second":  0,
		"platform.rate_limit.burst_size":           1,

		"directory.dial_timeout":                 "5s",
		"directory.circuit_breaker.max_failures": defaultCircuitBreakerMaxFailures,
		"directory.circuit_breaker.timeout":      "30s",

		"stores.settings_dir": "data/settings",
		"stores.services_dir": "data/services",

		"telemetry.enabled":  false,
		"telemetry.exporter": "stdout",
		"telemetry.endpoint": "",
	}
}
