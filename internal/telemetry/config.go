package telemetry

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string `yaml:"service_name"`

	// ServiceVersion is the version of the service
	ServiceVersion string `yaml:"-"`

	// Environment is the deployment environment (dev, staging, production)
	Environment string `yaml:"environment"`

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (optional)
	// If empty, traces are recorded but not exported
	Endpoint string `yaml:"endpoint"`

	// Insecure sends spans over plain HTTP, for local collectors
	Insecure bool `yaml:"insecure"`

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64 `yaml:"sample_rate"`
}

// DefaultConfig returns the CLI default: tracing off
func DefaultConfig() Config {
	return Config{
		ServiceName:    "opsched",
		ServiceVersion: "dev",
		Environment:    "development",
		Enabled:        false,
		SampleRate:     1.0,
	}
}
