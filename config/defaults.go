// =============================================================================
// diacritfix default configuration
// =============================================================================
// Sensible defaults for every configuration knob.
// =============================================================================
package config

import "time"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Store:     DefaultStoreConfig(),
		Processor: DefaultProcessorConfig(),
		Payment:   DefaultPaymentConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:           8080,
		MetricsPort:        9091,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       90 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		MaxUploadBytes:     10 << 20, // 10 MB
	}
}

// DefaultStoreConfig returns the default artifact store configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		TTL:           10 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// DefaultProcessorConfig returns the default processor configuration.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		APIKey:  "",
		BaseURL: "https://api.pdf.co/v1",
		Timeout: 60 * time.Second,
	}
}

// DefaultPaymentConfig returns the default payment configuration.
func DefaultPaymentConfig() PaymentConfig {
	return PaymentConfig{
		SecretKey:     "",
		WebhookSecret: "",
		BaseURL:       "https://api.stripe.com",
		SiteURL:       "https://diacritfix.example",
		ProductName:   "PDF cu diacritice reparate",
		Currency:      "eur",
		AmountCents:   199,
		Timeout:       30 * time.Second,
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig returns the default telemetry configuration.
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "diacritfix",
		SampleRate:   0.1,
	}
}
