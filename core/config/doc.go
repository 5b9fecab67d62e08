// Package config provides type-safe environment variable loading with
// per-type caching. A .env file is loaded automatically on first use, and
// struct fields are parsed via `env` tags:
//
//	type ServerConfig struct {
//		Addr            string        `env:"SERVER_ADDR" envDefault:":8080"`
//		ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
//	}
//
//	var cfg ServerConfig
//	config.MustLoad(&cfg)
//
// Each configuration type is loaded only once per process; later calls for
// the same type return the cached value.
package config
