package config

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// cache stores loaded configurations by struct type so each type is
	// parsed from the environment exactly once.
	cache sync.Map // reflect.Type -> any

	// loadEnvOnce guards the optional .env file load.
	loadEnvOnce sync.Once
)

// Load parses environment variables into cfg based on its `env` struct tags.
// A .env file in the working directory is loaded into the process
// environment on first use; a missing file is not an error. Each
// configuration type is loaded once per process and cached for subsequent
// calls.
func Load[T any](cfg *T) error {
	if cfg == nil {
		return fmt.Errorf("config: nil target")
	}

	loadEnvOnce.Do(func() {
		// Ignore error: the .env file is optional.
		_ = godotenv.Load()
	})

	typ := reflect.TypeOf(*cfg)
	if cached, ok := cache.Load(typ); ok {
		*cfg = cached.(T)
		return nil
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", typ, err)
	}

	actual, _ := cache.LoadOrStore(typ, *cfg)
	*cfg = actual.(T)
	return nil
}

// MustLoad is like Load but panics on failure. Useful at startup where a
// missing required variable should stop the process.
func MustLoad[T any](cfg *T) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
