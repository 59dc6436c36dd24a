package factory

import (
	"fmt"
	"log"

	"github.com/t1a2l/SkyTools/internal/config"
	"github.com/t1a2l/SkyTools/internal/model"
)

// WriterFactory defines a function that creates a snapshot writer from its
// config definition.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// CreateWriters builds every enabled writer from the config. A writer that
// cannot be created is skipped with a logged warning so one misconfigured
// sink does not keep the profiler from starting.
func CreateWriters(cfg *config.Config) []model.Writer {
	writers := make([]model.Writer, 0, len(cfg.Profiler.Writers))

	for _, def := range cfg.Profiler.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			log.Printf("Warning: unknown writer type '%s' in config, skipping.", def.Type)
			continue
		}

		writer, err := factory(def)
		if err != nil {
			log.Printf("Warning: failed to create writer type '%s': %v, skipping.", def.Type, err)
			continue
		}
		writers = append(writers, writer)
	}

	return writers
}
