package analyzer

import "github.com/ricardonunez-io/logsleuth/internal/identifier"

const DefaultMaxIterations = 10

type Config struct {
	// MaxIterations bounds the number of model calls per analysis.
	MaxIterations   int
	DefaultPlatform string
}

func DefaultConfig() Config {
	return Config{
		MaxIterations:   DefaultMaxIterations,
		DefaultPlatform: identifier.DefaultPlatform,
	}
}
