package config

import "github.com/charmbracelet/log"

type options struct {
	logger *log.Logger
}

// Option customizes how configuration is turned into services.
type Option func(*options)

// WithLogger sets the logger handed to the search components.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func applyOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
