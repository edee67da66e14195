package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	root   string
	out    io.Writer
	errOut io.Writer
	json   bool
	limit  int
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithRoot overrides the configured content root.
func WithRoot(root string) Option {
	return func(a *application) {
		a.root = root
	}
}

// WithOutput sets the writers for the report and for logs.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *application) {
		a.out = out
		a.errOut = errOut
	}
}

// WithJSON switches report output to JSON.
func WithJSON(enabled bool) Option {
	return func(a *application) {
		a.json = enabled
	}
}

// WithLimit caps the number of runs listed by History.
func WithLimit(n int) Option {
	return func(a *application) {
		a.limit = n
	}
}
