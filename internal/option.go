package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	archives []string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithArchives sets the export archive paths to import, in processing order.
func WithArchives(paths ...string) Option {
	return func(a *application) {
		a.archives = paths
	}
}
