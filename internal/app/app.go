package app

import (
	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/storage/sqlite"
	"github.com/Eliptic23/borja/internal/tabs"
)

// Config holds application configuration.
type Config struct {
	DataDir    string
	TeamDBPath string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataDir: "~/.borja",
	}
}

// App is the application container. Stores and the tab registry are
// injected here once and handed to whoever needs them; nothing reaches
// for them ambiently.
type App struct {
	config      Config
	collections *filesystem.CollectionStore
	team        *sqlite.Store
	tabs        *tabs.Registry
}

// Option is a function that configures the App.
type Option func(*App)

// New creates a new App with the given options.
func New(opts ...Option) *App {
	a := &App{
		config: DefaultConfig(),
		tabs:   tabs.NewRegistry(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) { a.config = cfg }
}

// WithCollectionStore sets the personal workspace store.
func WithCollectionStore(store *filesystem.CollectionStore) Option {
	return func(a *App) { a.collections = store }
}

// WithTeamStore sets the team workspace store.
func WithTeamStore(store *sqlite.Store) Option {
	return func(a *App) { a.team = store }
}

// Config returns the application configuration.
func (a *App) Config() Config { return a.config }

// Collections returns the personal workspace store.
func (a *App) Collections() *filesystem.CollectionStore { return a.collections }

// Team returns the team workspace store, nil when not configured.
func (a *App) Team() *sqlite.Store { return a.team }

// Tabs returns the open-tab registry.
func (a *App) Tabs() *tabs.Registry { return a.tabs }

// Close releases held resources.
func (a *App) Close() error {
	if a.team != nil {
		return a.team.Close()
	}
	return nil
}
