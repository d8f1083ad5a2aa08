package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Eliptic23/borja/internal/app"
	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/storage/sqlite"
	"github.com/Eliptic23/borja/internal/tui/views"
)

// NewRootCommand creates the root command.
func NewRootCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "borja",
		Short:   "Borja - a TUI API workspace",
		Long:    "Borja is a terminal client for organizing and editing API request collections.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI()
		},
	}

	cmd.PersistentFlags().String("data-dir", "", "workspace data directory (default ~/.borja)")
	cmd.PersistentFlags().String("team-db", "", "team workspace database path (default <data-dir>/team.db)")
	_ = viper.BindPFlag("data_dir", cmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("team_db", cmd.PersistentFlags().Lookup("team-db"))

	cmd.AddCommand(NewImportCommand())
	cmd.AddCommand(NewSeedCommand())
	cmd.AddCommand(NewConfigCommand())

	return cmd
}

func initConfig() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "borja"))
	}
	viper.SetEnvPrefix("BORJA")
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()
}

func dataDir() (string, error) {
	if dir := viper.GetString("data_dir"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".borja"), nil
}

func teamDBPath() (string, error) {
	if path := viper.GetString("team_db"); path != "" {
		return path, nil
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "team.db"), nil
}

func openCollectionStore() (*filesystem.CollectionStore, error) {
	dir, err := dataDir()
	if err != nil {
		return nil, err
	}
	return filesystem.NewCollectionStore(filepath.Join(dir, "collections"))
}

// tuiModel wraps the MainView for bubbletea.
type tuiModel struct {
	view *views.MainView
}

func (m tuiModel) Init() tea.Cmd {
	return m.view.Init()
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	updated, cmd := m.view.Update(msg)
	m.view = updated
	return m, cmd
}

func (m tuiModel) View() string {
	return m.view.View()
}

func runTUI() error {
	dir, err := dataDir()
	if err != nil {
		return err
	}
	dbPath, err := teamDBPath()
	if err != nil {
		return err
	}
	store, err := openCollectionStore()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return err
	}
	team, err := sqlite.New(dbPath)
	if err != nil {
		return err
	}

	application := app.New(
		app.WithConfig(app.Config{DataDir: dir, TeamDBPath: dbPath}),
		app.WithCollectionStore(store),
		app.WithTeamStore(team),
	)
	defer application.Close()

	model := tuiModel{view: views.NewMainView(application.Collections(), application.Team())}
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		return err
	}
	return nil
}
