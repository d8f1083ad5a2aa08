package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Eliptic23/borja/internal/config"
	"github.com/Eliptic23/borja/internal/storage/sqlite"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create and seed the infrastructure configuration",
		Long:  "Seed creates the infrastructure configuration table in the team database and fills in any missing settings with their defaults. Existing values are never overwritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openTeamStore()
			if err != nil {
				return err
			}
			defer store.Close()

			svc := config.NewService(store.DB())
			if err := svc.Migrate(ctx); err != nil {
				return err
			}
			if err := svc.EnsureSeeded(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "configuration seeded")
			return nil
		},
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change infrastructure configuration",
	}
	cmd.AddCommand(newConfigListCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	return cmd
}

func newConfigListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTeamStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := config.NewService(store.DB()).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", e.Name, e.Value)
			}
			return nil
		},
	}
}

func newConfigGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print one configuration setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTeamStore()
			if err != nil {
				return err
			}
			defer store.Close()

			value, err := config.NewService(store.DB()).Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value> [<name> <value>...]",
		Short: "Update configuration settings",
		Long:  "Set validates and writes one or more name/value pairs in a single batch. If any value is invalid, nothing is written.",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || len(args)%2 != 0 {
				return fmt.Errorf("arguments must be name value pairs")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTeamStore()
			if err != nil {
				return err
			}
			defer store.Close()

			entries := make([]config.Entry, 0, len(args)/2)
			for i := 0; i < len(args); i += 2 {
				entries = append(entries, config.Entry{Name: args[i], Value: args[i+1]})
			}
			if err := config.NewService(store.DB()).Update(cmd.Context(), entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d setting(s)\n", len(entries))
			return nil
		},
	}
}

func openTeamStore() (*sqlite.Store, error) {
	path, err := teamDBPath()
	if err != nil {
		return nil, err
	}
	return sqlite.New(path)
}
