package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Eliptic23/borja/internal/importer"
	"github.com/Eliptic23/borja/internal/storage/sqlite"
)

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	var format string
	var team bool

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import collections from export files",
		Long:  "Import reads one or more export documents and stores the collections they contain. A document that fails to parse is reported and skipped; the rest of the batch still imports.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			docs := make([][]byte, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				docs = append(docs, content)
			}

			reg := importer.DefaultRegistry()
			results := reg.ImportAll(ctx, importer.Format(format), docs)

			var save func(res *importer.ImportResult) error
			if team {
				path, err := teamDBPath()
				if err != nil {
					return err
				}
				store, err := sqlite.New(path)
				if err != nil {
					return err
				}
				defer store.Close()
				save = func(res *importer.ImportResult) error {
					for _, c := range res.Collections {
						if err := store.SaveCollection(ctx, c); err != nil {
							return err
						}
					}
					return nil
				}
			} else {
				store, err := openCollectionStore()
				if err != nil {
					return err
				}
				save = func(res *importer.ImportResult) error {
					for _, c := range res.Collections {
						if err := store.Save(ctx, c); err != nil {
							return err
						}
					}
					return nil
				}
			}

			failed := 0
			for i, res := range results {
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", args[i], res.Err)
					continue
				}
				if err := save(res.Result); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: imported %d collection(s) (%s)\n",
					args[i], len(res.Result.Collections), res.Result.SourceFormat)
			}
			if failed == len(results) {
				return fmt.Errorf("no documents imported")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(importer.FormatAuto), "source format (auto, insomnia)")
	cmd.Flags().BoolVar(&team, "team", false, "import into the team workspace database")

	return cmd
}
