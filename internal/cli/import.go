package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
	"github.com/contextweave/contextweave/internal/store"
)

// NewImportCmd creates the 'import' command for bulk ingestion of note files.
func NewImportCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
	)

	cmd := &cobra.Command{
		Use:   "import [glob pattern]",
		Short: "Bulk-import text files as context entries",
		Long: `Import every file matching a doublestar glob pattern. Each file is split
on blank lines and every fragment becomes one context entry tagged with the
file path.`,
		Example: `  contextweave import "notes/**/*.md" --type notes
  contextweave import "docs/*.txt" --type reference`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := doublestar.FilepathGlob(args[0])
			if err != nil {
				return fmt.Errorf("invalid glob pattern: %w", err)
			}
			if len(matches) == 0 {
				fmt.Println("No files matched.")
				return nil
			}

			return withEngine(configPath, func(e *engine.Engine) error {
				bar := progressbar.NewOptions(len(matches),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionSetDescription("Importing"),
					progressbar.OptionOnCompletion(func() {
						fmt.Println()
					}),
				)

				var imported, failed int
				for _, path := range matches {
					n, err := importFile(e, path, contextType)
					if err != nil {
						fmt.Fprintf(os.Stderr, "\nWarning: skipping %s: %v\n", path, err)
						failed++
					} else {
						imported += n
					}
					bar.Add(1)
				}

				fmt.Printf("Imported %d entries from %d files", imported, len(matches)-failed)
				if failed > 0 {
					fmt.Printf(" (%d files skipped)", failed)
				}
				fmt.Println()
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "notes", "Context type for imported entries")

	return cmd
}

// importFile splits one file into fragments and stores each. Returns the
// number of entries added.
func importFile(e *engine.Engine, path, contextType string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	var added int
	for _, fragment := range splitFragments(string(data)) {
		_, err := e.AddContext(fragment, contextType, store.AddOptions{
			Metadata: map[string]string{"file": path},
		})
		if err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// splitFragments breaks file content on blank lines, dropping empty pieces.
func splitFragments(content string) []string {
	var fragments []string
	for _, piece := range strings.Split(content, "\n\n") {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			fragments = append(fragments, piece)
		}
	}
	return fragments
}
