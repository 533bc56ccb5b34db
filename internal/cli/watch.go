package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/engine"
)

// NewWatchCmd creates the 'watch' command: re-ingest note files as they
// change on disk.
func NewWatchCmd() *cobra.Command {
	var (
		configPath  string
		contextType string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory and re-import changed files",
		Long: `Watch a directory tree for changes to text files and re-import each
changed file as context entries. Changes are debounced so rapid saves
trigger one import. Runs until interrupted.`,
		Example: `  contextweave watch ./notes --type notes
  contextweave watch ./docs --debounce 2s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			if _, err := os.Stat(root); err != nil {
				return fmt.Errorf("watch directory: %w", err)
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			if err := addWatchDirs(watcher, root); err != nil {
				return fmt.Errorf("add watch dirs: %w", err)
			}

			return withEngine(configPath, func(e *engine.Engine) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for changes...\n", root)

				timer := time.NewTimer(0)
				if !timer.Stop() {
					<-timer.C
				}
				changed := make(map[string]struct{})

				for {
					select {
					case <-cmd.Context().Done():
						return nil

					case event, ok := <-watcher.Events:
						if !ok {
							return nil
						}
						if shouldIgnoreEvent(event) {
							continue
						}
						changed[event.Name] = struct{}{}
						timer.Reset(debounce)

					case err, ok := <-watcher.Errors:
						if !ok {
							return nil
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)

					case <-timer.C:
						for path := range changed {
							n, err := importFile(e, path, contextType)
							if err != nil {
								fmt.Fprintf(cmd.ErrOrStderr(), "Warning: re-import of %s failed: %v\n", path, err)
								continue
							}
							fmt.Fprintf(cmd.OutOrStdout(), "Re-imported %s (%d entries)\n", path, n)
						}
						changed = make(map[string]struct{})
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to config file")
	cmd.Flags().StringVarP(&contextType, "type", "t", "notes", "Context type for imported entries")
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce window for batching changes")

	return cmd
}

// addWatchDirs registers the root and every non-hidden subdirectory.
func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}

// shouldIgnoreEvent filters out events that should not trigger a re-import.
func shouldIgnoreEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return true
	}
	base := filepath.Base(event.Name)
	return strings.HasPrefix(base, ".")
}
