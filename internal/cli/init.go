package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contextweave/contextweave/internal/config"
)

// NewInitCmd creates the 'init' command for writing a default config file.
func NewInitCmd() *cobra.Command {
	var (
		configPath string
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a configuration file populated with defaults, ready to edit. An
existing file is left untouched unless --force is given.`,
		Example: `  contextweave init
  contextweave init --config ./contextweave.json
  contextweave init --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				var err error
				path, err = config.GetDefaultConfigPath()
				if err != nil {
					return err
				}
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
				}
			}

			if err := config.Save(config.Default(), path); err != nil {
				return err
			}

			fmt.Printf("Wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to write (defaults to ~/.contextweave.json)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")

	return cmd
}
