package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rescale/navlist/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage navlist configuration",
		Long: `Configuration management commands for navlist.

Commands:
  init  - Write a configuration file with default settings
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool
	var compact bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write navlist.conf with default settings.

Use --force to overwrite an existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg := config.NewConfig()
			cfg.Layout.CompactMyFiles = compact
			if err := config.Save(cfg, path); err != nil {
				return err
			}
			GetLogger().Info().Str("path", path).Msg("configuration written")
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&compact, "compact", false, "Enable compact My files")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Layout:")
			fmt.Fprintf(out, "  Compact My files:   %t\n", cfg.Layout.CompactMyFiles)
			fmt.Fprintf(out, "  My files label:     %s\n", cfg.Layout.MyFilesLabel)
			fmt.Fprintf(out, "  Removable fallback: %s\n", cfg.RemovableLabel())
			fmt.Fprintf(out, "  ZIP provider id:    %s\n", cfg.Layout.ZipProviderID)
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Resolver:")
			fmt.Fprintf(out, "  Max concurrent: %d\n", cfg.Resolver.MaxConcurrent)
			fmt.Fprintf(out, "  Timeout:        %s\n", cfg.ResolveTimeout())
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Logging:")
			fmt.Fprintf(out, "  Level: %s\n", cfg.Logging.Level)
			fmt.Fprintln(out)

			fmt.Fprintf(out, "Configuration file: %s\n", path)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "  (file does not exist - using defaults)")
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, path)
			if _, err := os.Stat(path); err != nil {
				fmt.Fprintln(out, "Status: file does not exist (create it with: navlist config init)")
			}
			return nil
		},
	}
}
