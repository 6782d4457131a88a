package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alexanderramin/taskdeck/internal/config"
	"github.com/spf13/cobra"
)

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage the YAML settings file",
	}
	cmd.AddCommand(newSettingsInitCmd(app), newSettingsPathCmd(app))
	return cmd
}

func newSettingsInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.SettingsPath == "" {
				return fmt.Errorf("no settings path configured")
			}
			if _, err := os.Stat(app.SettingsPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", app.SettingsPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking settings file: %w", err)
			}
			if err := config.SaveSettings(app.SettingsPath, app.Settings); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", app.SettingsPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newSettingsPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the settings file is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), app.SettingsPath)
			return nil
		},
	}
}
