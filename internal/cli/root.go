package cli

import (
	"context"
	"time"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/config"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Todos       service.TodoService
	Plans       service.PlanService
	Continues   service.ContinueService
	Remote      service.RemoteService
	Attachments service.AttachmentService
	Screenshots service.ScreenshotService

	ScopeColors       formatter.ScopeColors
	DirectoryPresets  []config.DirectoryPreset
	// DefaultWorkingDir is used for new todos that name no directory.
	DefaultWorkingDir string
	ListenAddr        string
	// Settings is the effective settings file content; SettingsPath is
	// where `settings init` writes it.
	Settings          config.Settings
	SettingsPath      string

	// IsInteractive reports whether forms may prompt on the terminal.
	IsInteractive func() bool
	// Serve runs the HTTP API until ctx is cancelled.
	Serve func(ctx context.Context, addr string) error
	Now   func() time.Time
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "taskdeck" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskdeck",
		Short:         "Todo board for a remote coding assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTodoCmd(app),
		newPlanCmd(app),
		newContinueCmd(app),
		newFollowupCmd(app),
		newChainCmd(app),
		newRemoteCmd(app),
		newAttachCmd(app),
		newScreenshotCmd(app),
		newSettingsCmd(app),
		newNextVersionCmd(),
		newServeCmd(app),
	)

	return root
}
