package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/remote"
)

func sessionState(state string) string {
	switch state {
	case remote.StateRunning:
		return StyleGreen.Render("● " + state)
	case remote.StateStopped:
		return StyleYellow.Render("○ " + state)
	default:
		return StyleRed.Render("✖ " + state)
	}
}

func FormatSend(r remote.SendResult) string {
	if !r.Success {
		return StyleRed.Render("✖ send failed: ") + r.Error + "\n"
	}
	out := fmt.Sprintf("%s %s  %s\n", StyleGreen.Render("✔ sent"), Bold(r.Command), sessionState(r.Status))
	if r.Output != "" {
		out += Dim(r.Output) + "\n"
	}
	return out
}

func FormatRemoteStatus(r remote.StatusResult) string {
	out := "Session " + sessionState(r.Status) + "\n"
	if r.Error != "" {
		out += StyleRed.Render(r.Error) + "\n"
	}
	if tail := strings.TrimSpace(r.LastOutput); tail != "" {
		out += "\n" + Header("last output") + "\n" + tail + "\n"
	}
	return out
}

func FormatRemoteTest(r remote.TestResult) string {
	if !r.Success {
		return StyleRed.Render("✖ connection failed: ") + r.Error + "\n"
	}
	return fmt.Sprintf("%s %s@%s  %s\n", StyleGreen.Render("✔"), r.User, r.Hostname, Dim(r.Directory))
}
