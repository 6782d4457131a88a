package remote

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Session states reported by Status.
const (
	StateRunning = "RUNNING"
	StateStopped = "STOPPED"
	StateError   = "ERROR"
)

// DefaultCommand is what the assistant session runs to pick up its next todo.
const DefaultCommand = "./todo"

type SendResult struct {
	Success   bool      `json:"success"`
	Command   string    `json:"command"`
	Output    string    `json:"output,omitempty"`
	Status    string    `json:"status,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusResult struct {
	Success    bool      `json:"success"`
	Status     string    `json:"status"`
	LastOutput string    `json:"last_output,omitempty"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type TestResult struct {
	Success   bool      `json:"success"`
	Hostname  string    `json:"hostname,omitempty"`
	User      string    `json:"user,omitempty"`
	Directory string    `json:"directory,omitempty"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Controller types into and inspects the assistant's tmux session. Failures
// are reported in the result rather than as errors so callers can show them.
type Controller struct {
	exec    Executor
	session string
	now     func() time.Time
}

func NewController(exec Executor, session string) *Controller {
	if session == "" {
		session = DefaultConfig().Session
	}
	return &Controller{exec: exec, session: session, now: func() time.Time { return time.Now().UTC() }}
}

// Send types command into the session's first window and presses Enter.
func (c *Controller) Send(ctx context.Context, command string) SendResult {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	res := SendResult{Command: command, Timestamp: c.now()}

	out, err := c.exec.Run(ctx, c.sendKeys(command))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Output = strings.TrimSpace(out)

	status, err := c.exec.Run(ctx, c.hasSession())
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Status = strings.TrimSpace(status)
	res.Success = true
	return res
}

// Trigger asks the session to work on a specific todo.
func (c *Controller) Trigger(ctx context.Context, todoID int64) SendResult {
	return c.Send(ctx, TriggerCommand(todoID))
}

// Status reports whether the session exists and, if so, its last five lines.
func (c *Controller) Status(ctx context.Context) StatusResult {
	res := StatusResult{Timestamp: c.now()}
	out, err := c.exec.Run(ctx, c.hasSession())
	if err != nil {
		res.Status = StateError
		res.Error = err.Error()
		return res
	}
	res.Success = true
	res.Status = strings.TrimSpace(out)
	if !strings.Contains(out, StateRunning) {
		return res
	}
	tail, err := c.exec.Run(ctx, fmt.Sprintf(`tmux capture-pane -t %s -p | tail -5`, c.window()))
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.LastOutput = tail
	return res
}

// Test checks that commands can be run at all.
func (c *Controller) Test(ctx context.Context) TestResult {
	res := TestResult{Timestamp: c.now()}
	fields := []struct {
		cmd string
		dst *string
	}{
		{"hostname", &res.Hostname},
		{"whoami", &res.User},
		{"pwd", &res.Directory},
	}
	for _, f := range fields {
		out, err := c.exec.Run(ctx, f.cmd)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		*f.dst = strings.TrimSpace(out)
	}
	res.Success = true
	res.Message = "SSH connection successful"
	return res
}

// window is the quoted tmux target of the session's first window.
func (c *Controller) window() string {
	return `"` + escapeDoubleQuoted(c.session+":0") + `"`
}

func (c *Controller) sendKeys(command string) string {
	return fmt.Sprintf(`tmux send-keys -t %s "%s" Enter`, c.window(), escapeDoubleQuoted(command))
}

func (c *Controller) hasSession() string {
	return fmt.Sprintf(`tmux has-session -t "%s" 2>&1 && echo "%s" || echo "%s"`,
		escapeDoubleQuoted(c.session), StateRunning, StateStopped)
}

// TriggerCommand is the session command that starts work on todoID.
func TriggerCommand(todoID int64) string {
	return fmt.Sprintf("%s -id %d", DefaultCommand, todoID)
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")

func escapeDoubleQuoted(s string) string {
	return doubleQuoteEscaper.Replace(s)
}
