package service

import (
	"context"
	"strings"
	"testing"

	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedExecutor records commands and answers has-session checks.
type scriptedExecutor struct {
	commands []string
}

func (e *scriptedExecutor) Run(_ context.Context, command string) (string, error) {
	e.commands = append(e.commands, command)
	if strings.Contains(command, "has-session") {
		return remote.StateRunning + "\n", nil
	}
	return "", nil
}

func TestRemoteService_Trigger(t *testing.T) {
	r := newTestRepos(t)
	exec := &scriptedExecutor{}
	obs := &recordingObserver{}
	svc := NewRemoteService(remote.NewController(exec, "claude"), r.todos, obs)
	ctx := context.Background()
	todo := r.seed(t, "Remote")

	res, err := svc.Trigger(ctx, todo.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, remote.TriggerCommand(todo.ID), res.Command)
	assert.Equal(t, remote.StateRunning, res.Status)
	require.NotEmpty(t, exec.commands)
	assert.Contains(t, exec.commands[0], `send-keys -t "claude:0"`)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "remote-trigger", obs.events[0].Name)
}

func TestRemoteService_TriggerUnknownTodo(t *testing.T) {
	r := newTestRepos(t)
	exec := &scriptedExecutor{}
	svc := NewRemoteService(remote.NewController(exec, "claude"), r.todos)

	_, err := svc.Trigger(context.Background(), 404)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, exec.commands)
}

func TestRemoteService_SendDefaultsCommand(t *testing.T) {
	r := newTestRepos(t)
	exec := &scriptedExecutor{}
	svc := NewRemoteService(remote.NewController(exec, "work"), r.todos)

	res := svc.Send(context.Background(), "  ")
	assert.True(t, res.Success)
	assert.Equal(t, remote.DefaultCommand, res.Command)

	status := svc.Status(context.Background())
	assert.True(t, status.Success)
	assert.Equal(t, remote.StateRunning, status.Status)
}
