package service

import (
	"context"
	"time"

	"github.com/alexanderramin/taskdeck/internal/remote"
	"github.com/alexanderramin/taskdeck/internal/repository"
)

type remoteService struct {
	controller *remote.Controller
	todos      repository.TodoRepo
	observer   UseCaseObserver
}

func NewRemoteService(controller *remote.Controller, todos repository.TodoRepo, observers ...UseCaseObserver) RemoteService {
	return &remoteService{controller: controller, todos: todos, observer: useCaseObserverOrNoop(observers)}
}

func (s *remoteService) Send(ctx context.Context, command string) remote.SendResult {
	startedAt := time.Now().UTC()
	res := s.controller.Send(ctx, command)
	report(ctx, s.observer, "remote-send", startedAt, map[string]any{
		"command": res.Command,
		"success": res.Success,
	}, nil)
	return res
}

// Trigger asks the assistant session to work on an existing todo.
func (s *remoteService) Trigger(ctx context.Context, id int64) (remote.SendResult, error) {
	startedAt := time.Now().UTC()
	if _, err := s.todos.GetByID(ctx, id); err != nil {
		report(ctx, s.observer, "remote-trigger", startedAt, map[string]any{"id": id}, err)
		return remote.SendResult{}, err
	}
	res := s.controller.Trigger(ctx, id)
	report(ctx, s.observer, "remote-trigger", startedAt, map[string]any{
		"id":      id,
		"success": res.Success,
	}, nil)
	return res, nil
}

func (s *remoteService) Status(ctx context.Context) remote.StatusResult {
	return s.controller.Status(ctx)
}

func (s *remoteService) Test(ctx context.Context) remote.TestResult {
	return s.controller.Test(ctx)
}
