package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestLogUseCaseObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetFormatter(log.LogfmtFormatter)
	obs := NewLogUseCaseObserver(logger)

	report(context.Background(), obs, "continue-todo", time.Now(), map[string]any{"id": 4}, nil)
	assert.Contains(t, buf.String(), "use_case=continue-todo")
	assert.Contains(t, buf.String(), "id=4")
	assert.Contains(t, buf.String(), "success=true")

	buf.Reset()
	report(context.Background(), obs, "upload-attachment", time.Now(), nil, errors.New("disk full"))
	assert.Contains(t, buf.String(), "use case failed")
	assert.Contains(t, buf.String(), "disk full")
}

func TestObserverDefaults(t *testing.T) {
	assert.Equal(t, NoopUseCaseObserver{}, NewLogUseCaseObserver(nil))
	assert.Equal(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))

	rec := &recordingObserver{}
	assert.Same(t, rec, useCaseObserverOrNoop([]UseCaseObserver{nil, rec}))
}

func TestLogUseCaseObserver_SortedFields(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetFormatter(log.LogfmtFormatter)

	report(context.Background(), NewLogUseCaseObserver(logger), "bulk-todos", time.Now(),
		map[string]any{"status": "completed", "count": 3, "action": "status"}, nil)

	out := buf.String()
	assert.Less(t, strings.Index(out, "action="), strings.Index(out, "count="))
	assert.Less(t, strings.Index(out, "count="), strings.Index(out, "status="))
}
