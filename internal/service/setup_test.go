package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testRepos struct {
	db            *sql.DB
	todos         *repository.SQLiteTodoRepo
	history       *repository.SQLiteHistoryRepo
	comments      *repository.SQLiteCommentRepo
	attachments   *repository.SQLiteAttachmentRepo
	continuations *repository.SQLiteContinuationRepo
}

func newTestRepos(t *testing.T) testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return testRepos{
		db:            database,
		todos:         repository.NewSQLiteTodoRepo(database),
		history:       repository.NewSQLiteHistoryRepo(database),
		comments:      repository.NewSQLiteCommentRepo(database),
		attachments:   repository.NewSQLiteAttachmentRepo(database),
		continuations: repository.NewSQLiteContinuationRepo(database),
	}
}

func (r testRepos) seed(t *testing.T, title string, opts ...testutil.TodoOption) *domain.Todo {
	t.Helper()
	todo := testutil.NewTestTodo(title, opts...)
	require.NoError(t, r.todos.Create(context.Background(), todo))
	return todo
}

func historyFields(t *testing.T, r testRepos, id int64) []string {
	t.Helper()
	entries, err := r.history.ListByTodo(context.Background(), id)
	require.NoError(t, err)
	fields := make([]string, 0, len(entries))
	for _, e := range entries {
		fields = append(fields, e.Field)
	}
	return fields
}

// recordingObserver collects use case events.
type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}
