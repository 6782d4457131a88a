package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRepo_AddAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	todos := NewSQLiteTodoRepo(database)
	repo := NewSQLiteHistoryRepo(database)

	todo := testutil.NewTestTodo("Tracked")
	require.NoError(t, todos.Create(ctx, todo))

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	first := &domain.HistoryEntry{TodoID: todo.ID, Field: "status", OldValue: "pending", NewValue: "in_progress", ChangedAt: base}
	second := &domain.HistoryEntry{TodoID: todo.ID, Field: "title", OldValue: "Tracked", NewValue: "Tracked!", ChangedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Add(ctx, first))
	require.NoError(t, repo.Add(ctx, second))
	assert.NotZero(t, first.ID)

	entries, err := repo.ListByTodo(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "title", entries[0].Field)
	assert.Equal(t, "pending", entries[1].OldValue)
	assert.True(t, base.Equal(entries[1].ChangedAt))
}

func TestCommentRepo_AddAndList(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	todos := NewSQLiteTodoRepo(database)
	repo := NewSQLiteCommentRepo(database)

	todo := testutil.NewTestTodo("Discussed")
	require.NoError(t, todos.Create(ctx, todo))

	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Add(ctx, &domain.Comment{TodoID: todo.ID, Body: "started", IsAssistant: true, CreatedAt: base}))
	require.NoError(t, repo.Add(ctx, &domain.Comment{TodoID: todo.ID, Body: "thanks", CreatedAt: base.Add(time.Hour)}))

	comments, err := repo.ListByTodo(ctx, todo.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "started", comments[0].Body)
	assert.True(t, comments[0].IsAssistant)
	assert.False(t, comments[1].IsAssistant)
}

func TestHistoryRepo_CascadesWithTodo(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	todos := NewSQLiteTodoRepo(database)
	repo := NewSQLiteHistoryRepo(database)

	todo := testutil.NewTestTodo("Short lived")
	require.NoError(t, todos.Create(ctx, todo))
	require.NoError(t, repo.Add(ctx, &domain.HistoryEntry{TodoID: todo.ID, Field: "title", ChangedAt: time.Now()}))
	require.NoError(t, todos.Delete(ctx, todo.ID))

	entries, err := repo.ListByTodo(ctx, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
