package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"
)

func seedUsers(t *testing.T, store *Storage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.CreateUser(ctx, &models.User{
		ID:       "a81bc81b-dead-4e5d-abff-90865d1e13b1",
		UserName: "Jane Doe",
		Email:    "jane@x.com",
		Password: "hash-a",
	}))
	require.NoError(t, store.CreateUser(ctx, &models.User{
		ID:       "b81bc81b-dead-4e5d-abff-90865d1e13b2",
		UserName: "John Roe",
		Email:    "john@x.com",
		Password: "hash-b",
	}))
}

func seedTask(t *testing.T, store *Storage, userID, name, status, priority string) int64 {
	t.Helper()
	task := &models.Task{
		UserID:      userID,
		TaskName:    name,
		Description: "seeded",
		DueDate:     "2025-01-01",
		Status:      status,
		Priority:    priority,
	}
	require.NoError(t, store.CreateTask(context.Background(), task))
	return task.ID
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)

	err := store.CreateUser(context.Background(), &models.User{
		ID:    "c81bc81b-dead-4e5d-abff-90865d1e13b3",
		Email: "jane@x.com",
	})
	assert.ErrorIs(t, err, errors.ErrUserAlreadyExists)
}

func TestGetUserByEmail(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	user, err := store.GetUserByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.UserName)

	_, err = store.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestUpdateLoginTimestamp(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	at := time.Now().UTC()
	require.NoError(t, store.UpdateLoginTimestamp(ctx, "jane@x.com", at))

	user, err := store.GetUserByEmail(ctx, "jane@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.LoginAt)
	assert.True(t, user.LoginAt.Equal(at))

	assert.ErrorIs(t, store.UpdateLoginTimestamp(ctx, "nobody@x.com", at), errors.ErrUserNotFound)
}

func TestCreateTaskAssignsSequentialIDs(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)

	first := seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "one", "Pending", "High")
	second := seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "two", "Pending", "Low")

	assert.Equal(t, first+1, second)

	task, err := store.GetTaskByID(context.Background(), first, "jane@x.com")
	require.NoError(t, err)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestGetTaskByIDScopesToOwner(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	taskID := seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "private", "Pending", "High")

	task, err := store.GetTaskByID(ctx, taskID, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "private", task.TaskName)

	// Another user's valid id behaves exactly like a missing one.
	_, err = store.GetTaskByID(ctx, taskID, "john@x.com")
	assert.ErrorIs(t, err, errors.ErrTaskNotFound)

	_, err = store.GetTaskByID(ctx, 9999, "jane@x.com")
	assert.ErrorIs(t, err, errors.ErrTaskNotFound)
}

func TestUpdateTaskScopesToOwner(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	taskID := seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "private", "Pending", "High")

	updated := &models.Task{
		TaskName:    "renamed",
		Description: "changed",
		DueDate:     "2025-02-01",
		Status:      "Completed",
		Priority:    "Low",
	}

	affected, err := store.UpdateTask(ctx, taskID, "john@x.com", updated)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = store.UpdateTask(ctx, taskID, "jane@x.com", updated)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	task, err := store.GetTaskByID(ctx, taskID, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, "renamed", task.TaskName)
	assert.Equal(t, "Completed", task.Status)
	// Identity fields survive the update.
	assert.Equal(t, taskID, task.ID)
	assert.Equal(t, "a81bc81b-dead-4e5d-abff-90865d1e13b1", task.UserID)
}

func TestDeleteTaskScopesToOwner(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	taskID := seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "private", "Pending", "High")

	affected, err := store.DeleteTask(ctx, taskID, "john@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = store.DeleteTask(ctx, taskID, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	_, err = store.GetTaskByID(ctx, taskID, "jane@x.com")
	assert.ErrorIs(t, err, errors.ErrTaskNotFound)
}

func TestDeleteAllTasks(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)
	ctx := context.Background()

	seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "one", "Pending", "High")
	seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "two", "Completed", "Low")
	johnTask := seedTask(t, store, "b81bc81b-dead-4e5d-abff-90865d1e13b2", "other", "Pending", "Medium")

	affected, err := store.DeleteAllTasks(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	affected, err = store.DeleteAllTasks(ctx, "jane@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	// John's task is untouched.
	_, err = store.GetTaskByID(ctx, johnTask, "john@x.com")
	assert.NoError(t, err)
}

func TestListTasks(t *testing.T) {
	store := NewStorage()
	seedUsers(t, store)

	seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "Write the report", "Pending", "High")
	seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "Review the report", "Completed", "Low")
	seedTask(t, store, "a81bc81b-dead-4e5d-abff-90865d1e13b1", "Buy groceries", "Pending", "Medium")
	seedTask(t, store, "b81bc81b-dead-4e5d-abff-90865d1e13b2", "John report", "Pending", "High")

	tests := []struct {
		name      string
		email     string
		status    string
		search    string
		wantNames []string
	}{
		{
			name:      "all tasks for the owner",
			email:     "jane@x.com",
			wantNames: []string{"Write the report", "Review the report", "Buy groceries"},
		},
		{
			name:      "status filter",
			email:     "jane@x.com",
			status:    "Pending",
			wantNames: []string{"Write the report", "Buy groceries"},
		},
		{
			name:      "search is case-insensitive",
			email:     "jane@x.com",
			search:    "REPORT",
			wantNames: []string{"Write the report", "Review the report"},
		},
		{
			name:      "status and search compose",
			email:     "jane@x.com",
			status:    "Pending",
			search:    "report",
			wantNames: []string{"Write the report"},
		},
		{
			name:      "other owner sees only their own",
			email:     "john@x.com",
			wantNames: []string{"John report"},
		},
		{
			name:      "no matches yields empty slice",
			email:     "jane@x.com",
			search:    "nonexistent",
			wantNames: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := store.ListTasks(context.Background(), tt.email, tt.status, tt.search)
			require.NoError(t, err)

			names := make([]string, 0, len(tasks))
			for _, task := range tasks {
				names = append(names, task.TaskName)
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}
}
