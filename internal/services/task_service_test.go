package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prudhvinik1/mobilerp/internal/models"
	"github.com/prudhvinik1/mobilerp/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTask(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewTaskService(store.Tasks, store.Activities)
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	task, err := service.CreateTask(ctx, CreateTaskInput{
		UserID:  uuid.New(),
		Title:   "Reorder A4 Paper",
		DueDate: &due,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.False(t, task.IsCompleted)
	assert.Nil(t, task.CompletedAt)
}

func TestSetCompleted_RoundTrip(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewTaskService(store.Tasks, store.Activities)
	ctx := context.Background()
	userID := uuid.New()

	task, err := service.CreateTask(ctx, CreateTaskInput{UserID: userID, Title: "Follow up"})
	require.NoError(t, err)

	// Repeated toggles: completing sets CompletedAt, reopening clears it.
	for i := 0; i < 3; i++ {
		completed, err := service.SetCompleted(ctx, task.ID, true)
		require.NoError(t, err)
		assert.True(t, completed.IsCompleted)
		require.NotNil(t, completed.CompletedAt)

		reopened, err := service.SetCompleted(ctx, task.ID, false)
		require.NoError(t, err)
		assert.False(t, reopened.IsCompleted)
		assert.Nil(t, reopened.CompletedAt)
	}
}

func TestSetCompleted_AppendsActivity(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewTaskService(store.Tasks, store.Activities)
	ctx := context.Background()
	userID := uuid.New()

	task, err := service.CreateTask(ctx, CreateTaskInput{UserID: userID, Title: "Approve purchase orders"})
	require.NoError(t, err)

	_, err = service.SetCompleted(ctx, task.ID, true)
	require.NoError(t, err)

	activities, err := store.Activities.GetByUserID(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActivityTaskCompleted, activities[0].Type)
	assert.Equal(t, task.Title, activities[0].Description)
	require.NotNil(t, activities[0].Reference)
	assert.Equal(t, task.ID.String(), *activities[0].Reference)

	// Reopening does not touch the log.
	_, err = service.SetCompleted(ctx, task.ID, false)
	require.NoError(t, err)
	activities, err = store.Activities.GetByUserID(ctx, userID, 0)
	require.NoError(t, err)
	assert.Len(t, activities, 1)
}

func TestSetCompleted_NotFound(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewTaskService(store.Tasks, store.Activities)

	_, err := service.SetCompleted(context.Background(), uuid.New(), true)

	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteTask(t *testing.T) {
	store := repositories.NewMemoryStore()
	service := NewTaskService(store.Tasks, store.Activities)
	ctx := context.Background()

	task, err := service.CreateTask(ctx, CreateTaskInput{UserID: uuid.New(), Title: "Temp"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteTask(ctx, task.ID))
	assert.ErrorIs(t, service.DeleteTask(ctx, task.ID), repositories.ErrNotFound)
}
