package service

import (
	"context"
	"testing"
	"time"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTrackerLifecycle(t *testing.T) {
	tracker := NewMemoryTaskTracker(time.Hour)
	ctx := context.Background()

	task, err := tracker.Create(ctx, 42, "learning_plan")
	require.NoError(t, err)
	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, model.TaskPending, task.Status)
	assert.Nil(t, task.CompletedAt)

	status := model.TaskProcessing
	progress := 50
	_, err = tracker.Update(ctx, task.TaskID, model.TaskUpdate{Status: &status, Progress: &progress})
	require.NoError(t, err)

	got, err := tracker.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskProcessing, got.Status)
	assert.Equal(t, 50, got.Progress)
	assert.Nil(t, got.CompletedAt, "only finished tasks get a completion time")

	done := model.TaskCompleted
	result := map[string]string{"plan_id": "p1"}
	updated, err := tracker.Update(ctx, task.TaskID, model.TaskUpdate{Status: &done, Result: result})
	require.NoError(t, err)
	assert.NotNil(t, updated.CompletedAt)
	assert.NotNil(t, updated.Result)
}

func TestMemoryTrackerUnknownTask(t *testing.T) {
	tracker := NewMemoryTaskTracker(time.Hour)
	ctx := context.Background()

	_, err := tracker.Get(ctx, "no-such-task")
	assert.ErrorIs(t, err, util.ErrTaskNotFound)

	status := model.TaskFailed
	_, err = tracker.Update(ctx, "no-such-task", model.TaskUpdate{Status: &status})
	assert.ErrorIs(t, err, util.ErrTaskNotFound)
}

func TestMemoryTrackerListByOwner(t *testing.T) {
	tracker := NewMemoryTaskTracker(time.Hour)
	ctx := context.Background()

	_, err := tracker.Create(ctx, 1, "learning_plan")
	require.NoError(t, err)
	_, err = tracker.Create(ctx, 1, "learning_plan")
	require.NoError(t, err)
	_, err = tracker.Create(ctx, 2, "learning_plan")
	require.NoError(t, err)

	mine, err := tracker.ListByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	theirs, err := tracker.ListByOwner(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestMemoryTrackerReturnsCopies(t *testing.T) {
	tracker := NewMemoryTaskTracker(time.Hour)
	ctx := context.Background()

	task, err := tracker.Create(ctx, 1, "learning_plan")
	require.NoError(t, err)

	// Mutating the returned value must not leak into the store.
	task.Progress = 99

	got, err := tracker.Get(ctx, task.TaskID)
	require.NoError(t, err)
	assert.Zero(t, got.Progress)
}

func TestApplyUpdateFailedTaskKeepsError(t *testing.T) {
	task := newTask(1, "learning_plan")

	status := model.TaskFailed
	msg := "upstream blew up"
	applyUpdate(task, model.TaskUpdate{Status: &status, Error: &msg})

	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Equal(t, "upstream blew up", task.Error)
	assert.NotNil(t, task.CompletedAt)
	assert.True(t, task.Status.Finished())
}
