package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"learning_copilot_backend/internal/model"
	"learning_copilot_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// TaskTracker is the injected bookkeeping store for long-running
// generations. Implementations must be safe for concurrent use.
type TaskTracker interface {
	Create(ctx context.Context, ownerID uint, taskType string) (*model.AsyncTask, error)
	Get(ctx context.Context, taskID string) (*model.AsyncTask, error)
	Update(ctx context.Context, taskID string, update model.TaskUpdate) (*model.AsyncTask, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*model.AsyncTask, error)
}

func applyUpdate(task *model.AsyncTask, update model.TaskUpdate) {
	now := time.Now()
	if update.Status != nil {
		task.Status = *update.Status
		if task.Status.Finished() && task.CompletedAt == nil {
			task.CompletedAt = &now
		}
	}
	if update.Progress != nil {
		task.Progress = *update.Progress
	}
	if update.Message != nil {
		task.Message = *update.Message
	}
	if update.Result != nil {
		task.Result = update.Result
	}
	if update.Error != nil {
		task.Error = *update.Error
	}
	task.UpdatedAt = now
}

func newTask(ownerID uint, taskType string) *model.AsyncTask {
	now := time.Now()
	return &model.AsyncTask{
		TaskID:    uuid.New().String(),
		OwnerID:   ownerID,
		TaskType:  taskType,
		Status:    model.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MemoryTaskTracker keeps tasks in a mutex-guarded map. A janitor sweeps
// finished tasks out after the TTL.
type MemoryTaskTracker struct {
	mu    sync.RWMutex
	tasks map[string]*model.AsyncTask
	ttl   time.Duration
}

func NewMemoryTaskTracker(ttl time.Duration) *MemoryTaskTracker {
	t := &MemoryTaskTracker{
		tasks: make(map[string]*model.AsyncTask),
		ttl:   ttl,
	}
	go t.janitor()
	return t
}

func (t *MemoryTaskTracker) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		t.mu.Lock()
		for id, task := range t.tasks {
			if task.Status.Finished() && task.CompletedAt != nil && time.Since(*task.CompletedAt) > t.ttl {
				delete(t.tasks, id)
			}
		}
		t.mu.Unlock()
	}
}

func (t *MemoryTaskTracker) Create(ctx context.Context, ownerID uint, taskType string) (*model.AsyncTask, error) {
	task := newTask(ownerID, taskType)
	t.mu.Lock()
	t.tasks[task.TaskID] = task
	t.mu.Unlock()
	copied := *task
	return &copied, nil
}

func (t *MemoryTaskTracker) Get(ctx context.Context, taskID string) (*model.AsyncTask, error) {
	t.mu.RLock()
	task, ok := t.tasks[taskID]
	if !ok {
		t.mu.RUnlock()
		return nil, util.ErrTaskNotFound
	}
	copied := *task
	t.mu.RUnlock()
	return &copied, nil
}

func (t *MemoryTaskTracker) Update(ctx context.Context, taskID string, update model.TaskUpdate) (*model.AsyncTask, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.tasks[taskID]
	if !ok {
		return nil, util.ErrTaskNotFound
	}
	applyUpdate(task, update)
	copied := *task
	return &copied, nil
}

func (t *MemoryTaskTracker) ListByOwner(ctx context.Context, ownerID uint) ([]*model.AsyncTask, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var result []*model.AsyncTask
	for _, task := range t.tasks {
		if task.OwnerID == ownerID {
			copied := *task
			result = append(result, &copied)
		}
	}
	return result, nil
}

// RedisTaskTracker keeps tasks as JSON values with a TTL, so state survives
// restarts and is shared across replicas.
type RedisTaskTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTaskTracker(rdb *redis.Client, ttl time.Duration) *RedisTaskTracker {
	return &RedisTaskTracker{rdb: rdb, ttl: ttl}
}

const (
	taskKeyPrefix  = "task:"
	ownerKeyPrefix = "task_owner:"
)

func (t *RedisTaskTracker) key(taskID string) string {
	return taskKeyPrefix + taskID
}

func (t *RedisTaskTracker) ownerKey(ownerID uint) string {
	return fmt.Sprintf("%s%d", ownerKeyPrefix, ownerID)
}

func (t *RedisTaskTracker) store(ctx context.Context, task *model.AsyncTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return t.rdb.Set(ctx, t.key(task.TaskID), data, t.ttl).Err()
}

func (t *RedisTaskTracker) Create(ctx context.Context, ownerID uint, taskType string) (*model.AsyncTask, error) {
	task := newTask(ownerID, taskType)
	if err := t.store(ctx, task); err != nil {
		return nil, util.NewUpstreamError("redis", "task create", err)
	}
	if err := t.rdb.SAdd(ctx, t.ownerKey(ownerID), task.TaskID).Err(); err != nil {
		return nil, util.NewUpstreamError("redis", "task create", err)
	}
	t.rdb.Expire(ctx, t.ownerKey(ownerID), t.ttl)
	return task, nil
}

func (t *RedisTaskTracker) Get(ctx context.Context, taskID string) (*model.AsyncTask, error) {
	data, err := t.rdb.Get(ctx, t.key(taskID)).Bytes()
	if err == redis.Nil {
		return nil, util.ErrTaskNotFound
	}
	if err != nil {
		return nil, util.NewUpstreamError("redis", "task get", err)
	}
	var task model.AsyncTask
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (t *RedisTaskTracker) Update(ctx context.Context, taskID string, update model.TaskUpdate) (*model.AsyncTask, error) {
	task, err := t.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	applyUpdate(task, update)
	if err := t.store(ctx, task); err != nil {
		return nil, util.NewUpstreamError("redis", "task update", err)
	}
	return task, nil
}

func (t *RedisTaskTracker) ListByOwner(ctx context.Context, ownerID uint) ([]*model.AsyncTask, error) {
	ids, err := t.rdb.SMembers(ctx, t.ownerKey(ownerID)).Result()
	if err != nil {
		return nil, util.NewUpstreamError("redis", "task list", err)
	}
	var result []*model.AsyncTask
	for _, id := range ids {
		task, err := t.Get(ctx, id)
		if err != nil {
			continue // expired
		}
		result = append(result, task)
	}
	return result, nil
}
