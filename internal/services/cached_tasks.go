package services

import (
	"fmt"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const taskCacheTTL = 5 * time.Minute

// CachedTaskService decorates a TaskService with read-through caching of
// single-task fetches. Listings are never cached: their result depends on the
// actor and filters, and stale pages would break the visibility rules.
type CachedTaskService struct {
	inner TaskService
	cache cache.Cache
}

func NewCachedTaskService(inner TaskService, cacheInstance cache.Cache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

func taskCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("task:%s", id)
}

func (s *CachedTaskService) ListTasks(db *gorm.DB, actor *models.User, filters TaskFilters, page, limit int) ([]models.Task, Pagination, error) {
	return s.inner.ListTasks(db, actor, filters, page, limit)
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(taskCacheKey(id), &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetTaskByID(db, id)
	if err != nil {
		return nil, err
	}

	// Best effort; a failed Set only costs the next read a DB round trip.
	_ = s.cache.Set(taskCacheKey(id), task, taskCacheTTL)

	return task, nil
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task models.Task) (*models.Task, error) {
	created, err := s.inner.CreateTask(db, task)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(taskCacheKey(created.ID), created, taskCacheTTL)
	return created, nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	task, err := s.inner.UpdateTask(db, id, update)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) SetStatus(db *gorm.DB, id uuid.UUID, status string) (*models.Task, error) {
	task, err := s.inner.SetStatus(db, id, status)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) SetPriority(db *gorm.DB, id uuid.UUID, priority string) (*models.Task, error) {
	task, err := s.inner.SetPriority(db, id, priority)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(taskCacheKey(id), task, taskCacheTTL)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id uuid.UUID, actor *models.User, ownerOnly bool) error {
	if err := s.inner.DeleteTask(db, id, actor, ownerOnly); err != nil {
		return err
	}
	_ = s.cache.Delete(taskCacheKey(id))
	return nil
}
