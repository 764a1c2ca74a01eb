package services

import (
	"errors"
	"time"

	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// TaskFilters narrows a listing. Each non-zero filter is an equality match,
// ANDed into the visibility predicate.
type TaskFilters struct {
	Status     string
	Priority   string
	AssignedTo *uuid.UUID
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

// TaskUpdate carries a partial update. Zero-valued Title/DueDate/Priority/
// Status leave the stored value untouched. Description and AssignedTo track
// key presence separately so an empty string or explicit null can overwrite.
type TaskUpdate struct {
	Title         string
	Description   *string
	DueDate       time.Time
	Priority      string
	Status        string
	AssignedTo    *uuid.UUID
	AssignedToSet bool
}

type TaskService interface {
	ListTasks(db *gorm.DB, actor *models.User, filters TaskFilters, page, limit int) ([]models.Task, Pagination, error)
	GetTaskByID(db *gorm.DB, id uuid.UUID) (*models.Task, error)
	CreateTask(db *gorm.DB, task models.Task) (*models.Task, error)
	UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (*models.Task, error)
	SetStatus(db *gorm.DB, id uuid.UUID, status string) (*models.Task, error)
	SetPriority(db *gorm.DB, id uuid.UUID, priority string) (*models.Task, error)
	DeleteTask(db *gorm.DB, id uuid.UUID, actor *models.User, ownerOnly bool) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

// ListTasks returns one page of tasks visible to the actor, newest first.
// Non-admins only see tasks they created or are assigned to.
func (s *TaskServiceImpl) ListTasks(db *gorm.DB, actor *models.User, filters TaskFilters, page, limit int) ([]models.Task, Pagination, error) {
	page, limit = normalizePaging(page, limit)

	query := db.Model(&models.Task{})

	if !actor.IsAdmin() {
		query = query.Where("(created_by = ? OR assigned_to = ?)", actor.ID, actor.ID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		query = query.Where("priority = ?", filters.Priority)
	}
	if filters.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filters.AssignedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}

	var tasks []models.Task
	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error
	if err != nil {
		return nil, Pagination{}, err
	}

	if err := populateTasks(db, tasks); err != nil {
		return nil, Pagination{}, err
	}

	return tasks, buildPagination(total, page, limit), nil
}

func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func buildPagination(total int64, page, limit int) Pagination {
	return Pagination{
		Current: page,
		Pages:   int((total + int64(limit) - 1) / int64(limit)),
		Total:   total,
		Limit:   limit,
	}
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := populateTask(db, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// CreateTask persists a new task. CreatedByID must already be forced to the
// authenticated creator by the caller.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task models.Task) (*models.Task, error) {
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if !models.IsValidPriority(task.Priority) {
		return nil, ErrInvalidPriority
	}
	if !models.IsValidStatus(task.Status) {
		return nil, ErrInvalidStatus
	}

	task.ID = uuid.Must(uuid.NewV4())
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := db.Create(&task).Error; err != nil {
		return nil, err
	}

	if err := populateTask(db, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateTask merges the supplied fields into the stored task. Title, dueDate,
// priority and status only overwrite when non-zero; description overwrites
// whenever the key was present (empty string clears it); assignedTo can be
// nulled out explicitly. CreatedByID is never touched.
func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id uuid.UUID, update TaskUpdate) (*models.Task, error) {
	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := applyUpdate(&task, update); err != nil {
		return nil, err
	}

	if err := db.Save(&task).Error; err != nil {
		return nil, err
	}

	if err := populateTask(db, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

// applyUpdate merges the request into the stored task. Zero-valued fields are
// kept, except description (present key overwrites, empty string clears) and
// assignedTo (present key overwrites, null unassigns). The enum fields are
// validated before anything is touched.
func applyUpdate(task *models.Task, update TaskUpdate) error {
	if update.Status != "" && !models.IsValidStatus(update.Status) {
		return ErrInvalidStatus
	}
	if update.Priority != "" && !models.IsValidPriority(update.Priority) {
		return ErrInvalidPriority
	}

	if update.Title != "" {
		task.Title = update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if !update.DueDate.IsZero() {
		task.DueDate = update.DueDate
	}
	if update.Priority != "" {
		task.Priority = update.Priority
	}
	if update.Status != "" {
		task.Status = update.Status
	}
	if update.AssignedToSet {
		task.AssignedToID = update.AssignedTo
	}
	task.UpdatedAt = time.Now()

	return nil
}

// SetStatus performs the narrow status-only transition: validate against the
// enum before touching storage, then update the single column atomically.
func (s *TaskServiceImpl) SetStatus(db *gorm.DB, id uuid.UUID, status string) (*models.Task, error) {
	if !models.IsValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.setField(db, id, "status", status)
}

// SetPriority is the priority counterpart of SetStatus.
func (s *TaskServiceImpl) SetPriority(db *gorm.DB, id uuid.UUID, priority string) (*models.Task, error) {
	if !models.IsValidPriority(priority) {
		return nil, ErrInvalidPriority
	}
	return s.setField(db, id, "priority", priority)
}

func (s *TaskServiceImpl) setField(db *gorm.DB, id uuid.UUID, column string, value string) (*models.Task, error) {
	result := db.Model(&models.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{column: value, "updated_at": time.Now()})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetTaskByID(db, id)
}

// DeleteTask removes a task. With ownerOnly enabled, non-admins may only
// delete tasks they created; otherwise any authenticated actor may delete any
// task, which matches the historical behavior.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id uuid.UUID, actor *models.User, ownerOnly bool) error {
	var task models.Task
	if err := db.Where("id = ?", id).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if ownerOnly && !actor.IsAdmin() && task.CreatedByID != actor.ID {
		return ErrForbidden
	}

	return db.Delete(&models.Task{}, "id = ?", id).Error
}

// populateTasks resolves createdBy/assignedTo references to {id,name,email}
// projections with a single query across the whole page.
func populateTasks(db *gorm.DB, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	idSet := make(map[uuid.UUID]struct{}, len(tasks)*2)
	for i := range tasks {
		idSet[tasks[i].CreatedByID] = struct{}{}
		if tasks[i].AssignedToID != nil {
			idSet[*tasks[i].AssignedToID] = struct{}{}
		}
	}

	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var refs []models.UserRef
	if err := db.Model(&models.User{}).Where("id IN ?", ids).Find(&refs).Error; err != nil {
		return err
	}

	byID := make(map[uuid.UUID]*models.UserRef, len(refs))
	for i := range refs {
		byID[refs[i].ID] = &refs[i]
	}

	for i := range tasks {
		tasks[i].CreatedBy = byID[tasks[i].CreatedByID]
		if tasks[i].AssignedToID != nil {
			tasks[i].AssignedTo = byID[*tasks[i].AssignedToID]
		}
	}

	return nil
}

func populateTask(db *gorm.DB, task *models.Task) error {
	batch := []models.Task{*task}
	if err := populateTasks(db, batch); err != nil {
		return err
	}
	task.CreatedBy = batch[0].CreatedBy
	task.AssignedTo = batch[0].AssignedTo
	return nil
}
