package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// stubTaskService records arguments and serves tasks from a map so handler
// tests run without a database.
type stubTaskService struct {
	tasks      map[uuid.UUID]*models.Task
	lastUpdate services.TaskUpdate
	lastActor  *models.User
	lastOwner  bool
	failWith   error
}

func newStubTaskService() *stubTaskService {
	return &stubTaskService{tasks: make(map[uuid.UUID]*models.Task)}
}

func (s *stubTaskService) add(task models.Task) *models.Task {
	if task.ID == uuid.Nil {
		task.ID = uuid.Must(uuid.NewV4())
	}
	s.tasks[task.ID] = &task
	return &task
}

func (s *stubTaskService) ListTasks(db *gorm.DB, actor *models.User, filters services.TaskFilters, page, limit int) ([]models.Task, services.Pagination, error) {
	if s.failWith != nil {
		return nil, services.Pagination{}, s.failWith
	}
	s.lastActor = actor
	var out []models.Task
	for _, task := range s.tasks {
		out = append(out, *task)
	}
	if limit < 1 {
		limit = services.DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	total := int64(len(out))
	pagination := services.Pagination{
		Current: page,
		Pages:   int((total + int64(limit) - 1) / int64(limit)),
		Total:   total,
		Limit:   limit,
	}
	return out, pagination, nil
}

func (s *stubTaskService) GetTaskByID(db *gorm.DB, id uuid.UUID) (*models.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	task, exists := s.tasks[id]
	if !exists {
		return nil, services.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (s *stubTaskService) CreateTask(db *gorm.DB, task models.Task) (*models.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	return s.add(task), nil
}

func (s *stubTaskService) UpdateTask(db *gorm.DB, id uuid.UUID, update services.TaskUpdate) (*models.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastUpdate = update
	task, exists := s.tasks[id]
	if !exists {
		return nil, services.ErrNotFound
	}
	if update.Status != "" && !models.IsValidStatus(update.Status) {
		return nil, services.ErrInvalidStatus
	}
	if update.Priority != "" && !models.IsValidPriority(update.Priority) {
		return nil, services.ErrInvalidPriority
	}
	if update.Title != "" {
		task.Title = update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.AssignedToSet {
		task.AssignedToID = update.AssignedTo
	}
	copied := *task
	return &copied, nil
}

func (s *stubTaskService) SetStatus(db *gorm.DB, id uuid.UUID, status string) (*models.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if !models.IsValidStatus(status) {
		return nil, services.ErrInvalidStatus
	}
	task, exists := s.tasks[id]
	if !exists {
		return nil, services.ErrNotFound
	}
	task.Status = status
	copied := *task
	return &copied, nil
}

func (s *stubTaskService) SetPriority(db *gorm.DB, id uuid.UUID, priority string) (*models.Task, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	if !models.IsValidPriority(priority) {
		return nil, services.ErrInvalidPriority
	}
	task, exists := s.tasks[id]
	if !exists {
		return nil, services.ErrNotFound
	}
	task.Priority = priority
	copied := *task
	return &copied, nil
}

func (s *stubTaskService) DeleteTask(db *gorm.DB, id uuid.UUID, actor *models.User, ownerOnly bool) error {
	if s.failWith != nil {
		return s.failWith
	}
	s.lastActor = actor
	s.lastOwner = ownerOnly
	if _, exists := s.tasks[id]; !exists {
		return services.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

type stubUserService struct {
	users     []models.User
	createErr error
	deleteErr error
}

func (s *stubUserService) ListUsers(db *gorm.DB) ([]models.User, error) {
	return s.users, nil
}

func (s *stubUserService) GetUserByID(db *gorm.DB, id uuid.UUID) (*models.User, error) {
	for i := range s.users {
		if s.users[i].ID == id {
			return &s.users[i], nil
		}
	}
	return nil, services.ErrNotFound
}

func (s *stubUserService) CreateUser(db *gorm.DB, name, email, password, role string) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.IsValidRole(role) {
		return nil, services.ErrInvalidRole
	}
	user := models.User{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  name,
		Email: email,
		Role:  role,
	}
	s.users = append(s.users, user)
	return &user, nil
}

func (s *stubUserService) DeleteUser(db *gorm.DB, id, actingUserID uuid.UUID) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if id == actingUserID {
		return services.ErrSelfDelete
	}
	for i := range s.users {
		if s.users[i].ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return nil
		}
	}
	return services.ErrNotFound
}

type stubAuthService struct {
	user    *models.User
	authErr error
}

func (s *stubAuthService) Authenticate(db *gorm.DB, email, password string) (*models.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.user, nil
}

func (s *stubAuthService) GenerateToken(user *models.User) (string, int64, error) {
	return "test-token", 3600, nil
}

func (s *stubAuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	if s.user == nil {
		return uuid.Nil, services.ErrInvalidCredentials
	}
	return s.user.ID, nil
}

// asUser injects the authenticated user the way the auth middleware does.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		c.Set("user_id", user.ID.String())
		c.Next()
	}
}

func testActor() *models.User {
	return &models.User{
		ID:    uuid.Must(uuid.NewV4()),
		Name:  "Alice",
		Email: "alice@example.com",
		Role:  models.RoleUser,
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Expected request body to marshal, got %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("Expected valid JSON response, got %v: %s", err, w.Body.String())
	}
}

func bodyContains(w *httptest.ResponseRecorder, substr string) bool {
	return strings.Contains(w.Body.String(), substr)
}

func futureDate() string {
	return time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
}
