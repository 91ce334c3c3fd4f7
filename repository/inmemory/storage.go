// Package inmemory is a map-backed user and task store used as a startup
// fallback and in tests. It applies the same ownership scoping as the
// Postgres adapter.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"
)

type Storage struct {
	mu     sync.RWMutex
	users  map[string]models.User // keyed by user id
	tasks  map[int64]models.Task
	nextID int64
}

func NewStorage() *Storage {
	return &Storage{
		users: make(map[string]models.User),
		tasks: make(map[int64]models.Task),
	}
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return errors.ErrUserAlreadyExists
		}
	}
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.userByEmail(email)
	if !ok {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) UpdateLoginTimestamp(_ context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.userByEmail(email)
	if !ok {
		return errors.ErrUserNotFound
	}
	user.LoginAt = &at
	s.users[user.ID] = user
	return nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	task.ID = s.nextID
	task.CreatedAt = time.Now()
	s.tasks[task.ID] = *task
	return nil
}

func (s *Storage) GetTaskByID(_ context.Context, taskID int64, ownerEmail string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.ownedTask(taskID, ownerEmail)
	if !ok {
		return nil, errors.ErrTaskNotFound
	}
	return &task, nil
}

func (s *Storage) UpdateTask(_ context.Context, taskID int64, ownerEmail string, task *models.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.ownedTask(taskID, ownerEmail)
	if !ok {
		return 0, nil
	}
	stored.TaskName = task.TaskName
	stored.Description = task.Description
	stored.DueDate = task.DueDate
	stored.Status = task.Status
	stored.Priority = task.Priority
	s.tasks[taskID] = stored
	return 1, nil
}

func (s *Storage) DeleteTask(_ context.Context, taskID int64, ownerEmail string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ownedTask(taskID, ownerEmail); !ok {
		return 0, nil
	}
	delete(s.tasks, taskID)
	return 1, nil
}

func (s *Storage) DeleteAllTasks(_ context.Context, ownerEmail string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.userByEmail(ownerEmail)
	if !ok {
		return 0, nil
	}
	var deleted int64
	for id, task := range s.tasks {
		if task.UserID == owner.ID {
			delete(s.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *Storage) ListTasks(_ context.Context, ownerEmail, status, search string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.userByEmail(ownerEmail)
	if !ok {
		return []models.Task{}, nil
	}

	needle := strings.ToLower(search)
	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID != owner.ID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.TaskName), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

func (s *Storage) userByEmail(email string) (models.User, bool) {
	for _, user := range s.users {
		if user.Email == email {
			return user, true
		}
	}
	return models.User{}, false
}

func (s *Storage) ownedTask(taskID int64, ownerEmail string) (models.Task, bool) {
	task, ok := s.tasks[taskID]
	if !ok {
		return models.Task{}, false
	}
	owner, ok := s.userByEmail(ownerEmail)
	if !ok || task.UserID != owner.ID {
		return models.Task{}, false
	}
	return task, true
}
