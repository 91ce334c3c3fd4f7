// Package db implements the user and task store on Postgres. Every task
// statement is qualified by the owner's email resolved to the owning user id,
// so a task belonging to another user is indistinguishable from a missing
// one.
package db

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"

	domainerrors "tasktracker/internal/domain/errors"
	"tasktracker/internal/domain/models"
)

const queryTimeout = 15 * time.Second

const uniqueViolation = "23505"

const taskColumns = `t.id, t.task_name, t.description, t.due_date, t.task_created_at, t.status, t.priority, t.user_id`

type Storage struct {
	// pgx.Conn is not safe for concurrent use; the mutex serializes
	// handler goroutines over the single connection.
	mu   sync.Mutex
	conn *pgx.Conn
	log  *logrus.Logger

	prepCreateUser     string
	prepGetUserByEmail string
	prepUpdateLoginAt  string
	prepCreateTask     string
	prepGetTask        string
	prepUpdateTask     string
	prepDeleteTask     string
	prepDeleteAllTasks string
	prepListTasks      string
	prepListByStatus   string
	prepListBySearch   string
	prepListFiltered   string
}

func NewStorage(connStr string, log *logrus.Logger) (*Storage, error) {
	if log == nil {
		log = logrus.New()
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		return nil, err
	}

	ownerSubquery := `(SELECT id FROM users WHERE email = `

	s := &Storage{
		conn: conn,
		log:  log,

		prepCreateUser:     `INSERT INTO users (id, user_name, email, password) VALUES ($1, $2, $3, $4)`,
		prepGetUserByEmail: `SELECT id, user_name, email, password, login_at FROM users WHERE email = $1`,
		prepUpdateLoginAt:  `UPDATE users SET login_at = $1 WHERE email = $2`,

		prepCreateTask: `INSERT INTO tasks (user_id, task_name, description, due_date, status, priority)
			VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, task_created_at`,
		prepGetTask: `SELECT ` + taskColumns + ` FROM tasks t
			INNER JOIN users u ON u.id = t.user_id WHERE t.id = $1 AND u.email = $2`,
		prepUpdateTask: `UPDATE tasks SET task_name = $1, description = $2, due_date = $3, status = $4, priority = $5
			WHERE id = $6 AND user_id = ` + ownerSubquery + `$7)`,
		prepDeleteTask:     `DELETE FROM tasks WHERE id = $1 AND user_id = ` + ownerSubquery + `$2)`,
		prepDeleteAllTasks: `DELETE FROM tasks WHERE user_id = ` + ownerSubquery + `$1)`,

		prepListTasks: `SELECT ` + taskColumns + ` FROM tasks t
			WHERE t.user_id = ` + ownerSubquery + `$1) ORDER BY t.id`,
		prepListByStatus: `SELECT ` + taskColumns + ` FROM tasks t
			WHERE t.user_id = ` + ownerSubquery + `$1) AND t.status = $2 ORDER BY t.id`,
		prepListBySearch: `SELECT ` + taskColumns + ` FROM tasks t
			WHERE t.user_id = ` + ownerSubquery + `$1) AND (t.task_name ILIKE $2 OR t.description ILIKE $2) ORDER BY t.id`,
		prepListFiltered: `SELECT ` + taskColumns + ` FROM tasks t
			WHERE t.user_id = ` + ownerSubquery + `$1) AND t.status = $2 AND (t.task_name ILIKE $3 OR t.description ILIKE $3) ORDER BY t.id`,
	}
	log.Info("database connection established")
	return s, nil
}

func (s *Storage) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close(ctx)
}

func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "create_user", s.prepCreateUser)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare create user")
		return err
	}
	if _, err := s.conn.Exec(ctx, stmt.Name, user.ID, user.UserName, user.Email, user.Password); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainerrors.ErrUserAlreadyExists
		}
		s.log.WithError(err).Error("failed to create user")
		return err
	}
	s.log.WithField("email", user.Email).Info("user created")
	return nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "get_user_by_email", s.prepGetUserByEmail)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare get user by email")
		return nil, err
	}
	user := &models.User{}
	row := s.conn.QueryRow(ctx, stmt.Name, email)
	if err := row.Scan(&user.ID, &user.UserName, &user.Email, &user.Password, &user.LoginAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerrors.ErrUserNotFound
		}
		s.log.WithError(err).Error("failed to get user")
		return nil, err
	}
	return user, nil
}

func (s *Storage) UpdateLoginTimestamp(ctx context.Context, email string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "update_login_at", s.prepUpdateLoginAt)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare update login timestamp")
		return err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, at, email)
	if err != nil {
		s.log.WithError(err).Error("failed to update login timestamp")
		return err
	}
	if ct.RowsAffected() == 0 {
		return domainerrors.ErrUserNotFound
	}
	return nil
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "create_task", s.prepCreateTask)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare create task")
		return err
	}
	row := s.conn.QueryRow(ctx, stmt.Name, task.UserID, task.TaskName, task.Description, task.DueDate, task.Status, task.Priority)
	if err := row.Scan(&task.ID, &task.CreatedAt); err != nil {
		s.log.WithError(err).Error("failed to create task")
		return err
	}
	s.log.WithField("task_id", task.ID).Info("task created")
	return nil
}

func (s *Storage) GetTaskByID(ctx context.Context, taskID int64, ownerEmail string) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "get_task", s.prepGetTask)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare get task")
		return nil, err
	}
	task := &models.Task{}
	row := s.conn.QueryRow(ctx, stmt.Name, taskID, ownerEmail)
	if err := scanTask(row, task); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainerrors.ErrTaskNotFound
		}
		s.log.WithError(err).Error("failed to get task")
		return nil, err
	}
	return task, nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskID int64, ownerEmail string, task *models.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "update_task", s.prepUpdateTask)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare update task")
		return 0, err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, task.TaskName, task.Description, task.DueDate, task.Status, task.Priority, taskID, ownerEmail)
	if err != nil {
		s.log.WithError(err).Error("failed to update task")
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *Storage) DeleteTask(ctx context.Context, taskID int64, ownerEmail string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "delete_task", s.prepDeleteTask)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare delete task")
		return 0, err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, taskID, ownerEmail)
	if err != nil {
		s.log.WithError(err).Error("failed to delete task")
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *Storage) DeleteAllTasks(ctx context.Context, ownerEmail string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	stmt, err := s.conn.Prepare(ctx, "delete_all_tasks", s.prepDeleteAllTasks)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare delete all tasks")
		return 0, err
	}
	ct, err := s.conn.Exec(ctx, stmt.Name, ownerEmail)
	if err != nil {
		s.log.WithError(err).Error("failed to delete tasks")
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// ListTasks composes the optional status and substring filters conjunctively;
// the four query shapes are prepared separately so each stays a single
// parameterized statement.
func (s *Storage) ListTasks(ctx context.Context, ownerEmail, status, search string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var (
		name string
		sql  string
		args []any
	)
	switch {
	case status != "" && search != "":
		name, sql = "list_tasks_filtered", s.prepListFiltered
		args = []any{ownerEmail, status, "%" + search + "%"}
	case status != "":
		name, sql = "list_tasks_by_status", s.prepListByStatus
		args = []any{ownerEmail, status}
	case search != "":
		name, sql = "list_tasks_by_search", s.prepListBySearch
		args = []any{ownerEmail, "%" + search + "%"}
	default:
		name, sql = "list_tasks", s.prepListTasks
		args = []any{ownerEmail}
	}

	stmt, err := s.conn.Prepare(ctx, name, sql)
	if err != nil {
		s.log.WithError(err).Error("failed to prepare list tasks")
		return nil, err
	}
	rows, err := s.conn.Query(ctx, stmt.Name, args...)
	if err != nil {
		s.log.WithError(err).Error("failed to list tasks")
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task := models.Task{}
		if err := scanTask(rows, &task); err != nil {
			s.log.WithError(err).Error("failed to scan task row")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row, task *models.Task) error {
	return row.Scan(&task.ID, &task.TaskName, &task.Description, &task.DueDate,
		&task.CreatedAt, &task.Status, &task.Priority, &task.UserID)
}
