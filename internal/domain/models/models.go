package models

import "time"

// Task status and priority values accepted by the API.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"

	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

type User struct {
	ID       string     `json:"id"`
	UserName string     `json:"user_name"`
	Email    string     `json:"email"`
	Password string     `json:"-"`
	LoginAt  *time.Time `json:"login_at,omitempty"`
}

type Task struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	TaskName    string    `json:"task_name"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	CreatedAt   time.Time `json:"task_created_at"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
}

type RegisterRequest struct {
	ID       string `json:"id" validate:"required,useruuid"`
	UserName string `json:"userName" validate:"required,max=50,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,userpassword"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,userpassword"`
}

type CreateTaskRequest struct {
	TaskName    string `json:"taskName"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

// EditTaskRequest uses pointers so an omitted field can be told apart from an
// empty one: omitted fields keep their stored values.
type EditTaskRequest struct {
	TaskName    *string `json:"taskName"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}
