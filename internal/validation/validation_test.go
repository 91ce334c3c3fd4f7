package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasktracker/internal/domain/models"
)

func validRegistration() models.RegisterRequest {
	return models.RegisterRequest{
		ID:       "a81bc81b-dead-4e5d-abff-90865d1e13b1",
		UserName: "Jane Doe",
		Email:    "jane@x.com",
		Password: "Abc12345!",
	}
}

func TestRegistrationValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.RegisterRequest)
		want   error
	}{
		{
			name:   "valid payload",
			mutate: func(r *models.RegisterRequest) {},
			want:   nil,
		},
		{
			name:   "missing id",
			mutate: func(r *models.RegisterRequest) { r.ID = "" },
			want:   ErrUserIDRequired,
		},
		{
			name:   "id not a uuid",
			mutate: func(r *models.RegisterRequest) { r.ID = "not-a-uuid" },
			want:   ErrUserIDFormat,
		},
		{
			name: "uuid but wrong version",
			mutate: func(r *models.RegisterRequest) {
				r.ID = "a81bc81b-dead-11d1-abff-90865d1e13b1"
			},
			want: ErrUserIDFormat,
		},
		{
			name:   "missing name",
			mutate: func(r *models.RegisterRequest) { r.UserName = "" },
			want:   ErrUserNameRequired,
		},
		{
			name: "name too long",
			mutate: func(r *models.RegisterRequest) {
				r.UserName = strings.Repeat("A", 51)
			},
			want: ErrUserNameTooLong,
		},
		{
			name:   "name with digits",
			mutate: func(r *models.RegisterRequest) { r.UserName = "Jane1" },
			want:   ErrUserNamePattern,
		},
		{
			name:   "name with double space",
			mutate: func(r *models.RegisterRequest) { r.UserName = "Jane  Doe" },
			want:   ErrUserNamePattern,
		},
		{
			name:   "name with leading space",
			mutate: func(r *models.RegisterRequest) { r.UserName = " Jane" },
			want:   ErrUserNamePattern,
		},
		{
			name:   "missing email",
			mutate: func(r *models.RegisterRequest) { r.Email = "" },
			want:   ErrEmailRequired,
		},
		{
			name:   "malformed email",
			mutate: func(r *models.RegisterRequest) { r.Email = "jane-at-x.com" },
			want:   ErrEmailFormat,
		},
		{
			name:   "missing password",
			mutate: func(r *models.RegisterRequest) { r.Password = "" },
			want:   ErrPasswordRequired,
		},
		{
			name:   "password too short",
			mutate: func(r *models.RegisterRequest) { r.Password = "Ab1!" },
			want:   ErrPasswordPattern,
		},
		{
			name:   "password without symbol",
			mutate: func(r *models.RegisterRequest) { r.Password = "Abc12345" },
			want:   ErrPasswordPattern,
		},
		{
			name:   "password without uppercase",
			mutate: func(r *models.RegisterRequest) { r.Password = "abc12345!" },
			want:   ErrPasswordPattern,
		},
		{
			name:   "password without digit",
			mutate: func(r *models.RegisterRequest) { r.Password = "Abcdefgh!" },
			want:   ErrPasswordPattern,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			assert.Equal(t, tt.want, v.Registration(req))
		})
	}
}

func TestRegistrationFirstViolationWins(t *testing.T) {
	v := New()

	// Several fields are invalid at once; only the first field's message
	// surfaces.
	req := models.RegisterRequest{
		ID:       "nope",
		UserName: "Jane99",
		Email:    "broken",
		Password: "weak",
	}
	assert.Equal(t, ErrUserIDFormat, v.Registration(req))
}

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name    string
		request models.LoginRequest
		want    error
	}{
		{
			name:    "valid credentials shape",
			request: models.LoginRequest{Email: "jane@x.com", Password: "Abc12345!"},
			want:    nil,
		},
		{
			name:    "bad email",
			request: models.LoginRequest{Email: "jane", Password: "Abc12345!"},
			want:    ErrEmailFormat,
		},
		{
			name:    "weak password shape",
			request: models.LoginRequest{Email: "jane@x.com", Password: "password"},
			want:    ErrPasswordPattern,
		},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Login(tt.request))
		})
	}
}

func TestTaskValidation(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		priority string
		date     string
		want     error
	}{
		{"valid", "Pending", "High", "2025-01-01", nil},
		{"valid in progress", "In Progress", "Low", "2025-06-30", nil},
		{"valid rfc3339 date", "Completed", "Medium", "2025-01-01T10:00:00Z", nil},
		{"missing status", "", "High", "2025-01-01", ErrStatusRequired},
		{"unknown status", "Done", "High", "2025-01-01", ErrStatusValue},
		{"lowercase status", "pending", "High", "2025-01-01", ErrStatusValue},
		{"missing priority", "Pending", "", "2025-01-01", ErrPriorityRequired},
		{"unknown priority", "Pending", "Urgent", "2025-01-01", ErrPriorityValue},
		{"missing date", "Pending", "High", "", ErrDateRequired},
		{"unparseable date", "Pending", "High", "tomorrow", ErrDateFormat},
		{"status reported before priority", "Done", "Urgent", "tomorrow", ErrStatusValue},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Task(tt.status, tt.priority, tt.date))
		})
	}
}

func TestStatusValidation(t *testing.T) {
	v := New()

	assert.NoError(t, v.Status("Completed"))
	assert.Equal(t, ErrStatusValue, v.Status("completed"))
	assert.Equal(t, ErrStatusRequired, v.Status(""))
}

func TestContractMessages(t *testing.T) {
	// The message text is part of the API contract.
	assert.Equal(t, "User ID must be in a valid UUIDv4 format!", ErrUserIDFormat.Error())
	assert.Equal(t, "User name must only contain letters, with optional single spaces between words!", ErrUserNamePattern.Error())
	assert.Equal(t, "Status should be either Pending, In Progress, or Completed", ErrStatusValue.Error())
	assert.Equal(t, "Priority should be either Low, Medium, or High", ErrPriorityValue.Error())
	assert.Equal(t, "date must be a valid date!", ErrDateFormat.Error())
}
