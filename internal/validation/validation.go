// Package validation checks registration, login and task payloads against the
// API's declared rules. Checks are fail-fast: only the first violated rule is
// reported, and its message is part of the user-visible contract.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

var (
	ErrUserIDRequired   = errors.New("User ID is required!")
	ErrUserIDFormat     = errors.New("User ID must be in a valid UUIDv4 format!")
	ErrUserNameRequired = errors.New("User name is required!")
	ErrUserNameTooLong  = errors.New("User name must be 50 characters or less!")
	ErrUserNamePattern  = errors.New("User name must only contain letters, with optional single spaces between words!")
	ErrEmailRequired    = errors.New("Email address is required!")
	ErrEmailFormat      = errors.New("Invalid email address format!")
	ErrPasswordRequired = errors.New("Password is required!")
	ErrPasswordPattern  = errors.New("Password must include at least one uppercase letter, one lowercase letter, one digit, one special character (@#$%^&*!), and be at least 8 characters long!")
	ErrStatusRequired   = errors.New("Status is required!")
	ErrStatusValue      = errors.New("Status should be either Pending, In Progress, or Completed")
	ErrPriorityRequired = errors.New("Priority is required!")
	ErrPriorityValue    = errors.New("Priority should be either Low, Medium, or High")
	ErrDateRequired     = errors.New("Event date is required!")
	ErrDateFormat       = errors.New("date must be a valid date!")

	ErrUnknownField = errors.New("invalid payload")
)

var userNamePattern = regexp.MustCompile(`^[A-Za-z]+( [A-Za-z]+)*$`)

const passwordSymbols = "@#$%^&*!"

type taskPayload struct {
	Status   string `validate:"required,taskstatus"`
	Priority string `validate:"required,taskpriority"`
	Date     string `validate:"required,taskdate"`
}

type statusPayload struct {
	Status string `validate:"required,taskstatus"`
}

type Validator struct {
	valid *validator.Validate
}

func New() *Validator {
	v := validator.New()

	mustRegister(v, "useruuid", func(fl validator.FieldLevel) bool {
		u, err := uuid.Parse(fl.Field().String())
		return err == nil && u.Version() == 4
	})
	mustRegister(v, "username", func(fl validator.FieldLevel) bool {
		return userNamePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "userpassword", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	mustRegister(v, "taskstatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "Pending" || s == "In Progress" || s == "Completed"
	})
	mustRegister(v, "taskpriority", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "Low" || s == "Medium" || s == "High"
	})
	mustRegister(v, "taskdate", func(fl validator.FieldLevel) bool {
		return isValidDate(fl.Field().String())
	})

	return &Validator{valid: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Registration checks the whole registration payload. The payload struct
// carries the rule tags; callers pass request types from the models package.
func (v *Validator) Registration(payload any) error {
	return v.firstViolation(v.valid.Struct(payload))
}

// Login shares the email and password rules with Registration.
func (v *Validator) Login(payload any) error {
	return v.firstViolation(v.valid.Struct(payload))
}

// Task checks the status/priority/due-date triple of a create or edit call.
// Name and description carry no format rules.
func (v *Validator) Task(status, priority, date string) error {
	return v.firstViolation(v.valid.Struct(taskPayload{
		Status:   status,
		Priority: priority,
		Date:     date,
	}))
}

// Status checks a bare status value, used by list filtering.
func (v *Validator) Status(status string) error {
	return v.firstViolation(v.valid.Struct(statusPayload{Status: status}))
}

// firstViolation maps the first failed rule to its contract message.
func (v *Validator) firstViolation(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return ErrUnknownField
	}

	verr := verrs[0]
	required := verr.Tag() == "required"
	switch verr.Field() {
	case "ID":
		if required {
			return ErrUserIDRequired
		}
		return ErrUserIDFormat
	case "UserName":
		if required {
			return ErrUserNameRequired
		}
		if verr.Tag() == "max" {
			return ErrUserNameTooLong
		}
		return ErrUserNamePattern
	case "Email":
		if required {
			return ErrEmailRequired
		}
		return ErrEmailFormat
	case "Password":
		if required {
			return ErrPasswordRequired
		}
		return ErrPasswordPattern
	case "Status":
		if required {
			return ErrStatusRequired
		}
		return ErrStatusValue
	case "Priority":
		if required {
			return ErrPriorityRequired
		}
		return ErrPriorityValue
	case "Date":
		if required {
			return ErrDateRequired
		}
		return ErrDateFormat
	}
	return ErrUnknownField
}

func isStrongPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func isValidDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}
