package api

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Username) == "" {
		errs = append(errs, "username is required")
	}
	if r.Password == "" {
		errs = append(errs, "password is required")
	}
	return errs
}

type SyncRequest struct {
	UserID string `json:"userId"`
}

func (r SyncRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, "userId must be a valid id")
	}
	return errs
}

type CreateTaskRequest struct {
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
}

func (r CreateTaskRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.UserID) == "" {
		errs = append(errs, "userId is required")
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, "userId must be a valid id")
	}
	if strings.TrimSpace(r.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

type UpdateTaskRequest struct {
	IsCompleted *bool `json:"isCompleted"`
}

func (r UpdateTaskRequest) Validate() []string {
	var errs []string
	if r.IsCompleted == nil {
		errs = append(errs, "isCompleted must be a boolean")
	}
	return errs
}
