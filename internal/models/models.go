package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Task represents a task owned by a user on the server
type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int    `json:"owner_id"`
}

// UnmarshalJSON accepts a null description as empty
func (t *Task) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID          int     `json:"id"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		OwnerID     int     `json:"owner_id"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	t.ID = w.ID
	t.Title = w.Title
	t.OwnerID = w.OwnerID
	t.Description = ""
	if w.Description != nil {
		t.Description = *w.Description
	}
	return nil
}

// Ref returns the short display reference for a task, e.g. "#12"
func (t *Task) Ref() string {
	return fmt.Sprintf("#%d", t.ID)
}

// TaskInput is the body for creating a task
type TaskInput struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	Description string `json:"description"`
}

// Normalize trims surrounding whitespace from the title
func (in TaskInput) Normalize() TaskInput {
	in.Title = strings.TrimSpace(in.Title)
	return in
}

// User represents an account on the server
type User struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
}

// NewUser is the body for registering an account
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput holds the credentials submitted to the token endpoint
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Token is the response from the access-token endpoint
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RemoveTask returns tasks without the task with the given id.
// Order of the remaining tasks is preserved.
func RemoveTask(tasks []Task, id int) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// FindTask returns the index of the task with the given id, or -1
func FindTask(tasks []Task, id int) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
