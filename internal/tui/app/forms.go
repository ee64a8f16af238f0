package app

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/taskops/internal/models"
	"github.com/marcus/taskops/internal/validate"
)

// AuthMode selects the login or register variant of the auth form
type AuthMode int

const (
	AuthLogin AuthMode = iota
	AuthRegister
)

func (m AuthMode) String() string {
	if m == AuthRegister {
		return "register"
	}
	return "login"
}

// AuthFormState holds the login/register form. Bubble Tea copies the Model
// on every update, so the huh field bindings must point into a struct that
// lives behind a pointer.
type AuthFormState struct {
	Mode       AuthMode
	Email      string
	Password   string
	Form       *huh.Form
	Submitting bool
}

// NewAuthFormState builds an auth form with email prefilled
func NewAuthFormState(mode AuthMode, email string) *AuthFormState {
	fs := &AuthFormState{Mode: mode, Email: email}
	fs.buildForm()
	return fs
}

func (fs *AuthFormState) buildForm() {
	passwordTitle := "Password"
	if fs.Mode == AuthRegister {
		passwordTitle = "Password (min 8 characters)"
	}

	fs.Form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Value(&fs.Email).
				Validate(func(s string) error {
					return validate.Var("email", strings.TrimSpace(s), "required,email")
				}),
			huh.NewInput().
				Key("password").
				Title(passwordTitle).
				EchoMode(huh.EchoModePassword).
				Value(&fs.Password).
				Validate(fs.validatePassword),
		),
	)
	fs.Form.WithTheme(huh.ThemeDracula())
}

func (fs *AuthFormState) validatePassword(s string) error {
	tag := "required"
	if fs.Mode == AuthRegister {
		tag = "required,min=8"
	}
	return validate.Var("password", s, tag)
}

// Reset rebuilds the form, keeping the email and clearing the password
func (fs *AuthFormState) Reset() {
	fs.Password = ""
	fs.Submitting = false
	fs.buildForm()
}

// Validate checks all fields at once
func (fs *AuthFormState) Validate() error {
	if fs.Mode == AuthRegister {
		return validate.Struct(fs.ToNewUser())
	}
	return validate.Struct(models.LoginInput{Email: strings.TrimSpace(fs.Email), Password: fs.Password})
}

// ToNewUser converts form values to a registration body
func (fs *AuthFormState) ToNewUser() models.NewUser {
	return models.NewUser{Email: strings.TrimSpace(fs.Email), Password: fs.Password}
}

// TaskFormState holds the new-task form
type TaskFormState struct {
	Title       string
	Description string
	Form        *huh.Form
	Submitting  bool
}

// NewTaskFormState builds an empty task form
func NewTaskFormState() *TaskFormState {
	fs := &TaskFormState{}
	fs.buildForm()
	return fs
}

func (fs *TaskFormState) buildForm() {
	fs.Form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("title").
				Title("Title").
				Value(&fs.Title).
				Validate(func(s string) error {
					return validate.Var("title", s, "notblank,max=255")
				}),
			huh.NewText().
				Key("description").
				Title("Description (optional, markdown)").
				Lines(4).
				Value(&fs.Description),
		),
	)
	fs.Form.WithTheme(huh.ThemeDracula())
}

// Rebuild recreates the form keeping the entered values
func (fs *TaskFormState) Rebuild() {
	fs.Submitting = false
	fs.buildForm()
}

// ToInput converts form values to a create body
func (fs *TaskFormState) ToInput() models.TaskInput {
	return models.TaskInput{Title: fs.Title, Description: fs.Description}.Normalize()
}
