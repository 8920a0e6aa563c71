package todo

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/fastygo/todos/domain"
	"github.com/fastygo/todos/repository"
)

// Draft carries the fields of a new todo. Only Title is required.
type Draft struct {
	Title       string
	Description *string
	DueDate     *string
	Completed   *bool
	Priority    *string
}

// Replacement is the complete payload of a full replace.
type Replacement struct {
	Title       string
	Description *string
	DueDate     *string
	Completed   bool
	Priority    string
}

// Patch carries the fields of a partial update. A nil field is left as is.
// DueDateSet distinguishes an explicit null (clear the date) from absence.
type Patch struct {
	Title       *string
	Description *string
	DueDate     *string
	DueDateSet  bool
	Completed   *bool
	Priority    *string
}

// Empty reports whether the patch touches no field.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Description == nil && !p.DueDateSet &&
		p.Completed == nil && p.Priority == nil
}

// ListQuery holds the raw listing filters as received from the caller.
type ListQuery struct {
	Completed string
	Priority  string
	Title     string
	DueFrom   string
	DueTo     string
}

// todoFields mirrors the validated columns of a todo.
type todoFields struct {
	Title       string          `validate:"required,max=200"`
	Description string          `validate:"max=2000"`
	Priority    domain.Priority `validate:"oneof=low medium high"`
}

var fieldMessages = map[string]string{
	"Title.required":  "title is required",
	"Title.max":       "title must be at most 200 characters",
	"Description.max": "description must be at most 2000 characters",
	"Priority.oneof":  "priority must be one of low, medium, high",
}

func validateTodo(v *validator.Validate, todo *domain.Todo) error {
	err := v.Struct(todoFields{
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
	})
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if msg, ok := fieldMessages[fieldErrs[0].Field()+"."+fieldErrs[0].Tag()]; ok {
			return domain.Validation(msg)
		}
	}
	return domain.WrapError(domain.ErrCodeInvalid, "invalid todo", err)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDate normalizes an external date representation to UTC. An empty
// string means no date.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, domain.Validation("invalid date: " + raw)
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	return ParseDate(*raw)
}

// normalizeID returns the canonical form of a todo id, or ErrInvalidID.
func normalizeID(id string) (string, error) {
	if len(id) != 36 {
		return "", domain.ErrInvalidID
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", domain.ErrInvalidID
	}
	return parsed.String(), nil
}

func buildFilter(ownerID string, q ListQuery) (repository.TodoFilter, error) {
	filter := repository.TodoFilter{
		OwnerID: ownerID,
		Title:   q.Title,
	}

	switch q.Completed {
	case "true":
		v := true
		filter.Completed = &v
	case "false":
		v := false
		filter.Completed = &v
	}

	if q.Priority != "" {
		p := domain.Priority(q.Priority)
		if !p.Valid() {
			return filter, domain.Validation("priority must be one of low, medium, high")
		}
		filter.Priority = p
	}

	var err error
	if filter.DueFrom, err = ParseDate(q.DueFrom); err != nil {
		return filter, domain.Validation("invalid dueFrom")
	}
	if filter.DueTo, err = ParseDate(q.DueTo); err != nil {
		return filter, domain.Validation("invalid dueTo")
	}
	return filter, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
