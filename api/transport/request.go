package transport

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/fastygo/todos/domain"
)

const (
	msgMalformed     = "malformed request"
	msgTitleRequired = "title is required and must be a string"
	msgReplaceFields = "required fields: title (string), completed (boolean), priority (low|medium|high)"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority"`
}

type ReplaceTodoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	DueDate     *string `json:"dueDate"`
	Completed   *bool   `json:"completed"`
	Priority    *string `json:"priority"`
}

// PatchTodoRequest holds the recognized fields of a partial update. DueDateSet is
// true when dueDate was present, including an explicit null.
type PatchTodoRequest struct {
	Title       *string
	Description *string
	DueDate     *string
	DueDateSet  bool
	Completed   *bool
	Priority    *string
}

func DecodeRegister(body []byte) (RegisterRequest, error) {
	var req RegisterRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, domain.WrapError(domain.ErrCodeInvalid, msgMalformed, err)
	}
	return req, nil
}

func DecodeLogin(body []byte) (LoginRequest, error) {
	var req LoginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, domain.WrapError(domain.ErrCodeInvalid, msgMalformed, err)
	}
	return req, nil
}

func DecodeCreateTodo(body []byte) (CreateTodoRequest, error) {
	var req CreateTodoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "title" {
			return req, domain.WrapError(domain.ErrCodeInvalid, msgTitleRequired, err)
		}
		return req, domain.WrapError(domain.ErrCodeInvalid, msgMalformed, err)
	}
	if req.Title == nil {
		return req, domain.Validation(msgTitleRequired)
	}
	return req, nil
}

func DecodeReplaceTodo(body []byte) (ReplaceTodoRequest, error) {
	var req ReplaceTodoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return req, domain.WrapError(domain.ErrCodeInvalid, msgReplaceFields, err)
		}
		return req, domain.WrapError(domain.ErrCodeInvalid, msgMalformed, err)
	}
	if req.Title == nil || req.Completed == nil || req.Priority == nil {
		return req, domain.Validation(msgReplaceFields)
	}
	return req, nil
}

// DecodePatchTodo reads only the recognized keys of a JSON object. Unknown keys are ignored.
func DecodePatchTodo(body []byte) (PatchTodoRequest, error) {
	var req PatchTodoRequest
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return req, domain.ErrInvalidPayload
	}

	var err error
	if req.Title, err = stringField(raw, "title"); err != nil {
		return req, err
	}
	if req.Description, err = stringField(raw, "description"); err != nil {
		return req, err
	}
	if req.Priority, err = stringField(raw, "priority"); err != nil {
		return req, err
	}
	if value, ok := raw["completed"]; ok {
		var completed bool
		if isNull(value) || json.Unmarshal(value, &completed) != nil {
			return req, domain.Validation("completed must be a boolean")
		}
		req.Completed = &completed
	}
	if value, ok := raw["dueDate"]; ok {
		req.DueDateSet = true
		if !isNull(value) {
			var due string
			if json.Unmarshal(value, &due) != nil {
				return req, domain.Validation("dueDate must be a string or null")
			}
			req.DueDate = &due
		}
	}
	return req, nil
}

func stringField(raw map[string]json.RawMessage, key string) (*string, error) {
	value, ok := raw[key]
	if !ok {
		return nil, nil
	}
	var s string
	if isNull(value) || json.Unmarshal(value, &s) != nil {
		return nil, domain.Validation(key + " must be a string")
	}
	return &s, nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}
