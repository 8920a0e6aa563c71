package transport

import (
	"testing"

	"github.com/fastygo/todos/domain"
)

func TestDecodePatchTodo(t *testing.T) {
	t.Run("recognized fields", func(t *testing.T) {
		req, err := DecodePatchTodo([]byte(`{"title":"x","completed":true,"dueDate":null,"other":1}`))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Title == nil || *req.Title != "x" || req.Completed == nil || !*req.Completed {
			t.Fatalf("unexpected request %+v", req)
		}
		if !req.DueDateSet || req.DueDate != nil {
			t.Fatal("explicit null dueDate must be marked as set and empty")
		}
		if req.Description != nil || req.Priority != nil {
			t.Fatal("absent fields must stay nil")
		}
	})

	t.Run("due date string", func(t *testing.T) {
		req, err := DecodePatchTodo([]byte(`{"dueDate":"2024-05-01"}`))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !req.DueDateSet || req.DueDate == nil || *req.DueDate != "2024-05-01" {
			t.Fatalf("unexpected request %+v", req)
		}
	})

	invalid := map[string]string{
		"not an object":   `[1,2]`,
		"null body":       `null`,
		"garbage":         `{`,
		"title null":      `{"title":null}`,
		"title number":    `{"title":3}`,
		"completed text":  `{"completed":"true"}`,
		"priority number": `{"priority":2}`,
		"due date number": `{"dueDate":20240501}`,
	}
	for name, body := range invalid {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodePatchTodo([]byte(body)); domain.CodeOf(err) != domain.ErrCodeInvalid {
				t.Fatalf("expected INVALID, got %v", err)
			}
		})
	}
}

func TestDecodeReplaceTodo(t *testing.T) {
	if _, err := DecodeReplaceTodo([]byte(`{"title":"x","completed":false,"priority":"low"}`)); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, body := range []string{
		`{"completed":false,"priority":"low"}`,
		`{"title":"x","priority":"low"}`,
		`{"title":"x","completed":"no","priority":"low"}`,
	} {
		_, err := DecodeReplaceTodo([]byte(body))
		if domain.MessageOf(err, "") != msgReplaceFields {
			t.Fatalf("%s: expected required fields error, got %v", body, err)
		}
	}
}
