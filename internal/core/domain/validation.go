package domain

import (
	"fmt"
	"strings"
)

// FieldIssue describes a single invalid field in a request.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field issues. It is terminal for the request
// and guarantees no write was attempted.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		msgs = append(msgs, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Add appends an issue and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Message: message})
	return e
}

// Empty reports whether no issues were recorded.
func (e *ValidationError) Empty() bool {
	return len(e.Issues) == 0
}
