package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Error(t *testing.T) {
	err := &Error{
		Code:    CodeNotFound,
		Status:  404,
		Message: "board not found",
	}

	expected := "NOT_FOUND: board not found"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("channel_id is required")

	if err.Code != CodeInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, CodeInvalidRequest)
	}
	if err.Status != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "channel_id is required" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestNewNotFound_Unwraps(t *testing.T) {
	cause := errors.New("board not found")
	err := NewNotFound("There isn't a board through which you can speak.", cause)

	if err.Status != http.StatusNotFound {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestNewAlreadyExists(t *testing.T) {
	err := NewAlreadyExists("busy", "general", nil)

	if err.Status != http.StatusConflict {
		t.Errorf("Status = %d, want 409", err.Status)
	}
	if err.Details["channel_id"] != "general" {
		t.Errorf("Details[channel_id] = %v, want %q", err.Details["channel_id"], "general")
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(errors.New("disk on fire"))
	if err.Message != "disk on fire" {
		t.Errorf("Message = %q", err.Message)
	}

	err = NewInternal(nil)
	if err.Message != "internal error" {
		t.Errorf("Message = %q, want %q", err.Message, "internal error")
	}
}

func TestIs(t *testing.T) {
	err := NewNotFound("gone", nil)
	wrapped := fmt.Errorf("lookup: %w", err)

	if !Is(err, CodeNotFound) {
		t.Error("Is(err, CodeNotFound) = false")
	}
	if !Is(wrapped, CodeNotFound) {
		t.Error("Is(wrapped, CodeNotFound) = false")
	}
	if Is(err, CodeInternal) {
		t.Error("Is(err, CodeInternal) = true")
	}
	if Is(errors.New("plain"), CodeNotFound) {
		t.Error("Is(plain, CodeNotFound) = true")
	}
}

func TestStatusCodeMessageOf(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   Code
		msg    string
	}{
		{"invalid", NewInvalidRequest("bad"), 400, CodeInvalidRequest, "bad"},
		{"conflict", NewAlreadyExists("busy", "c", nil), 409, CodeAlreadyExists, "busy"},
		{"foreign", errors.New("boom"), 500, CodeInternal, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.status {
				t.Errorf("StatusOf = %d, want %d", got, tt.status)
			}
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf = %q, want %q", got, tt.code)
			}
			if got := MessageOf(tt.err); got != tt.msg {
				t.Errorf("MessageOf = %q, want %q", got, tt.msg)
			}
		})
	}
}
