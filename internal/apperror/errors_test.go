package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSafeMessage_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("create meeting: %w", NewConflict("Meeting ID taken. Please choose another."))
	if got := SafeMessage(err); got != "Meeting ID taken. Please choose another." {
		t.Errorf("unexpected message %q", got)
	}
	if got := SafeCode(err); got != http.StatusConflict {
		t.Errorf("expected 409, got %d", got)
	}
}

func TestSafeMessage_PlainError(t *testing.T) {
	err := errors.New("Error 1146: Table 'meetings' doesn't exist")
	if got := SafeMessage(err); got != "an unexpected error occurred" {
		t.Errorf("expected generic message, got %q", got)
	}
	if got := SafeCode(err); got != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", got)
	}
}

func TestNewInternal_HidesCause(t *testing.T) {
	cause := errors.New("redis: connection refused")
	err := NewInternal(cause)
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through Unwrap")
	}
	if err.Message == cause.Error() {
		t.Error("expected client message to hide the cause")
	}
}
