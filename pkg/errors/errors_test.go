package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"new", New(ErrCodeNotFound, "person %d not found", 7), "NOT_FOUND: person 7 not found"},
		{"wrap", Wrap(ErrCodeStorageWrite, errors.New("disk full"), "save after %s", "add"), "STORAGE_WRITE: save after add: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeStorageRead, cause, "connect redis")

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if err.Message != "connect redis" {
		t.Errorf("Message = %q, want %q", err.Message, "connect redis")
	}
}

// duplicateOnLoad mirrors how the store reports duplicate persisted ids:
// a coded error behind fmt wrapping, inside a STORAGE_READ.
var duplicateOnLoad = Wrap(ErrCodeStorageRead,
	fmt.Errorf("%w: %d", New(ErrCodeDuplicateID, "duplicate person id"), 3),
	"load people")

func TestIsAndGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		wantIs   bool
		wantCode Code
	}{
		{"matching code", New(ErrCodeInvalidInput, "name cannot be empty"), ErrCodeInvalidInput, true, ErrCodeInvalidInput},
		{"other code", New(ErrCodeInvalidInput, "name cannot be empty"), ErrCodeStorageRead, false, ErrCodeInvalidInput},
		{"outer code of chain", duplicateOnLoad, ErrCodeStorageRead, true, ErrCodeStorageRead},
		{"inner code through fmt wrapping", duplicateOnLoad, ErrCodeDuplicateID, true, ErrCodeStorageRead},
		{"fmt wrapped coded error", fmt.Errorf("render: %w", New(ErrCodeUnsupported, "no rsvg-convert")), ErrCodeUnsupported, true, ErrCodeUnsupported},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false, ""},
		{"nil", nil, ErrCodeInvalidInput, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.wantIs {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.wantIs)
			}
			if got := GetCode(tt.err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"coded", New(ErrCodeNotFound, "person 4 not found"), "person 4 not found"},
		{"coded with cause", Wrap(ErrCodeStorageWrite, errors.New("read-only file system"), "save after delete"), "save after delete"},
		{"plain", errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
