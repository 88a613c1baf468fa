package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidPiece, "piece %d: size must be positive, got %dx%d", 3, 0, 1),
			"INVALID_PIECE: piece 3: size must be positive, got 0x1"},
		{Wrap(ErrCodeInvalidFormat, errors.New("unexpected EOF"), "read header"),
			"INVALID_FORMAT: read header: unexpected EOF"},
		{&LimitExceededError{What: "nodes", Limit: 10, Seen: 11},
			"EXPLORATION_LIMIT: nodes ceiling 10 exceeded (seen 11)"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("unexpected EOF")
	err := Wrap(ErrCodeTruncated, cause, "edge table")

	if err.Cause != cause || errors.Unwrap(err) != cause {
		t.Fatalf("cause lost: %#v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause")
	}
}

func TestCodeMatching(t *testing.T) {
	collision := New(ErrCodeCollision, "pieces 1 and 2 overlap at (0,0)")
	nested := fmt.Errorf("explore: %w", Wrap(ErrCodeTruncated, New(ErrCodeInvalidInput, "inner"), "outer"))
	limit := fmt.Errorf("enumerate: %w", &LimitExceededError{What: "edges", Limit: 5, Seen: 6})

	tests := []struct {
		name     string
		err      error
		code     Code
		is       bool
		gotCode  Code
		userText string
	}{
		{"direct", collision, ErrCodeCollision, true, ErrCodeCollision, "pieces 1 and 2 overlap at (0,0)"},
		{"other code", collision, ErrCodeInvalidBoard, false, ErrCodeCollision, "pieces 1 and 2 overlap at (0,0)"},
		{"outermost code wins", nested, ErrCodeTruncated, true, ErrCodeTruncated, "outer"},
		{"limit error", limit, ErrCodeLimitExceeded, true, ErrCodeLimitExceeded, "edges ceiling 5 exceeded"},
		{"plain", errors.New("disk full"), ErrCodeInternal, false, "", "disk full"},
		{"nil", nil, ErrCodeInternal, false, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.is {
				t.Errorf("Is(%s) = %v, want %v", tt.code, got, tt.is)
			}
			if got := GetCode(tt.err); got != tt.gotCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.gotCode)
			}
			if tt.err == nil {
				return
			}
			if got := UserMessage(tt.err); got != tt.userText {
				t.Errorf("UserMessage() = %q, want %q", got, tt.userText)
			}
		})
	}
}

func TestIsFormatError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"bad magic", New(ErrCodeInvalidFormat, "magic"), true},
		{"version", New(ErrCodeUnsupportedVersion, "v9"), true},
		{"truncated", fmt.Errorf("decode: %w", New(ErrCodeTruncated, "short")), true},
		{"overflow is an encode error", New(ErrCodeOverflow, "too wide"), false},
		{"plain", errors.New("plain"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFormatError(tt.err); got != tt.want {
				t.Errorf("IsFormatError() = %v, want %v", got, tt.want)
			}
		})
	}
}
