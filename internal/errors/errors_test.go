package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  NotFound("Person not found"),
			want: "Person not found",
		},
		{
			name: "error with cause",
			err:  Wrap(errors.New("dial tcp: refused"), ErrCodeInternal, "load person"),
			want: "load person: dial tcp: refused",
		},
		{
			name: "percent without args is literal",
			err:  Validation("progress must be 0-100%"),
			want: "progress must be 0-100%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrapf(cause, ErrCodeInternal, "job %s", "abc")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrapf(...), cause) = false, want true")
	}
	if err.Message != "job abc" {
		t.Errorf("Wrapf().Message = %q, want %q", err.Message, "job abc")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "x"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "x %d", 1); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestCodeCheckers(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "not found", err: NotFoundf("Person %d not found", 7), check: IsNotFound},
		{name: "conflict", err: Conflict("dup"), check: IsConflict},
		{name: "validation", err: ValidationField("status", "status is required"), check: IsValidation},
		{name: "precondition", err: Precondition("Person has no associated company"), check: IsPrecondition},
		{name: "wrapped in fmt", err: fmt.Errorf("outer: %w", NotFound("inner")), check: IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.err) {
				t.Errorf("checker returned false for %v (code %q)", tt.err, GetCode(tt.err))
			}
		})
	}

	if IsNotFound(errors.New("plain")) {
		t.Errorf("IsNotFound(plain error) = true, want false")
	}
}

func TestGetFieldAndMessage(t *testing.T) {
	err := fmt.Errorf("wrap: %w", ValidationField("personIds", "personIds must be a non-empty array"))
	if got := GetField(err); got != "personIds" {
		t.Errorf("GetField() = %q, want personIds", got)
	}
	if got := Message(err, "fallback"); got != "personIds must be a non-empty array" {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("boom"), "fallback"); got != "fallback" {
		t.Errorf("Message(plain) = %q, want fallback", got)
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("GetCode(plain) should be empty")
	}
}
