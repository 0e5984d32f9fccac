package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewExitError(ErrUnsupportedCommand, ExitUnsupported),
			want: "unsupported command",
		},
		{
			name: "with wrapped error",
			err:  NewExitError(fmt.Errorf("rewriting flags: %w", ErrTranslation), ExitUser),
			want: "rewriting flags: translation failed",
		},
		{
			name: "nil underlying error",
			err:  NewExitError(nil, ExitUser),
			want: "exit code 1",
		},
		{
			name: "nil underlying error with native code",
			err:  NewExitError(nil, 127),
			want: "exit code 127",
		},
		{
			name: "success code with error",
			err:  NewExitError(errors.New("unexpected"), ExitSuccess),
			want: "unexpected",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewExitError(ErrNativeCLIMissing, ExitSystem),
			wantTarget: ErrNativeCLIMissing,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewExitError(fmt.Errorf("mapping fields: %w", ErrMalformedInput), ExitUser),
			wantTarget: ErrMalformedInput,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewExitError(ErrTranslation, ExitUser),
			wantTarget: ErrUnsupportedCommand,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewExitError(nil, ExitUser),
			wantTarget: ErrTranslation,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("errors.Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantAs   bool
	}{
		{
			name:     "direct ExitError",
			err:      NewExitError(ErrUnsupportedCommand, ExitUnsupported),
			wantCode: ExitUnsupported,
			wantAs:   true,
		},
		{
			name:     "wrapped ExitError",
			err:      fmt.Errorf("command failed: %w", NewExitError(ErrTranslation, ExitUser)),
			wantCode: ExitUser,
			wantAs:   true,
		},
		{
			name:     "ExitSystem code",
			err:      NewExitError(ErrNativeCLIMissing, ExitSystem),
			wantCode: ExitSystem,
			wantAs:   true,
		},
		{
			name:     "non-ExitError",
			err:      ErrUnsupportedCommand,
			wantCode: 0,
			wantAs:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exitErr *ExitError
			gotAs := errors.As(tt.err, &exitErr)
			if gotAs != tt.wantAs {
				t.Errorf("errors.As() = %v, want %v", gotAs, tt.wantAs)
			}
			if gotAs && exitErr.Code != tt.wantCode {
				t.Errorf("ExitError.Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}

func TestExitError_Silent(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want bool
	}{
		{
			name: "native CLI exit code only",
			err:  NewExitError(nil, 3),
			want: true,
		},
		{
			name: "with underlying error",
			err:  NewExitError(ErrTranslation, ExitUser),
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Silent(); got != tt.want {
				t.Errorf("ExitError.Silent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewExitError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		wantErr  error
		wantCode int
	}{
		{
			name:     "with sentinel error",
			err:      ErrUnsupportedCommand,
			code:     ExitUnsupported,
			wantErr:  ErrUnsupportedCommand,
			wantCode: ExitUnsupported,
		},
		{
			name:     "with nil error",
			err:      nil,
			code:     ExitSuccess,
			wantErr:  nil,
			wantCode: ExitSuccess,
		},
		{
			name:     "with custom error",
			err:      errors.New("custom error"),
			code:     ExitSystem,
			wantErr:  errors.New("custom error"),
			wantCode: ExitSystem,
		},
		{
			name:     "with native CLI code",
			err:      nil,
			code:     42,
			wantErr:  nil,
			wantCode: 42,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewExitError(tt.err, tt.code)
			if got.Code != tt.wantCode {
				t.Errorf("NewExitError().Code = %d, want %d", got.Code, tt.wantCode)
			}
			if tt.wantErr == nil {
				if got.Err != nil {
					t.Errorf("NewExitError().Err = %v, want nil", got.Err)
				}
			} else {
				if got.Err == nil {
					t.Errorf("NewExitError().Err = nil, want %v", tt.wantErr)
				} else if got.Err.Error() != tt.wantErr.Error() {
					t.Errorf("NewExitError().Err = %q, want %q", got.Err.Error(), tt.wantErr.Error())
				}
			}
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{
			name:    "ErrUnsupportedCommand",
			err:     ErrUnsupportedCommand,
			wantMsg: "unsupported command",
		},
		{
			name:    "ErrTranslation",
			err:     ErrTranslation,
			wantMsg: "translation failed",
		},
		{
			name:    "ErrMalformedInput",
			err:     ErrMalformedInput,
			wantMsg: "malformed JSON input",
		},
		{
			name:    "ErrNativeCLIMissing",
			err:     ErrNativeCLIMissing,
			wantMsg: "native CLI not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	tests := []struct {
		name string
		code int
		want int
	}{
		{"ExitSuccess", ExitSuccess, 0},
		{"ExitUser", ExitUser, 1},
		{"ExitSystem", ExitSystem, 2},
		{"ExitUnsupported", ExitUnsupported, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.code != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.code, tt.want)
			}
		})
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "nil error",
			err:  nil,
			want: ExitSuccess,
		},
		{
			name: "explicit ExitError wins",
			err:  NewExitError(errors.New("boom"), 7),
			want: 7,
		},
		{
			name: "wrapped ExitError",
			err:  fmt.Errorf("running: %w", NewExitError(nil, 3)),
			want: 3,
		},
		{
			name: "ExitError outranks sentinel in same chain",
			err:  NewExitError(ErrUnsupportedCommand, ExitUser),
			want: ExitUser,
		},
		{
			name: "unsupported command sentinel",
			err:  ErrUnsupportedCommand,
			want: ExitUnsupported,
		},
		{
			name: "wrapped unsupported command sentinel",
			err:  fmt.Errorf("gh api repos: %w", ErrUnsupportedCommand),
			want: ExitUnsupported,
		},
		{
			name: "native CLI missing sentinel",
			err:  fmt.Errorf("looking up glab: %w", ErrNativeCLIMissing),
			want: ExitSystem,
		},
		{
			name: "translation sentinel",
			err:  fmt.Errorf("flag --state: %w", ErrTranslation),
			want: ExitUser,
		},
		{
			name: "malformed input sentinel",
			err:  ErrMalformedInput,
			want: ExitUser,
		},
		{
			name: "unclassified error",
			err:  errors.New("something else"),
			want: ExitUser,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Code(tt.err); got != tt.want {
				t.Errorf("Code() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestErrorWrappingChain(t *testing.T) {
	// Test a realistic error wrapping scenario
	baseErr := ErrTranslation
	wrappedOnce := fmt.Errorf("flag --milestone requires a value: %w", baseErr)
	wrappedTwice := fmt.Errorf("translating 'issue list': %w", wrappedOnce)
	exitErr := NewExitError(wrappedTwice, ExitUser)

	// errors.Is should find the sentinel through the chain
	if !errors.Is(exitErr, ErrTranslation) {
		t.Error("errors.Is() should find ErrTranslation through wrapping chain")
	}

	// errors.As should find ExitError
	var target *ExitError
	if !errors.As(exitErr, &target) {
		t.Error("errors.As() should find ExitError")
	}
	if target.Code != ExitUser {
		t.Errorf("ExitError.Code = %d, want %d", target.Code, ExitUser)
	}

	// Error message should contain the full chain
	want := "translating 'issue list': flag --milestone requires a value: translation failed"
	if got := exitErr.Error(); got != want {
		t.Errorf("ExitError.Error() = %q, want %q", got, want)
	}
}

func TestNewConstructors(t *testing.T) {
	t.Run("NewUserError", func(t *testing.T) {
		err := errors.New("user error")
		e := NewUserError(err, "check input")
		if e.Code != ExitUser {
			t.Errorf("Code = %d, want %d", e.Code, ExitUser)
		}
		if e.Suggestion != "check input" {
			t.Errorf("Suggestion = %q, want 'check input'", e.Suggestion)
		}
	})

	t.Run("NewSystemError", func(t *testing.T) {
		err := errors.New("system error")
		e := NewSystemError(err, "Install glab: https://gitlab.com/gitlab-org/cli#installation")
		if e.Code != ExitSystem {
			t.Errorf("Code = %d, want %d", e.Code, ExitSystem)
		}
		if e.Suggestion != "Install glab: https://gitlab.com/gitlab-org/cli#installation" {
			t.Errorf("Suggestion = %q, want install guidance", e.Suggestion)
		}
	})
}
