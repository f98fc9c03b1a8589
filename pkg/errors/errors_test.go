// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code matching

package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "watchlist_not_found",
			code:    errors.ErrWatchlistNotFound,
			message: "watchlist 'work' not found",
			wantStr: "[WATCHLIST_NOT_FOUND] watchlist 'work' not found",
		},
		{
			name:    "invalid_path",
			code:    errors.ErrInvalidPath,
			message: "cannot classify path",
			wantStr: "[INVALID_PATH] cannot classify path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrUnwatchablePath, "cannot watch %q: no such file", "/tmp/x")
	assert.Equal(t, `cannot watch "/tmp/x": no such file`, err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrFileWrite, "write failed")

		assert.Equal(t, errors.ErrFileWrite, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[FILE_WRITE] write failed: base error", err.Error())
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetails(t *testing.T) {
	err := errors.New(errors.ErrPathMissing, "path vanished").
		WithDetail("path", "/home/u/a.txt").
		WithDetails(map[string]interface{}{"watchlist": "default"})

	assert.Equal(t, "/home/u/a.txt", err.Details["path"])
	assert.Equal(t, "default", err.Details["watchlist"])
	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
}

func TestIs(t *testing.T) {
	sentinel := errors.New(errors.ErrWatchlistExists, "")
	err := errors.Newf(errors.ErrWatchlistExists, "watchlist %q already exists", "default")

	assert.True(t, stderrors.Is(err, sentinel))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrWatchlistNotFound, "")))
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrWatchlistNotFound, "not found"),
			code:     errors.ErrWatchlistNotFound,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrWatchlistNotFound, "not found"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      errors.Wrap(stderrors.New("base"), errors.ErrFileAccess, "denied"),
			code:     errors.ErrFileAccess,
			expected: true,
		},
		{
			name:     "standard_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrWatchlistNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrWatchlistNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrInvalidName, errors.GetErrorCode(errors.New(errors.ErrInvalidName, "bad")))
	assert.Empty(t, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Empty(t, errors.GetErrorCode(nil))
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read watchlist")
	topErr := errors.Wrap(fileErr, errors.ErrConfigLoad, "failed to load config")

	assert.True(t, errors.IsErrorCode(topErr, errors.ErrConfigLoad))
	assert.True(t, stderrors.Is(topErr, rootCause))

	var middle *errors.ArchwatchError
	require.True(t, stderrors.As(topErr.Unwrap(), &middle))
	assert.Equal(t, errors.ErrFileAccess, middle.Code)
}
