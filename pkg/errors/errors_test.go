package errors

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name    string
		code    ErrorCode
		message string
	}{
		{
			name:    "ValidationFailed",
			code:    ValidationFailed,
			message: "validation failed",
		},
		{
			name:    "InvalidRunState",
			code:    InvalidRunState,
			message: "run already in flight",
		},
		{
			name:    "MutationFailed",
			code:    MutationFailed,
			message: "mutation produced no candidate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message)

			customErr, ok := err.(*Error)
			require.True(t, ok, "should be a custom *Error")

			assert.Equal(t, tt.code, customErr.Code())
			assert.Equal(t, tt.message, customErr.Error())
			assert.Nil(t, customErr.Unwrap())
		})
	}
}

func TestWrapError(t *testing.T) {
	original := stderrors.New("disk full")

	err := Wrap(original, StorageFailed, "failed to persist pattern")
	require.Error(t, err)
	assert.Equal(t, StorageFailed, CodeOf(err))
	assert.Equal(t, "failed to persist pattern: disk full", err.Error())
	assert.Equal(t, original, stderrors.Unwrap(err))

	assert.Nil(t, Wrap(nil, StorageFailed, "ignored"))
}

func TestWithFields(t *testing.T) {
	err := WithFields(
		New(ResourceNotFound, "pattern not found"),
		Fields{"pattern_id": "p-123"},
	)

	var customErr *Error
	require.True(t, stderrors.As(err, &customErr))
	assert.Equal(t, ResourceNotFound, customErr.Code())
	assert.Equal(t, "p-123", customErr.Fields()["pattern_id"])
	assert.Contains(t, err.Error(), "pattern_id=p-123")
}

func TestWithFieldsMerges(t *testing.T) {
	err := WithFields(New(EvolutionFailed, "run aborted"), Fields{"generation": 3})
	err = WithFields(err, Fields{"run_id": "r-1"})

	var customErr *Error
	require.True(t, stderrors.As(err, &customErr))
	fields := customErr.Fields()
	assert.Equal(t, 3, fields["generation"])
	assert.Equal(t, "r-1", fields["run_id"])
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(Canceled, "run canceled externally")
	assert.True(t, stderrors.Is(err, New(Canceled, "anything")))
	assert.False(t, stderrors.Is(err, New(EvolutionFailed, "anything")))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Unknown, CodeOf(stderrors.New("plain")))
}

func TestCheckContext(t *testing.T) {
	assert.NoError(t, CheckContext(context.Background(), "evolve"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CheckContext(ctx, "evolve")
	require.Error(t, err)
	assert.Equal(t, Canceled, CodeOf(err))
}
