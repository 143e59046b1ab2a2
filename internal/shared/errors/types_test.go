package errors

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransientClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "explicit transient", err: NewTransientError(stderrors.New("x"), ""), want: true},
		{name: "explicit permanent", err: NewPermanentError(stderrors.New("connection refused"), ""), want: false},
		{name: "op error", err: &net.OpError{Op: "dial", Err: stderrors.New("refused")}, want: true},
		{name: "syscall reset", err: syscall.ECONNRESET, want: true},
		{name: "message pattern", err: stderrors.New("read tcp: connection reset by peer"), want: true},
		{name: "cancelled", err: context.Canceled, want: false},
		{name: "plain", err: stderrors.New("duplicate key"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestErrorMessagesAndUnwrap(t *testing.T) {
	base := stderrors.New("boom")
	transient := NewTransientError(base, "")
	assert.Equal(t, "transient error: boom", transient.Error())
	assert.ErrorIs(t, transient, base)

	permanent := NewPermanentError(base, "do not retry")
	assert.Equal(t, "do not retry", permanent.Error())
	assert.ErrorIs(t, permanent, base)
	assert.True(t, IsPermanent(permanent))
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{InitialInterval: time.Millisecond, MaxAttempts: 5}, func(context.Context) error {
		calls++
		return stderrors.New("constraint violation")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryRetriesTransientUntilSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond, MaxAttempts: 5}, func(context.Context) error {
		calls++
		if calls < 3 {
			return NewTransientError(stderrors.New("busy"), "")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryGivesUpAfterMaxAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{InitialInterval: time.Millisecond, MaxInterval: time.Millisecond, MaxAttempts: 3}, func(context.Context) error {
		calls++
		return NewTransientError(stderrors.New("busy"), "")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}
