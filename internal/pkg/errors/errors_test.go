package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrConflict, "User already exists")
	require.Equal(t, "User already exists", err.Error())
	require.True(t, IsConflict(err))
	require.False(t, IsNotFound(err))
	require.Equal(t, "User already exists", Message(fmt.Errorf("register: %w", err)))
	require.Equal(t, "", Message(errors.New("plain")))
}

func TestSourceError(t *testing.T) {
	base := errors.New("connection refused")
	err := Mail(base)
	require.ErrorIs(t, err, base)
	src, ok := SourceOf(fmt.Errorf("send: %w", err))
	require.True(t, ok)
	require.Equal(t, SourceMail, src)
	require.Equal(t, "mail: connection refused", err.Error())

	_, ok = SourceOf(base)
	require.False(t, ok)
	require.NoError(t, Store(nil))
}
