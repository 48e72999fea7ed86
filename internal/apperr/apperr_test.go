package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsChains(t *testing.T) {
	base := Conflict("already enrolled")
	wrapped := fmt.Errorf("enrolling learner 7: %w", base)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	require.Equal(t, KindConflict, kind)
	require.True(t, IsKind(wrapped, KindConflict))
	require.False(t, IsKind(wrapped, KindNotFound))
}

func TestKindOfForeignError(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestUnavailableWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("store unavailable", cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "store unavailable", MessageOf(err))
	require.Contains(t, err.Error(), "unavailable")
}

func TestKindNames(t *testing.T) {
	names := map[Kind]string{
		KindNotFound:      "not_found",
		KindForbidden:     "forbidden",
		KindValidation:    "validation_error",
		KindUnprocessable: "unprocessable",
		KindConflict:      "conflict",
		KindTimeout:       "timeout",
		KindUnavailable:   "unavailable",
	}
	for kind, name := range names {
		require.Equal(t, name, kind.String())
	}
}
