package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEngineStatusError(t *testing.T) {
	cause := errors.New("status 12: variable not found")
	err := error(&EngineStatusError{Call: "VarLabel", Status: 12, Err: cause})

	require.ErrorIs(t, err, ErrEngineStatus)
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "VarLabel")

	var statusErr *EngineStatusError
	require.ErrorAs(t, fmt.Errorf("reading labels: %w", err), &statusErr)
	require.Equal(t, 12, statusErr.Status)

	bare := &EngineStatusError{Call: "Open", Status: 1}
	require.Equal(t, "engine Open failed: status 1", bare.Error())
}

func TestValueConversionError(t *testing.T) {
	err := error(&ValueConversionError{Row: 3, Column: "dob", Value: "soon", Err: errors.New("unparseable")})

	require.ErrorIs(t, err, ErrValueConversion)
	require.NotErrorIs(t, err, ErrEngineStatus)
	require.Contains(t, err.Error(), `"dob"`)
	require.Contains(t, err.Error(), "row 3")
}
