package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrWithCode_ErrorsAs tests that the exit code survives the trip
// through cobra's error return: errors.As must recover the coded error so
// usage failures exit 1 instead of the generic 2.
func TestErrWithCode_ErrorsAs(t *testing.T) {
	err := errWithCode(fmt.Errorf("accepts 1 arg(s), received 0"), exitUsage)

	var cErr *codedError
	require.True(t, errors.As(err, &cErr), "errors.As failed to match the coded error")
	require.Equal(t, exitUsage, cErr.code)
	require.Equal(t, "accepts 1 arg(s), received 0", cErr.Error())
}

func TestErrWithCode_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("analyze: %w", errWithCode(fmt.Errorf("boom"), exitError))

	var cErr *codedError
	require.True(t, errors.As(err, &cErr))
	require.Equal(t, exitError, cErr.code)
}

func TestCodedError_NilMessage(t *testing.T) {
	require.Empty(t, errWithCode(nil, exitError).Error())
}
