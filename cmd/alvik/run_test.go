package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gwillem/alvik/pkg/behavior"
	"github.com/gwillem/alvik/pkg/level"
)

func TestReport(t *testing.T) {
	lvl, err := level.Lookup("3")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report(&buf, lvl, behavior.Success, nil))
	assert.Contains(t, buf.String(), "Wrong Exit: ")
	assert.Contains(t, buf.String(), "success")

	// Ctrl-C is a normal way to end a run
	buf.Reset()
	cancelled := fmt.Errorf("level %s: %w", lvl.Key, context.Canceled)
	require.NoError(t, report(&buf, lvl, behavior.Aborted, cancelled))
	assert.Contains(t, buf.String(), "aborted")

	// hardware errors are returned so deferred cleanup still runs
	buf.Reset()
	busErr := errors.New("set left velocity: timeout")
	err = report(&buf, lvl, behavior.Aborted, busErr)
	assert.ErrorIs(t, err, busErr)
	assert.Contains(t, err.Error(), "Wrong Exit")
	assert.Empty(t, buf.String())
}
