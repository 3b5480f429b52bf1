package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupEmitsSpanToWriter(t *testing.T) {
	var buf bytes.Buffer
	tracer, shutdown, err := Setup(&buf)
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, span := IterationSpan(context.Background(), tracer, "pty")
	span.End()

	require.NoError(t, shutdown(context.Background()))
	assert.Contains(t, buf.String(), "loop.iteration")
}
