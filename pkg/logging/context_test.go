package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContextDefault(t *testing.T) {
	assert.Equal(t, Default(), FromContext(context.Background()))
	assert.Equal(t, Default(), FromContext(nil)) //nolint:staticcheck // nil context is part of the contract
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	ctx := WithLogger(context.Background(), &logger)
	got := FromContext(ctx)
	require.NotNil(t, got)

	got.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestWithSearchID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	ctx := WithLogger(context.Background(), &logger)
	ctx = WithSearchID(ctx, "run-42")

	assert.Equal(t, "run-42", SearchID(ctx))

	FromContext(ctx).Info().Msg("searching")
	assert.Contains(t, buf.String(), "run-42")
}

func TestWithSourceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf)

	ctx := WithLogger(context.Background(), &logger)
	ctx = WithSource(ctx, "pubmed")

	FromContext(ctx).Info().Msg("dispatch")
	assert.Contains(t, buf.String(), "pubmed")
}
