package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCorrelationContext(t *testing.T) {
	ctx := ContextWithCorrelation(context.Background(), "  req-7 ")
	require.Equal(t, "req-7", CorrelationIDFromContext(ctx))

	require.Empty(t, CorrelationIDFromContext(context.Background()))
	require.Empty(t, CorrelationIDFromContext(ContextWithCorrelation(context.Background(), "   ")))
}
