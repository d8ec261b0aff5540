package instrument

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetCorrelationID(ctx))

	ctx = SetCorrelationID(ctx, "0192f1d6-7f3b-7c2e-9a51-5d2f4b9a0c11")
	assert.Equal(t, "0192f1d6-7f3b-7c2e-9a51-5d2f4b9a0c11", GetCorrelationID(ctx))
}
