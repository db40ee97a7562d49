package access

import (
	"testing"

	"cortex-ai-be/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstPerUser(t *testing.T) {
	l := NewLimiter(0.001, 2)
	alice, bob := uuid.New(), uuid.New()

	assert.NoError(t, l.Verify(alice))
	assert.NoError(t, l.Verify(alice))
	assert.ErrorIs(t, l.Verify(alice), apperror.ErrRateLimited)

	assert.NoError(t, l.Verify(bob), "limits are tracked per user")
}
