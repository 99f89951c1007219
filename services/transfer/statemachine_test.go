package transfer

import (
	"testing"

	"taskilo/models"

	"github.com/stretchr/testify/assert"
)

func TestCanRetry(t *testing.T) {
	assert.True(t, canRetry(models.TransferStatusPendingRetry))
	assert.False(t, canRetry(models.TransferStatusCompleted))
	assert.False(t, canRetry("cancelled"))
}
