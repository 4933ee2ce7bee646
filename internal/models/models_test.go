package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingStatusIsTerminal(t *testing.T) {
	assert.False(t, ShippingStatusInProgress.IsTerminal())
	assert.True(t, ShippingStatusCompleted.IsTerminal())
	assert.True(t, ShippingStatusFailed.IsTerminal())
}
