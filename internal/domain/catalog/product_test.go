package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanFulfil(t *testing.T) {
	p := &Product{ID: 7, InventoryCount: 3, Available: true}

	assert.True(t, p.CanFulfil(3))
	assert.False(t, p.CanFulfil(4))
	assert.False(t, p.CanFulfil(0))

	p.Available = false
	assert.False(t, p.CanFulfil(1))
}

func TestApplyCountTogglesAvailability(t *testing.T) {
	p := &Product{ID: 7, InventoryCount: 3, Available: true}

	p.ApplyCount(p.RemainingAfter(3))
	assert.Equal(t, 0, p.InventoryCount)
	assert.False(t, p.Available)

	p.ApplyCount(5)
	assert.True(t, p.Available)
}
