package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	t.Run("follows the fixed cycle", func(t *testing.T) {
		assert.Equal(t, TicketStatusInProgress, NextStatus(TicketStatusNew))
		assert.Equal(t, TicketStatusResolved, NextStatus(TicketStatusInProgress))
		assert.Equal(t, TicketStatusClosed, NextStatus(TicketStatusResolved))
		assert.Equal(t, TicketStatusNew, NextStatus(TicketStatusClosed))
	})

	t.Run("four steps return to the start", func(t *testing.T) {
		status := TicketStatusNew
		for i := 0; i < 4; i++ {
			status = NextStatus(status)
		}
		assert.Equal(t, TicketStatusNew, status)
	})

	t.Run("unknown status resets to new", func(t *testing.T) {
		assert.Equal(t, TicketStatusNew, NextStatus(TicketStatus("ARCHIVED")))
	})
}

func TestKnownCategory(t *testing.T) {
	for _, category := range Categories {
		assert.True(t, KnownCategory(category), category)
	}
	assert.False(t, KnownCategory("mystery-label"))
	assert.False(t, KnownCategory(FallbackCategory))
}
