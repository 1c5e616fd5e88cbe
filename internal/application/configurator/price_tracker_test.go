package configurator

import (
	"sync"
	"testing"

	"github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTracker(t *testing.T) {
	t.Run("empty tracker has no quote", func(t *testing.T) {
		var tracker PriceTracker
		_, seq, ok := tracker.Latest()
		assert.False(t, ok)
		assert.Zero(t, seq)
		assert.False(t, tracker.Pending())
	})

	t.Run("stale response is discarded", func(t *testing.T) {
		var tracker PriceTracker
		first := tracker.Next()
		second := tracker.Next()
		assert.True(t, tracker.Pending())

		assert.True(t, tracker.Apply(second, strategy.PricingResult{Price: dec("200")}))
		assert.False(t, tracker.Apply(first, strategy.PricingResult{Price: dec("100")}))

		result, seq, ok := tracker.Latest()
		require.True(t, ok)
		assert.Equal(t, second, seq)
		assert.True(t, result.Price.Equal(dec("200")))
		assert.False(t, tracker.Pending())
	})

	t.Run("in-order responses all apply", func(t *testing.T) {
		var tracker PriceTracker
		for i := 1; i <= 3; i++ {
			seq := tracker.Next()
			assert.True(t, tracker.Apply(seq, strategy.PricingResult{}))
		}
		_, seq, _ := tracker.Latest()
		assert.Equal(t, uint64(3), seq)
	})

	t.Run("same sequence applies once", func(t *testing.T) {
		var tracker PriceTracker
		seq := tracker.Next()
		assert.True(t, tracker.Apply(seq, strategy.PricingResult{}))
		assert.False(t, tracker.Apply(seq, strategy.PricingResult{}))
	})
}

func TestPriceTracker_Concurrent(t *testing.T) {
	var tracker PriceTracker
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq := tracker.Next()
			tracker.Apply(seq, strategy.PricingResult{Price: dec("1")})
		}()
	}
	wg.Wait()

	_, seq, ok := tracker.Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(50), seq)
}
