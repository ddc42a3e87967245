package pool

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelForVisitsEveryIndexOnce(t *testing.T) {
	p := New(4)
	defer p.Close()

	for _, n := range []int{0, 1, 10, MinParallelItems, 1000} {
		hits := make([]int32, n)
		p.ParallelFor(n, func(i int) {
			atomic.AddInt32(&hits[i], 1)
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "n=%d index %d", n, i)
		}
	}
}

func TestParallelForAfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()

	var sum atomic.Int64
	p.ParallelFor(500, func(i int) {
		sum.Add(int64(i))
	})
	assert.Equal(t, int64(500*499/2), sum.Load())
}

func TestCloseDuringParallelFor(t *testing.T) {
	p := New(4)
	const n = 300

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				var count atomic.Int64
				p.ParallelFor(n, func(int) {
					count.Add(1)
				})
				assert.Equal(t, int64(n), count.Load())
			}
		}()
	}
	p.Close()
	wg.Wait()
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.GreaterOrEqual(t, Default().NumWorkers(), 1)
}
