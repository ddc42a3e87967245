package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sparsela"
)

func TestNewEntry(t *testing.T) {
	r := sparsela.Report{
		Method:     sparsela.MethodCGNR,
		Rows:       4,
		Cols:       3,
		Lanes:      5,
		LaneWidth:  2,
		Iterations: 7,
		Residual:   1e-9,
		Elapsed:    time.Millisecond,
		Converged:  true,
		Param:      1,
	}
	e := NewEntry("poisson", r)

	assert.NotEqual(t, [16]byte{}, [16]byte(e.ID))
	assert.Equal(t, "poisson", e.System)
	assert.Equal(t, "CGNR", e.Method)
	assert.Equal(t, 4, e.Rows)
	assert.Equal(t, 3, e.Cols)
	assert.Equal(t, 7, e.Iterations)
	assert.True(t, e.Converged)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestSortKeyOrdersChronologically(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Entry{CreatedAt: base.Add(900 * time.Millisecond)}
	b := Entry{CreatedAt: base.Add(time.Second)}
	c := Entry{CreatedAt: base.Add(10 * time.Second)}

	assert.Less(t, a.SortKey(), b.SortKey())
	assert.Less(t, b.SortKey(), c.SortKey())
}

func TestMemoryJournal(t *testing.T) {
	ctx := context.Background()
	j := NewMemoryJournal()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, d := range []time.Duration{2, 0, 1} {
		require.NoError(t, j.Append(ctx, Entry{
			System:     "a",
			Iterations: int(d),
			CreatedAt:  base.Add(d * time.Second),
		}))
	}
	require.NoError(t, j.Append(ctx, Entry{System: "b", CreatedAt: base}))

	all, err := j.List(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 2, all[0].Iterations)
	assert.Equal(t, 1, all[1].Iterations)
	assert.Equal(t, 0, all[2].Iterations)

	latest, err := j.List(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, 2, latest[0].Iterations)

	none, err := j.List(ctx, "missing", 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	err = j.Append(ctx, Entry{System: "a", CreatedAt: base})
	assert.ErrorIs(t, err, ErrDuplicate)
}
