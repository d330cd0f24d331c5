package eventlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIncreasingSequenceNumbers(t *testing.T) {
	l := New(Config{Capacity: 10})
	r1 := l.Append("job_queued", map[string]interface{}{"entity": 1})
	r2 := l.Append("job_started", map[string]interface{}{"entity": 1})
	assert.Equal(t, uint64(1), r1.Sequence)
	assert.Equal(t, uint64(2), r2.Sequence)
}

func TestRecordsReturnsOldestFirst(t *testing.T) {
	l := New(Config{Capacity: 10})
	l.Append("a", nil)
	l.Append("b", nil)
	l.Append("c", nil)

	records := l.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].EventName)
	assert.Equal(t, "b", records[1].EventName)
	assert.Equal(t, "c", records[2].EventName)
}

func TestRingBufferEvictsOldestPastCapacity(t *testing.T) {
	l := New(Config{Capacity: 3})
	l.Append("1", nil)
	l.Append("2", nil)
	l.Append("3", nil)
	l.Append("4", nil)

	records := l.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "2", records[0].EventName)
	assert.Equal(t, "3", records[1].EventName)
	assert.Equal(t, "4", records[2].EventName)
	assert.Equal(t, 3, l.Len())
}

func TestNewFallsBackToDefaultCapacityWhenNonPositive(t *testing.T) {
	l := New(Config{Capacity: 0})
	for i := 0; i < DefaultConfig().Capacity+5; i++ {
		l.Append("x", nil)
	}
	assert.Equal(t, DefaultConfig().Capacity, l.Len())
}

func TestLenTracksRetainedCountBelowCapacity(t *testing.T) {
	l := New(Config{Capacity: 100})
	assert.Equal(t, 0, l.Len())
	l.Append("a", nil)
	assert.Equal(t, 1, l.Len())
}
