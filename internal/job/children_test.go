package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcessChildrenVacuouslyCompleteWhenEmpty(t *testing.T) {
	out, complete := ProcessChildren(nil, false, func(c *Job) *Job { return c })
	assert.Nil(t, out)
	assert.True(t, complete)
}

func TestProcessChildrenAllCompleteWhenEveryChildComplete(t *testing.T) {
	children := []*Job{
		{ID: 1, State: StateInProgress},
		{ID: 2, State: StateInProgress},
	}
	out, complete := ProcessChildren(children, false, func(c *Job) *Job {
		c.State = StateComplete
		return c
	})
	assert.True(t, complete)
	for _, c := range out {
		assert.Equal(t, StateComplete, c.State)
	}
}

func TestProcessChildrenNotCompleteWhenOneLags(t *testing.T) {
	children := []*Job{
		{ID: 1, State: StateInProgress},
		{ID: 2, State: StateInProgress},
	}
	out, complete := ProcessChildren(children, false, func(c *Job) *Job {
		if c.ID == 1 {
			c.State = StateComplete
		}
		return c
	})
	assert.False(t, complete)
	assert.Equal(t, StateComplete, out[0].State)
	assert.Equal(t, StateInProgress, out[1].State)
}

func TestProcessChildrenPropagatesCancellation(t *testing.T) {
	children := []*Job{
		{ID: 1, State: StatePending},
		{ID: 2, State: StateInProgress},
	}
	out, complete := ProcessChildren(children, true, func(c *Job) *Job { return c })
	assert.False(t, complete)
	for _, c := range out {
		assert.Equal(t, StateCancelled, c.State)
	}
}
