package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext_MissPath(t *testing.T) {
	want := []State{
		StateCacheLookup, StateCollect, StateSummarize, StateRetrieveContext,
		StateReason, StateScore, StatePersist, StateCacheUpsert, StateRespond,
	}

	var got []State
	for s := StateStart; !Terminal(s); {
		outcome := OutcomeOK
		if s == StateCacheLookup {
			outcome = OutcomeMiss
		}
		s = Next(s, outcome)
		got = append(got, s)
	}

	assert.Equal(t, want, got)
}

func TestNext_HitShortCircuits(t *testing.T) {
	s := Next(StateCacheLookup, OutcomeHit)

	assert.Equal(t, StateCacheHit, s)
	assert.True(t, Terminal(s))
	assert.Equal(t, StateRespond, Next(s, OutcomeOK))
}

func TestNext_DegradedEdgesStillReachRespond(t *testing.T) {
	for _, s := range []State{
		StateCacheLookup, StateCollect, StateSummarize, StateRetrieveContext,
		StateReason, StateScore, StatePersist, StateCacheUpsert,
	} {
		cur := s
		for i := 0; i < 20 && !Terminal(cur); i++ {
			cur = Next(cur, OutcomeDegraded)
		}
		assert.Equal(t, StateRespond, cur, "from %s", s)
	}
}
