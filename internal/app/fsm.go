package app

type State string

const (
	StateStart           State = "START"
	StateCacheLookup     State = "CACHE_LOOKUP"
	StateCacheHit        State = "CACHE_HIT"
	StateCollect         State = "COLLECT"
	StateSummarize       State = "SUMMARIZE"
	StateRetrieveContext State = "RETRIEVE_CONTEXT"
	StateReason          State = "REASON"
	StateScore           State = "SCORE"
	StatePersist         State = "PERSIST"
	StateCacheUpsert     State = "CACHE_UPSERT"
	StateRespond         State = "RESPOND"
)

// Outcome is the result of executing one state.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeHit      Outcome = "hit"
	OutcomeMiss     Outcome = "miss"
	OutcomeDegraded Outcome = "degraded"
)

// Next is the transition function of the analysis pipeline. Every non-terminal
// state has one success edge and one degraded edge, and both lead towards RESPOND.
func Next(s State, o Outcome) State {
	switch s {
	case StateStart:
		return StateCacheLookup
	case StateCacheLookup:
		if o == OutcomeHit {
			return StateCacheHit
		}
		return StateCollect
	case StateCacheHit:
		return StateRespond
	case StateCollect:
		return StateSummarize
	case StateSummarize:
		return StateRetrieveContext
	case StateRetrieveContext:
		return StateReason
	case StateReason:
		return StateScore
	case StateScore:
		return StatePersist
	case StatePersist:
		return StateCacheUpsert
	case StateCacheUpsert:
		return StateRespond
	}
	return StateRespond
}

func Terminal(s State) bool {
	return s == StateCacheHit || s == StateRespond
}
