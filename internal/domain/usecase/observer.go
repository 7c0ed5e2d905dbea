package usecase

import "context"

// StepEvent is emitted for every pipeline transition.
type StepEvent struct {
	State   string `json:"state"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

type StepObserver func(StepEvent)

type observerKey struct{}

// WithObserver attaches fn to ctx; the pipeline calls it synchronously on each transition.
func WithObserver(ctx context.Context, fn StepObserver) context.Context {
	return context.WithValue(ctx, observerKey{}, fn)
}

func ObserverFrom(ctx context.Context) StepObserver {
	if fn, ok := ctx.Value(observerKey{}).(StepObserver); ok && fn != nil {
		return fn
	}
	return func(StepEvent) {}
}
