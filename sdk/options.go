package sdk

import "time"

type Clock func() time.Time

// AggregateOption tweaks aggregation behavior. The only knob today is the
// clock, so the option shape is a clock transform.
type AggregateOption func(clock Clock) Clock

// WithClock pins processed_at to an injected clock. Tests use it to make
// aggregation a pure function of its inputs.
func WithClock(clock Clock) AggregateOption {
	return func(Clock) Clock {
		return clock
	}
}

// PipelineOption configures a Pipeline at construction.
type PipelineOption func(pipeline *Pipeline)

// WithPipelineClock injects the clock used for processed_at.
func WithPipelineClock(clock Clock) PipelineOption {
	return func(pipeline *Pipeline) {
		pipeline.clock = clock
	}
}

// WithContextStore attaches a conversation-context store. Without one the
// pipeline still works; context just doesn't survive across requests.
func WithContextStore(contexts ContextStore) PipelineOption {
	return func(pipeline *Pipeline) {
		pipeline.contexts = contexts
	}
}
