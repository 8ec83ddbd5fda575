package pipeline

// Outcome is one stage's explicit result. Stages with deterministic
// fallbacks report success with a degraded source label; stages without a
// fallback carry their error here for the orchestrator to classify.
type Outcome[T any] struct {
	Value  T
	Source string
	Err    error
}

func succeeded[T any](value T, source string) Outcome[T] {
	return Outcome[T]{Value: value, Source: source}
}

func failed[T any](err error) Outcome[T] {
	return Outcome[T]{Err: err}
}

// OK reports whether the stage produced a usable value.
func (o Outcome[T]) OK() bool { return o.Err == nil }
