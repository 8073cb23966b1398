// Package generate turns a question and its retrieved chunks into an answer
// using a chat model.
package generate

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/docmind/internal/doctree"
)

// ErrEmptyAnswer is returned when the model responds without any text.
var ErrEmptyAnswer = errors.New("model returned an empty answer")

// Generator produces an answer grounded in chunks. Implementations own their
// retry policy; callers never retry.
type Generator interface {
	Complete(ctx context.Context, question string, chunks []doctree.Retrieved) (string, error)
}

// Instrumented records the outcome and latency of every call in Stats.
type Instrumented struct {
	Generator
	Stats *LLMStats
}

func WithStats(g Generator, stats *LLMStats) *Instrumented {
	return &Instrumented{Generator: g, Stats: stats}
}

func (i *Instrumented) Complete(ctx context.Context, question string, chunks []doctree.Retrieved) (string, error) {
	start := time.Now()
	answer, err := i.Generator.Complete(ctx, question, chunks)
	if i.Stats != nil && ctx.Err() == nil {
		i.Stats.Record(time.Since(start), err)
	}
	return answer, err
}
