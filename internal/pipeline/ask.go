package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/docmind/internal/index"
	"github.com/dgallion1/docmind/internal/validate"
	"github.com/dgallion1/docmind/internal/vectorstore"
)

// Reason explains an answer that did not come from the generator.
type Reason string

const (
	ReasonNotIndexed       Reason = "not_indexed"
	ReasonNoMatches        Reason = "no_matches"
	ReasonGenerationFailed Reason = "generation_failed"
)

// User-facing texts for recoverable outcomes.
const (
	AnswerNotLoaded  = "No document is loaded. Please load a document first."
	AnswerNoMatches  = "Nothing relevant to your question was found in the document."
	WarnNotLoaded    = "Load and process a document first"
	WarnNothingFound = "Nothing found"
	WarnGeneration   = "Answer generation failed"
)

var ErrEmptyQuestion = errors.New("question is empty")

// Answer is a validated answer, or a recoverable non-answer tagged with
// Reason.
type Answer struct {
	validate.Result
	Reason Reason `json:"reason,omitempty"`
}

func recoverable(reason Reason, text, warning string) Answer {
	return Answer{
		Result: validate.Result{
			Answer:   text,
			Sources:  []validate.Source{},
			Warnings: []string{warning},
		},
		Reason: reason,
	}
}

// Ask answers question from the active document, optionally restricted to
// one chapter id. The returned error is non-nil only when retrieval itself
// fails or ctx is done; every other outcome is an Answer.
func (p *Pipeline) Ask(ctx context.Context, question, chapter string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	if !p.isIndexed() {
		return recoverable(ReasonNotIndexed, AnswerNotLoaded, WarnNotLoaded), nil
	}

	var filter vectorstore.Filter
	if chapter != "" {
		filter = vectorstore.Filter{"chapter_id": chapter}
	}
	log := p.log.With("chapter", chapter)

	chunks, err := p.deps.Index.Query(ctx, question, p.cfg.TopK, filter)
	if errors.Is(err, index.ErrNotIndexed) {
		return recoverable(ReasonNotIndexed, AnswerNotLoaded, WarnNotLoaded), nil
	}
	if err != nil {
		log.Error("retrieval failed", "error", err)
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	if len(chunks) == 0 {
		log.Info("no matching chunks")
		return recoverable(ReasonNoMatches, AnswerNoMatches, WarnNothingFound), nil
	}

	text, err := p.deps.Generator.Complete(ctx, question, chunks)
	if err != nil {
		if ctx.Err() != nil {
			return Answer{}, ctx.Err()
		}
		log.Error("generation failed", "error", err)
		return recoverable(ReasonGenerationFailed,
			fmt.Sprintf("Failed to generate an answer: %s", err), WarnGeneration), nil
	}

	return Answer{Result: p.deps.Validator.Validate(text, chunks)}, nil
}
