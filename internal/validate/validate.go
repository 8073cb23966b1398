// Package validate scores a generated answer against the chunks it was
// generated from.
package validate

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/docmind/internal/doctree"
)

// Warning texts attached to a Result.
const (
	WarnLowConfidence = "low confidence in the answer, verify the facts"
	WarnNoCitations   = "the answer does not reference any chapter or section"
	WarnNotGrounded   = "the answer may contain information from outside the document"
)

// Unknown fills source fields missing from chunk metadata.
const Unknown = "unknown"

// Config holds the tunable thresholds.
type Config struct {
	ConfidenceThreshold float64 // Warn when confidence is below this.
	ContextFactor       float64 // Share of the context length an answer must reach for full confidence.
	GroundingThreshold  float64 // Minimum share of answer words found in the context.
}

func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.7,
		ContextFactor:       0.3,
		GroundingThreshold:  0.3,
	}
}

// Source identifies a chunk an answer drew on.
type Source struct {
	Chapter string `json:"chapter"`
	Section string `json:"section"`
	ChunkID string `json:"chunk_id"`
}

// Result is the validated answer.
//
// Confidence is a coverage heuristic: the answer length relative to a fixed
// share of the retrieved context length, capped at 1. It is not a calibrated
// probability of correctness.
type Result struct {
	Answer       string   `json:"answer"`
	Sources      []Source `json:"sources"`
	Confidence   float64  `json:"confidence"`
	HasCitations bool     `json:"has_citations"`
	IsGrounded   bool     `json:"is_grounded"`
	Warnings     []string `json:"warnings"`
}

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)глав[аеуы]?\s*\d+`),
	regexp.MustCompile(`(?i)раздел[аеуы]?\s*\d+(?:\.\d+)*`),
	regexp.MustCompile(`(?i)стр(?:\.|аниц[аеуы])?\s*\d+`),
	regexp.MustCompile(`(?i)\bchapter\s*\d+`),
	regexp.MustCompile(`(?i)\bsection\s*\d+(?:\.\d+)*`),
	regexp.MustCompile(`(?i)\bpage\s*\d+`),
}

// Validator is stateless and safe for concurrent use.
type Validator struct {
	cfg Config
}

func New(cfg Config) *Validator {
	d := DefaultConfig()
	if cfg.ContextFactor <= 0 {
		cfg.ContextFactor = d.ContextFactor
	}
	if cfg.ConfidenceThreshold < 0 {
		cfg.ConfidenceThreshold = d.ConfidenceThreshold
	}
	if cfg.GroundingThreshold < 0 {
		cfg.GroundingThreshold = d.GroundingThreshold
	}
	return &Validator{cfg: cfg}
}

func (v *Validator) Validate(answer string, chunks []doctree.Retrieved) Result {
	context := joinTexts(chunks)
	r := Result{
		Answer:       answer,
		Sources:      Sources(chunks),
		Confidence:   v.Confidence(answer, context),
		HasCitations: HasCitations(answer),
		IsGrounded:   v.IsGrounded(answer, context),
		Warnings:     []string{},
	}
	if r.Confidence < v.cfg.ConfidenceThreshold {
		r.Warnings = append(r.Warnings, WarnLowConfidence)
	}
	if !r.HasCitations {
		r.Warnings = append(r.Warnings, WarnNoCitations)
	}
	if !r.IsGrounded {
		r.Warnings = append(r.Warnings, WarnNotGrounded)
	}
	return r
}

// Confidence is min(1, len(answer) / (len(context) * ContextFactor)) in
// characters, rounded to two decimals; 0 for an empty context.
func (v *Validator) Confidence(answer, context string) float64 {
	ctxLen := utf8.RuneCountInString(context)
	if ctxLen == 0 {
		return 0
	}
	c := float64(utf8.RuneCountInString(answer)) / (float64(ctxLen) * v.cfg.ContextFactor)
	if c > 1 {
		c = 1
	}
	return math.Round(c*100) / 100
}

// HasCitations reports whether the answer references a chapter, section or
// page, in Russian or English.
func HasCitations(answer string) bool {
	for _, re := range citationPatterns {
		if re.MatchString(answer) {
			return true
		}
	}
	return false
}

// IsGrounded reports whether more than GroundingThreshold of the answer's
// distinct words appear in the context.
func (v *Validator) IsGrounded(answer, context string) bool {
	a := wordSet(answer)
	c := wordSet(context)
	if len(a) == 0 || len(c) == 0 {
		return false
	}
	common := 0
	for w := range a {
		if _, ok := c[w]; ok {
			common++
		}
	}
	return float64(common)/float64(len(a)) > v.cfg.GroundingThreshold
}

// Sources lists the distinct chapter/section/chunk triples in first-seen
// order.
func Sources(chunks []doctree.Retrieved) []Source {
	out := make([]Source, 0, len(chunks))
	seen := make(map[Source]struct{}, len(chunks))
	for _, ch := range chunks {
		s := Source{
			Chapter: orUnknown(ch.Meta.ChapterTitle),
			Section: orUnknown(ch.Meta.SectionTitle),
			ChunkID: orUnknown(ch.ID),
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}

func joinTexts(chunks []doctree.Retrieved) string {
	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = ch.Text
	}
	return strings.Join(parts, " ")
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(s)) {
		w := strings.TrimFunc(f, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}
