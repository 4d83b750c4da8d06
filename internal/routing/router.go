// Package routing classifies free-form user input and selects a
// processing tier before any model is consulted.
//
// Routing is a cheap pre-filter: it never blocks on the network, and it
// never fails. A request the tables cannot place falls through to the
// micro-model tier with low confidence so the session can always make
// progress.
package routing

import (
	"fmt"
	"strings"

	"github.com/oakworth/steward/pkg/models"
)

// RequestType is the coarse classification of a request.
type RequestType string

const (
	TypeShellCommand   RequestType = "shell_command"
	TypeFileOperation  RequestType = "file_operation"
	TypeNavigation     RequestType = "navigation"
	TypeCodeGeneration RequestType = "code_generation"
	TypeTestGeneration RequestType = "test_generation"
	TypeBoilerplate    RequestType = "boilerplate"
	TypeCodeSearch     RequestType = "code_search"
	TypeExplanation    RequestType = "explanation"
	TypeDocumentation  RequestType = "documentation"
	TypeBugFix         RequestType = "bug_fix"
	TypeRefactor       RequestType = "refactor"
	TypeConversational RequestType = "conversational"
	TypeUnknown        RequestType = "unknown"
)

// Decision is the routing outcome for one request. Produced fresh per
// request and never mutated.
type Decision struct {
	RequestType RequestType
	Path        models.Path
	Model       string
	TemplateID  string
	Confidence  float64
	Reasoning   string
}

// Classifier assigns a request type and confidence to an input.
// Implementations may fail; the Router absorbs the failure.
type Classifier interface {
	Classify(input string) (RequestType, float64, error)
}

// Options adjust routing for one request.
type Options struct {
	// PreferQuality upgrades generative requests to the full-model tier.
	PreferQuality bool
}

// Config configures a Router.
type Config struct {
	// MicroModel is recommended for micro-model tier decisions.
	MicroModel string

	// FullModel is recommended for full-model tier decisions.
	FullModel string

	// Classifier replaces the built-in pattern classifier when set.
	Classifier Classifier
}

// Router selects a processing tier from static pattern tables.
type Router struct {
	microModel string
	fullModel  string
	classifier Classifier
}

// NewRouter creates a Router.
func NewRouter(cfg Config) *Router {
	classifier := cfg.Classifier
	if classifier == nil {
		classifier = patternClassifier{}
	}
	return &Router{
		microModel: cfg.MicroModel,
		fullModel:  cfg.FullModel,
		classifier: classifier,
	}
}

// Route classifies input and picks a tier. It is a total function: any
// internal failure, including a panicking classifier, degrades to the
// micro-model tier instead of propagating.
func (r *Router) Route(input string, opts Options) (decision Decision) {
	defer func() {
		if p := recover(); p != nil {
			decision = r.degraded(fmt.Sprintf("panic: %v", p))
		}
	}()

	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return r.degraded("empty input")
	}

	if typ, ok := matchDeterministic(lower); ok {
		return Decision{
			RequestType: typ,
			Path:        models.PathDeterministic,
			Confidence:  0.95,
			Reasoning:   "matched deterministic pattern, no model needed",
		}
	}

	if isConversational(lower) {
		return Decision{
			RequestType: TypeConversational,
			Path:        models.PathMicroModel,
			Model:       r.microModel,
			Confidence:  0.9,
			Reasoning:   "conversational message, no tools needed",
		}
	}

	if typ, template, ok := matchTemplate(lower); ok {
		return Decision{
			RequestType: typ,
			Path:        models.PathTemplateFill,
			Model:       r.microModel,
			TemplateID:  template,
			Confidence:  0.85,
			Reasoning:   "template available, minimal model fill",
		}
	}

	if typ, ok := matchSearch(lower); ok {
		return Decision{
			RequestType: typ,
			Path:        models.PathEmbeddingSearch,
			Confidence:  0.9,
			Reasoning:   "semantic lookup, no generation",
		}
	}

	typ, confidence, err := r.classifier.Classify(lower)
	if err != nil {
		return r.degraded(err.Error())
	}

	path := models.PathMicroModel
	model := r.microModel
	reasoning := "model generation required"
	if opts.PreferQuality || isComplex(lower) {
		path = models.PathFullModel
		model = r.fullModel
		reasoning = "complex task, using full model"
	}

	return Decision{
		RequestType: typ,
		Path:        path,
		Model:       model,
		Confidence:  confidence,
		Reasoning:   reasoning,
	}
}

// degraded is the never-throw fallback: a routing failure must not
// block response generation.
func (r *Router) degraded(cause string) Decision {
	return Decision{
		RequestType: TypeUnknown,
		Path:        models.PathMicroModel,
		Model:       r.microModel,
		Confidence:  0.3,
		Reasoning:   "routing failed: " + cause,
	}
}

// patternClassifier is the built-in classifier; it cannot fail.
type patternClassifier struct{}

func (patternClassifier) Classify(input string) (RequestType, float64, error) {
	if typ, ok := matchGenerative(input); ok {
		return typ, 0.8, nil
	}
	return TypeUnknown, 0.3, nil
}
