// Package search implements field resolution, filtering and sorting over the
// two-level Model/Variant catalog. Everything here is pure: inputs are never
// mutated and results never alias input variant slices.
package search

import (
	"fmt"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// YearTrim decides when the variant list is narrowed to the requested year.
type YearTrim string

const (
	// YearTrimDeferred selects models by year but narrows their variants only
	// when no text query runs. A text query sees and returns the full list.
	YearTrimDeferred YearTrim = "deferred"
	// YearTrimEager narrows to the year first; the text query searches within it.
	YearTrimEager YearTrim = "eager"
)

// VariantMatch decides what a variant-level text match returns.
type VariantMatch string

const (
	// MatchContext returns every variant of a matching model.
	MatchContext VariantMatch = "context"
	// MatchNarrow returns only the matching variants.
	MatchNarrow VariantMatch = "narrow"
)

// EmptyQuery decides the result when neither a text query nor a year is given.
type EmptyQuery string

const (
	EmptyQueryNone EmptyQuery = "none"
	EmptyQueryAll  EmptyQuery = "all"
)

// Projection decides how much of each returned variant is kept.
type Projection string

const (
	ProjectFull Projection = "full"
	// ProjectSummary keeps year, image marker and id only.
	ProjectSummary Projection = "summary"
)

// Policy bundles the engine's behavioral choices.
type Policy struct {
	YearTrim     YearTrim
	VariantMatch VariantMatch
	EmptyQuery   EmptyQuery
	Projection   Projection
}

// DefaultPolicy mirrors the catalog's reference search behavior.
func DefaultPolicy() Policy {
	return Policy{
		YearTrim:     YearTrimDeferred,
		VariantMatch: MatchContext,
		EmptyQuery:   EmptyQueryNone,
		Projection:   ProjectFull,
	}
}

// Validate reports the first unknown policy value.
func (p Policy) Validate() error {
	switch p.YearTrim {
	case YearTrimDeferred, YearTrimEager:
	default:
		return fmt.Errorf("unknown year trim policy %q", p.YearTrim)
	}
	switch p.VariantMatch {
	case MatchContext, MatchNarrow:
	default:
		return fmt.Errorf("unknown variant match policy %q", p.VariantMatch)
	}
	switch p.EmptyQuery {
	case EmptyQueryNone, EmptyQueryAll:
	default:
		return fmt.Errorf("unknown empty query policy %q", p.EmptyQuery)
	}
	switch p.Projection {
	case ProjectFull, ProjectSummary:
	default:
		return fmt.Errorf("unknown projection %q", p.Projection)
	}
	return nil
}

// Query is one search request. All fields are optional.
type Query struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Year  string `json:"year"`
}

// HasText reports whether the query would run the text stage.
func (q Query) HasText() bool {
	return q.Field != "" && len(Words(q.Value)) > 0
}

// Engine filters a record set according to a Policy. It holds no mutable
// state and may be shared between goroutines.
type Engine struct {
	policy Policy
}

// NewEngine returns an engine using p. Zero-valued policy fields fall back to
// DefaultPolicy.
func NewEngine(p Policy) *Engine {
	def := DefaultPolicy()
	if p.YearTrim == "" {
		p.YearTrim = def.YearTrim
	}
	if p.VariantMatch == "" {
		p.VariantMatch = def.VariantMatch
	}
	if p.EmptyQuery == "" {
		p.EmptyQuery = def.EmptyQuery
	}
	if p.Projection == "" {
		p.Projection = def.Projection
	}
	return &Engine{policy: p}
}

// Policy returns the effective policy.
func (e *Engine) Policy() Policy {
	return e.policy
}

// WithProjection returns an engine identical to e except for the projection.
func (e *Engine) WithProjection(p Projection) *Engine {
	if p == "" || p == e.policy.Projection {
		return e
	}
	policy := e.policy
	policy.Projection = p
	return &Engine{policy: policy}
}

// Run applies the year stage, then the text stage, then drops models left
// without variants. The result is never nil.
func (e *Engine) Run(models []domain.Model, q Query) []domain.Model {
	l := newLowerer()
	words := splitWords(l, q.Value)
	text := q.Field != "" && len(words) > 0
	out := []domain.Model{}

	if !text && q.Year == "" {
		if e.policy.EmptyQuery != EmptyQueryAll {
			return out
		}
		for i := range models {
			if len(models[i].Variants) > 0 {
				out = append(out, e.project(models[i], models[i].Variants))
			}
		}
		return out
	}

	var route Route
	if text {
		var ok bool
		if route, ok = Resolve(q.Field); !ok {
			return out
		}
	}

	for i := range models {
		m := &models[i]
		variants := m.Variants

		if q.Year != "" {
			if !hasYear(variants, q.Year) {
				continue
			}
			if !text || e.policy.YearTrim == YearTrimEager {
				variants = filterYear(variants, q.Year)
			}
		}

		if text {
			var ok bool
			if variants, ok = e.match(l, m, variants, route, words, q.Value); !ok {
				continue
			}
		}

		if len(variants) == 0 {
			continue
		}
		out = append(out, e.project(*m, variants))
	}
	return out
}

func (e *Engine) match(l *lowerer, m *domain.Model, variants []domain.Variant, route Route, words []string, value string) ([]domain.Variant, bool) {
	switch route.Kind {
	case RouteLink:
		return variants, m.Key == value
	case RouteName:
		return variants, containsAll(l.lower(FormatName(m.Key)), words)
	case RouteModel:
		s, ok := m.Attr(route.ModelAttr)
		if !ok {
			return nil, false
		}
		return variants, containsAll(l.lower(s), words)
	case RouteYear:
		return e.matchVariants(variants, func(v *domain.Variant) bool {
			return v.Year == value
		})
	case RouteVariant:
		return e.matchVariants(variants, func(v *domain.Variant) bool {
			s, ok := v.Attr(route.VariantAttr)
			return ok && containsAll(l.lower(s), words)
		})
	}
	return nil, false
}

// matchVariants keeps the model when at least one variant satisfies pred.
func (e *Engine) matchVariants(variants []domain.Variant, pred func(*domain.Variant) bool) ([]domain.Variant, bool) {
	narrow := e.policy.VariantMatch == MatchNarrow
	matched := false
	var kept []domain.Variant
	for i := range variants {
		if !pred(&variants[i]) {
			continue
		}
		matched = true
		if !narrow {
			break
		}
		kept = append(kept, variants[i])
	}
	if !matched {
		return nil, false
	}
	if narrow {
		return kept, true
	}
	return variants, true
}

func (e *Engine) project(m domain.Model, variants []domain.Variant) domain.Model {
	vs := make([]domain.Variant, len(variants))
	for i := range variants {
		if e.policy.Projection == ProjectSummary {
			vs[i] = Summarize(variants[i])
		} else {
			vs[i] = variants[i]
		}
	}
	return m.WithVariants(vs)
}

// Summarize keeps the fields a result grid needs: year, image marker and id.
func Summarize(v domain.Variant) domain.Variant {
	return domain.Variant{Year: v.Year, ImagePath: v.ImagePath, ID: v.ID}
}

func hasYear(variants []domain.Variant, year string) bool {
	for i := range variants {
		if variants[i].Year == year {
			return true
		}
	}
	return false
}

func filterYear(variants []domain.Variant, year string) []domain.Variant {
	var kept []domain.Variant
	for i := range variants {
		if variants[i].Year == year {
			kept = append(kept, variants[i])
		}
	}
	return kept
}
