package analyzer

import (
	"regexp"
	"strings"

	"admissions-rag-be/pkg/chat"
)

// Analysis is the transient classification of one incoming question. It is
// consumed within a single request and never persisted.
type Analysis struct {
	Type            string   `json:"type"`
	Confidence      float64  `json:"confidence"`
	Keywords        []string `json:"keywords"`
	Intent          string   `json:"intent"`
	ContextType     string   `json:"context_type,omitempty"`
	RequiresContext bool     `json:"requires_context"`
	Complexity      string   `json:"complexity"`
}

const (
	TypeGeneral = "general"

	IntentInformationSeeking = "information_seeking"
	IntentActionSeeking      = "action_seeking"
	IntentComparison         = "comparison"
	IntentFollowUp           = "follow_up"

	ContextFollowUp      = "follow_up"
	ContextClarification = "clarification"
	ContextComparison    = "comparison"

	ComplexitySimple  = "simple"
	ComplexityMedium  = "medium"
	ComplexityComplex = "complex"
)

// Category is one named question class scored by keyword and pattern hits.
// Categories are data, not code; tests substitute small fixture tables.
type Category struct {
	Name     string
	Keywords []string
	Patterns []*regexp.Regexp
}

// Analyzer classifies questions with weighted keyword/pattern scoring.
// It is stateless after construction and safe for concurrent use.
type Analyzer struct {
	categories []Category
}

// New returns an analyzer loaded with the default admissions categories.
func New() *Analyzer {
	return NewWithCategories(DefaultCategories())
}

// NewWithCategories returns an analyzer over a custom category table.
// Declaration order matters: score ties resolve to the earlier category.
func NewWithCategories(categories []Category) *Analyzer {
	return &Analyzer{categories: categories}
}

// Analyze classifies the question. Pure function of its inputs: identical
// question and context always produce an identical Analysis.
func (a *Analyzer) Analyze(question string, contextMessages []chat.Message) Analysis {
	query := strings.ToLower(question)

	analysis := Analysis{
		Type:       TypeGeneral,
		Intent:     IntentInformationSeeking,
		Complexity: ComplexitySimple,
	}

	best := 0.0
	for _, category := range a.categories {
		confidence := a.scoreCategory(query, category)
		if confidence > best {
			best = confidence
			analysis.Type = category.Name
		}
	}
	analysis.Confidence = best

	analysis.Keywords = a.extractKeywords(query)
	analysis.Intent = a.intent(query, contextMessages)
	analysis.RequiresContext = a.requiresContext(query)
	analysis.ContextType = a.contextType(query)
	analysis.Complexity = a.complexity(query)

	return analysis
}

// scoreCategory weighs keyword hits at 0.7 and pattern hits at 0.3.
func (a *Analyzer) scoreCategory(query string, category Category) float64 {
	keywordHits := 0
	for _, keyword := range category.Keywords {
		if strings.Contains(query, keyword) {
			keywordHits++
		}
	}

	patternHits := 0
	for _, pattern := range category.Patterns {
		if pattern.MatchString(query) {
			patternHits++
		}
	}

	score := 0.0
	if len(category.Keywords) > 0 {
		score += float64(keywordHits) / float64(len(category.Keywords)) * 0.7
	}
	if len(category.Patterns) > 0 {
		score += float64(patternHits) / float64(len(category.Patterns)) * 0.3
	}
	return score
}

// extractKeywords collects every category keyword literally present in the
// question, de-duplicated, in stable category-declaration order.
func (a *Analyzer) extractKeywords(query string) []string {
	var keywords []string
	seen := make(map[string]bool)
	for _, category := range a.categories {
		for _, keyword := range category.Keywords {
			if seen[keyword] || !strings.Contains(query, keyword) {
				continue
			}
			seen[keyword] = true
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}

func (a *Analyzer) intent(query string, contextMessages []chat.Message) string {
	if containsAny(query, questionWords) {
		return IntentInformationSeeking
	}
	if containsAny(query, actionWords) {
		return IntentActionSeeking
	}
	if containsAny(query, comparisonWords) {
		return IntentComparison
	}
	if len(contextMessages) > 0 && containsAny(query, followUpMarkers) {
		return IntentFollowUp
	}
	return IntentInformationSeeking
}

func (a *Analyzer) requiresContext(query string) bool {
	if len(strings.Fields(query)) <= 3 {
		return true
	}
	if containsAny(query, pronouns) {
		return true
	}
	if containsAny(query, followUpMarkers) {
		return true
	}
	return containsAny(query, clarificationMarkers)
}

func (a *Analyzer) contextType(query string) string {
	switch {
	case containsAny(query, followUpMarkers):
		return ContextFollowUp
	case containsAny(query, clarificationMarkers):
		return ContextClarification
	case containsAny(query, comparisonMarkers):
		return ContextComparison
	}
	return ""
}

func (a *Analyzer) complexity(query string) string {
	wordCount := len(strings.Fields(query))

	if strings.Contains(query, "và") || strings.Contains(query, "hoặc") || strings.Contains(query, "?") {
		return ComplexityComplex
	}
	if wordCount > 15 {
		return ComplexityComplex
	}
	if wordCount > 8 && len(a.extractKeywords(query)) > 2 {
		return ComplexityMedium
	}
	return ComplexitySimple
}

func containsAny(query string, words []string) bool {
	for _, word := range words {
		if strings.Contains(query, word) {
			return true
		}
	}
	return false
}
