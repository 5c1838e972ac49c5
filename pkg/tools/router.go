package tools

import (
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// Query categories, checked in this order.
const (
	CategoryPerformance  = "performance"
	CategoryBehavior     = "behavior"
	CategoryStock        = "stock"
	CategoryPrediction   = "prediction"
	CategoryOptimization = "optimization"
	CategoryGeneral      = "general"
)

type route struct {
	category string
	keywords []string
}

var routes = []route{
	{CategoryPerformance, []string{"sales", "revenue", "conversion"}},
	{CategoryBehavior, []string{"dwell", "path", "journey"}},
	{CategoryStock, []string{"stock", "restock", "inventory"}},
	{CategoryPrediction, []string{"predict", "forecast"}},
	{CategoryOptimization, []string{"optimize", "placement", "layout"}},
}

var keywordPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, r := range routes {
		for _, kw := range r.keywords {
			m[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		}
	}
	return m
}()

// ClassifyQuery maps a user question to a tool category by whole-word
// keyword match. It returns the category and the keyword that matched, or
// CategoryGeneral and "" when nothing matches.
func ClassifyQuery(text string) (category, keyword string) {
	lower := strings.ToLower(text)
	for _, r := range routes {
		for _, kw := range r.keywords {
			if keywordPatterns[kw].MatchString(lower) {
				return r.category, kw
			}
		}
	}
	return CategoryGeneral, ""
}

// Route classifies a question and returns the tools of its category. A
// general question, or a category without tools, gets every tool.
func (r *Registry) Route(text string) (string, []Tool) {
	category, _ := ClassifyQuery(text)
	all := r.Tools()
	if category == CategoryGeneral {
		return category, all
	}

	var out []Tool
	for _, t := range all {
		if t.Category == category {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return category, all
	}
	return category, out
}

// RouteDefinitions is Route exported as OpenAI function definitions.
func (r *Registry) RouteDefinitions(text string) (string, []openai.FunctionDefinition) {
	category, tools := r.Route(text)
	return category, definitions(tools)
}
