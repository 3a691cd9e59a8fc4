package suggest

import (
	"sort"
	"strings"
	"unicode"
)

// token is one word of the input clause with its byte-offset span.
type token struct {
	text string
	span Span
}

// tokenize splits text into lowercased alphanumeric tokens, keeping the
// byte offsets into the original string.
func tokenize(text string) []token {
	var tokens []token
	start := -1
	for i, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, token{text: strings.ToLower(text[start:i]), span: Span{Start: start, End: i}})
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, token{text: strings.ToLower(text[start:]), span: Span{Start: start, End: len(text)}})
	}
	return tokens
}

// tokenSet returns the distinct token texts.
func tokenSet(tokens []token) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t.text] = struct{}{}
	}
	return set
}

// overlapScore is the token-overlap ratio between two token sets: the
// size of the intersection over the size of the union, in [0,1].
func overlapScore(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// MatchTemplates scores every candidate template against the clause by
// token overlap and returns the best matches, each with the byte-offset
// spans of the clause tokens shared with the template. Read-only; no
// provider calls. Zero-score templates are dropped.
func MatchTemplates(clause string, templates []ClauseTemplate, limit int) []ClauseTemplateMatch {
	clauseTokens := tokenize(clause)
	clauseSet := tokenSet(clauseTokens)

	matches := make([]ClauseTemplateMatch, 0, len(templates))
	for _, tpl := range templates {
		tplSet := tokenSet(tokenize(tpl.Text))
		score := overlapScore(clauseSet, tplSet)
		if score == 0 {
			continue
		}

		var spans []Span
		for _, t := range clauseTokens {
			if _, ok := tplSet[t.text]; ok {
				spans = append(spans, t.span)
			}
		}

		matches = append(matches, ClauseTemplateMatch{
			TemplateID:   tpl.ID,
			TemplateName: tpl.Name,
			Score:        score,
			Spans:        spans,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].TemplateID < matches[j].TemplateID
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
