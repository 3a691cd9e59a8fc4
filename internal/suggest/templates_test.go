package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlapScoreBounds(t *testing.T) {
	a := tokenSet(tokenize("the party shall indemnify the other party"))
	b := tokenSet(tokenize("the party shall indemnify the other party"))
	assert.Equal(t, 1.0, overlapScore(a, b))

	c := tokenSet(tokenize("completely unrelated wording here"))
	assert.Equal(t, 0.0, overlapScore(a, c))

	assert.Equal(t, 0.0, overlapScore(map[string]struct{}{}, map[string]struct{}{}))
}

func TestMatchTemplatesRankingAndLimit(t *testing.T) {
	templates := []ClauseTemplate{
		{ID: "t1", Name: "Indemnity", Text: "party shall indemnify the other party"},
		{ID: "t2", Name: "Confidentiality", Text: "recipient shall keep information confidential"},
		{ID: "t3", Name: "Unrelated", Text: "quarterly invoices are payable in thirty days"},
	}

	matches := MatchTemplates("The Party shall indemnify the other party.", templates, 2)
	require.NotEmpty(t, matches)
	assert.Equal(t, "t1", matches[0].TemplateID)
	assert.LessOrEqual(t, len(matches), 2)
	for i := 1; i < len(matches); i++ {
		assert.GreaterOrEqual(t, matches[i-1].Score, matches[i].Score)
	}
	for _, m := range matches {
		assert.Greater(t, m.Score, 0.0)
		assert.LessOrEqual(t, m.Score, 1.0)
	}
}

func TestMatchTemplatesSpansAreByteOffsets(t *testing.T) {
	clause := "Party shall indemnify"
	templates := []ClauseTemplate{{ID: "t1", Name: "Indemnity", Text: "indemnify promptly"}}

	matches := MatchTemplates(clause, templates, 5)
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Spans, 1)

	span := matches[0].Spans[0]
	assert.Equal(t, "indemnify", clause[span.Start:span.End])
}

func TestMatchTemplatesDropsZeroScores(t *testing.T) {
	templates := []ClauseTemplate{{ID: "t1", Name: "Unrelated", Text: "zzz qqq"}}
	assert.Empty(t, MatchTemplates("party shall indemnify", templates, 5))
}

func TestTokenizeOffsets(t *testing.T) {
	tokens := tokenize("Data, processing!")
	require.Len(t, tokens, 2)
	assert.Equal(t, "data", tokens[0].text)
	assert.Equal(t, Span{Start: 0, End: 4}, tokens[0].span)
	assert.Equal(t, "processing", tokens[1].text)
	assert.Equal(t, Span{Start: 6, End: 16}, tokens[1].span)
}
