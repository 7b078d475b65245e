package catalog

import (
	"maturitymap/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionsCoverEveryCategoryOnce(t *testing.T) {
	qs := Questions()
	require.Len(t, qs, 10)

	seen := make(map[model.Category]int)
	for i, q := range qs {
		assert.Equal(t, i+1, q.ID, "ids are sequential")
		assert.True(t, q.Category.IsValid())
		assert.GreaterOrEqual(t, len(q.Options), 2)
		assert.LessOrEqual(t, len(q.Options), 3)
		assert.NotEmpty(t, q.Text)
		assert.NotEmpty(t, q.Elaboration)
		seen[q.Category]++
	}
	for _, c := range model.Categories() {
		assert.Equal(t, 1, seen[c], "category %s", c)
	}
}

func TestQuestionsReturnsCopy(t *testing.T) {
	qs := Questions()
	qs[0].Options[0] = "Maybe"
	qs[0].Text = "changed"

	fresh, ok := Lookup(1)
	require.True(t, ok)
	assert.Equal(t, model.AnswerYes, fresh.Options[0])
	assert.NotEqual(t, "changed", fresh.Text)
}

func TestLookup(t *testing.T) {
	q, ok := Lookup(4)
	require.True(t, ok)
	assert.Equal(t, model.CategoryGovernance, q.Category)
	assert.True(t, q.Allows(model.AnswerInDevelopment))
	assert.False(t, q.Allows(model.AnswerPlanned))

	_, ok = Lookup(11)
	assert.False(t, ok)
}

func TestCategoryDescriptions(t *testing.T) {
	for _, c := range model.Categories() {
		assert.NotEmpty(t, CategoryDescription(c), c)
	}
	assert.Len(t, CategoryDescriptions(), 10)
}
