package eval_test

import (
	"testing"

	"assessment-recommender/internal/eval"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecallAtK_PartialHit(t *testing.T) {
	groundTruth := []string{"https://x.com/u1", "https://x.com/u2", "https://x.com/u3"}
	predicted := []string{
		"https://x.com/u1",
		"https://x.com/other1",
		"https://x.com/u3",
		"https://x.com/other2",
	}

	recall, ok := eval.RecallAtK(predicted, groundTruth, 10)
	require.True(t, ok)
	assert.InDelta(t, 2.0/3.0, recall, 1e-9)
}

func TestRecallAtK_CanonicalizesBothSides(t *testing.T) {
	groundTruth := []string{"http://x.com/solutions/u1/"}
	predicted := []string{"https://X.com/u1?ref=home"}

	recall, ok := eval.RecallAtK(predicted, groundTruth, 10)
	require.True(t, ok)
	assert.Equal(t, 1.0, recall)
}

func TestRecallAtK_EmptyGroundTruthNotApplicable(t *testing.T) {
	_, ok := eval.RecallAtK([]string{"https://x.com/u1"}, nil, 10)
	assert.False(t, ok)

	_, ok = eval.RecallAtK([]string{"https://x.com/u1"}, []string{"", "   "}, 10)
	assert.False(t, ok)
}

func TestRecallAtK_MonotonicInK(t *testing.T) {
	groundTruth := []string{"https://x.com/u1", "https://x.com/u2", "https://x.com/u3"}
	predicted := []string{
		"https://x.com/other1",
		"https://x.com/u2",
		"https://x.com/other2",
		"https://x.com/u1",
		"https://x.com/u3",
	}

	prev := 0.0
	for k := 1; k <= len(predicted)+2; k++ {
		recall, ok := eval.RecallAtK(predicted, groundTruth, k)
		require.True(t, ok)
		assert.GreaterOrEqual(t, recall, prev, "recall@%d dropped", k)
		prev = recall
	}
	assert.Equal(t, 1.0, prev)
}

func TestRecallAtK_TruncatesPredictions(t *testing.T) {
	groundTruth := []string{"https://x.com/u1"}
	predicted := []string{"https://x.com/other", "https://x.com/u1"}

	recall, ok := eval.RecallAtK(predicted, groundTruth, 1)
	require.True(t, ok)
	assert.Equal(t, 0.0, recall)
}

func TestMeanRecall_ExcludesNotApplicable(t *testing.T) {
	results := []eval.QueryResult{
		{Query: "a", Recall: 1.0, Applicable: true},
		{Query: "b", Recall: 0.5, Applicable: true},
		{Query: "c", Recall: 0.0, Applicable: false}, // must not drag the mean down
	}

	mean, ok := eval.MeanRecall(results)
	require.True(t, ok)
	assert.InDelta(t, 0.75, mean, 1e-9)
}

func TestMeanRecall_AllNotApplicable(t *testing.T) {
	_, ok := eval.MeanRecall([]eval.QueryResult{{Applicable: false}})
	assert.False(t, ok)

	_, ok = eval.MeanRecall(nil)
	assert.False(t, ok)
}
