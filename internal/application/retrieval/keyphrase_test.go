package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeyphrasesTopN(t *testing.T) {
	phrases := ExtractKeyphrases("inertia law gravity", 3)
	require.Len(t, phrases, 3)
	// 二元短语得分为成员词频之和，排在单词前面
	assert.Equal(t, "inertia law", phrases[0])
	assert.Equal(t, "law gravity", phrases[1])
	assert.Equal(t, "inertia", phrases[2])
}

func TestExtractKeyphrasesFrequencyWins(t *testing.T) {
	phrases := ExtractKeyphrases("inertia inertia inertia newton law newton law gravity", 2)
	require.Len(t, phrases, 2)
	assert.Equal(t, "inertia inertia", phrases[0])
	assert.Equal(t, "inertia newton", phrases[1])
}

func TestExtractKeyphrasesSkipsStopwords(t *testing.T) {
	phrases := ExtractKeyphrases("the the the of of and inertia", 5)
	for _, p := range phrases {
		assert.NotEqual(t, "the", p)
		assert.NotEqual(t, "of", p)
	}
}

func TestQueryPhrasesFallback(t *testing.T) {
	// 全是停用词时回退到原文
	phrases := QueryPhrases("the of and", 5)
	require.Len(t, phrases, 1)
	assert.Equal(t, "the of and", phrases[0])
}

func TestQueryPhrasesEmpty(t *testing.T) {
	assert.Nil(t, QueryPhrases("   ", 5))
}

func TestExtractKeyphrasesHanBigram(t *testing.T) {
	phrases := ExtractKeyphrases("惯性 惯性 定律", 5)
	require.NotEmpty(t, phrases)
	assert.Contains(t, phrases, "惯")
}
