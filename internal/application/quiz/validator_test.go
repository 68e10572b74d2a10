package quiz

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/domain/entity"
)

func ctxCaps() []entity.Caption {
	return []entity.Caption{
		{StartMs: 10000, EndMs: 12000, Text: "a"},
		{StartMs: 12000, EndMs: 14000, Text: "b"},
	}
}

func mcqItem() entity.QuizItem {
	return entity.QuizItem{
		Type:     entity.QuizTypeMCQ,
		Question: "牛顿第一定律说明了什么？",
		Options: []entity.Option{
			{Label: "A", Text: "惯性"}, {Label: "B", Text: "加速度"},
			{Label: "C", Text: "作用力"}, {Label: "D", Text: "能量"},
		},
		Answer:   "A",
		Evidence: []entity.Evidence{{StartMs: 10500, EndMs: 11000}},
	}
}

func oxItem() entity.QuizItem {
	return entity.QuizItem{
		Type:     entity.QuizTypeOX,
		Question: "惯性是物体保持运动状态的性质。",
		Options:  []entity.Option{{Label: "O"}, {Label: "X"}},
		Answer:   "O",
		Evidence: []entity.Evidence{{StartMs: 13000, EndMs: 13500}},
	}
}

func TestValidateItemAccepts(t *testing.T) {
	mcq := mcqItem()
	ox := oxItem()
	assert.True(t, ValidateItem(&mcq, ctxCaps()))
	assert.True(t, ValidateItem(&ox, ctxCaps()))
}

func TestValidateItemRejectsMissingOption(t *testing.T) {
	it := mcqItem()
	it.Options = it.Options[:3] // 缺 D
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsWrongLabelOrder(t *testing.T) {
	it := mcqItem()
	it.Options[0], it.Options[1] = it.Options[1], it.Options[0]
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsBadOXAnswer(t *testing.T) {
	it := oxItem()
	it.Answer = "Yes"
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsAnswerOutsideLabels(t *testing.T) {
	it := mcqItem()
	it.Answer = "E"
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsNoEvidence(t *testing.T) {
	it := mcqItem()
	it.Evidence = nil
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsEvidenceBeforeContext(t *testing.T) {
	it := mcqItem()
	it.Evidence = []entity.Evidence{{StartMs: 0, EndMs: 5000}}
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestValidateItemRejectsUnknownType(t *testing.T) {
	it := mcqItem()
	it.Type = "FILL"
	assert.False(t, ValidateItem(&it, ctxCaps()))
}

func TestFilterValidDedupByQuestion(t *testing.T) {
	a := mcqItem()
	b := mcqItem() // 同一问题文本
	seen := make(map[string]struct{})
	out := FilterValid([]entity.QuizItem{a, b}, ctxCaps(), seen)
	require.Len(t, out, 1)

	// seen 跨轮次共享：下一轮同问题被拒
	out = FilterValid([]entity.QuizItem{mcqItem()}, ctxCaps(), seen)
	assert.Empty(t, out)
}

func TestOptionUnmarshalPromotesBareString(t *testing.T) {
	var it entity.QuizItem
	raw := `{"type":"OX","question":"q","options":["O","X"],"answer":"O","evidence":[{"start_ms":10500,"end_ms":11000}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &it))
	assert.True(t, ValidateItem(&it, ctxCaps()))
}
