package quiz

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/config"
	"lecture-quiz-api/internal/domain/entity"
	apperrors "lecture-quiz-api/pkg/errors"
)

type stubGenerator struct {
	calls   int
	outputs func(call int) *GenerateOutput
	err     error
}

func (s *stubGenerator) Generate(context.Context, *GenerateInput) (*GenerateOutput, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.outputs(s.calls), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Quiz: config.QuizConfig{
			TargetCount: 5,
			MaxRetries:  2,
			MCQCount:    3,
			OXCount:     2,
			PadMs:       15000,
			MaxChars:    6000,
			Language:    "中文",
		},
		LLM: config.LLMConfig{DefaultProvider: "openai"},
	}
}

const testVTT = `WEBVTT

00:00:00.000 --> 00:00:02.000
牛顿第一定律：静止的物体保持静止。

00:00:02.000 --> 00:00:04.000
这就是惯性。
`

func validBatch(n int, prefix string) []entity.QuizItem {
	items := make([]entity.QuizItem, 0, n)
	for i := 0; i < n; i++ {
		it := mcqItem()
		it.Question = fmt.Sprintf("%s 第 %d 题", prefix, i)
		it.Evidence = []entity.Evidence{{StartMs: 500, EndMs: 1500}}
		items = append(items, it)
	}
	return items
}

type memQuizRepo struct {
	records []*entity.QuizRecord
}

func (m *memQuizRepo) SaveBatch(_ context.Context, records []*entity.QuizRecord) error {
	m.records = append(m.records, records...)
	return nil
}

func (m *memQuizRepo) ListByNamespace(_ context.Context, namespace string, limit int) ([]*entity.QuizRecord, error) {
	out := make([]*entity.QuizRecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Namespace != namespace {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, m.records[i])
	}
	return out, nil
}

func TestHistoryReturnsPersistedItems(t *testing.T) {
	gen := &stubGenerator{outputs: func(int) *GenerateOutput {
		return &GenerateOutput{Items: validBatch(5, "q")}
	}}
	repo := &memQuizRepo{}
	svc := NewService(gen, nil, repo, testConfig())

	_, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		UserID:    "u1",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 500, EndMs: 1500}},
	})
	require.NoError(t, err)

	records, err := svc.History(context.Background(), "lecture_7", 10)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "lecture_7", records[0].Namespace)
	assert.Equal(t, "u1", records[0].UserID)

	// 其他命名空间不可见
	other, err := svc.History(context.Background(), "lecture_8", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestHistoryWithoutRepo(t *testing.T) {
	svc := NewService(&stubGenerator{}, nil, nil, testConfig())
	records, err := svc.History(context.Background(), "lecture_7", 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGenerateFromIntervalsSuccess(t *testing.T) {
	gen := &stubGenerator{outputs: func(int) *GenerateOutput {
		return &GenerateOutput{Items: validBatch(5, "q")}
	}}
	svc := NewService(gen, nil, nil, testConfig())

	res, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 500, EndMs: 1500}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, 1, gen.calls)
}

func TestRetryTerminationExactlyThreeCalls(t *testing.T) {
	// 始终 0 条有效：1 次首轮 + 2 次重试后以 partial 结束
	gen := &stubGenerator{outputs: func(int) *GenerateOutput {
		return &GenerateOutput{RawOutput: "not json"}
	}}
	svc := NewService(gen, nil, nil, testConfig())

	res, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 500, EndMs: 1500}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, StatusPartial, res.Status)
	assert.Empty(t, res.Items)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "not json", res.RawOutput)
}

func TestRetryAccumulatesAcrossAttempts(t *testing.T) {
	gen := &stubGenerator{outputs: func(call int) *GenerateOutput {
		return &GenerateOutput{Items: validBatch(3, fmt.Sprintf("轮%d", call))}
	}}
	svc := NewService(gen, nil, nil, testConfig())

	res, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 500, EndMs: 1500}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Items, 5)
	assert.Equal(t, 2, gen.calls)
}

func TestGeneratorErrorConsumesRetry(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}
	svc := NewService(gen, nil, nil, testConfig())

	res, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 500, EndMs: 1500}},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, gen.calls)
	assert.Equal(t, StatusPartial, res.Status)
}

func TestNoContentOnEmptyVTT(t *testing.T) {
	svc := NewService(&stubGenerator{}, nil, nil, testConfig())
	_, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   "",
		Intervals: []entity.Interval{{StartMs: 0, EndMs: 1000}},
	})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeNoContent, appErr.Code)
}

func TestFallbackToFullCaptionsWhenNoOverlap(t *testing.T) {
	gen := &stubGenerator{outputs: func(int) *GenerateOutput {
		return &GenerateOutput{Items: validBatch(5, "q")}
	}}
	svc := NewService(gen, nil, nil, testConfig())

	// 区间远离所有字幕：回退到全量字幕，仍能出题
	res, err := svc.GenerateFromIntervals(context.Background(), &FromIntervalsInput{
		LectureID: "7",
		VTTText:   testVTT,
		Intervals: []entity.Interval{{StartMs: 900000, EndMs: 950000}},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Len(t, res.Items, 5)
}

func TestParseItemsTolerantExtraction(t *testing.T) {
	raw := "以下是题目：\n```json\n[{\"type\":\"OX\",\"question\":\"q\",\"options\":[\"O\",\"X\"],\"answer\":\"O\",\"evidence\":[{\"start_ms\":1,\"end_ms\":2}]}]\n```"
	items, err := parseItems(raw)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, entity.QuizTypeOX, items[0].Type)
	assert.Equal(t, "O", items[0].Options[0].Label)
}

func TestParseItemsGarbage(t *testing.T) {
	_, err := parseItems("totally not json")
	assert.Error(t, err)
}
