package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lecture-quiz-api/internal/application/quiz"
	"lecture-quiz-api/internal/config"
	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/interfaces/http/dto"
)

const testVTT = `WEBVTT

00:00:00.000 --> 00:00:02.000
牛顿第一定律：静止的物体保持静止。

00:00:02.000 --> 00:00:04.000
这就是惯性。
`

type stubGenerator struct {
	items []entity.QuizItem
}

func (s *stubGenerator) Generate(context.Context, *quiz.GenerateInput) (*quiz.GenerateOutput, error) {
	return &quiz.GenerateOutput{Items: s.items, RawOutput: "[]"}, nil
}

func validItems(n int) []entity.QuizItem {
	items := make([]entity.QuizItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, entity.QuizItem{
			Type:     entity.QuizTypeMCQ,
			Question: fmt.Sprintf("测试题目 %d", i),
			Options: []entity.Option{
				{Label: "A", Text: "甲"}, {Label: "B", Text: "乙"},
				{Label: "C", Text: "丙"}, {Label: "D", Text: "丁"},
			},
			Answer:   "A",
			Evidence: []entity.Evidence{{StartMs: 500, EndMs: 1500}},
		})
	}
	return items
}

func testQuizConfig() *config.Config {
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

func newQuizHandler(gen quiz.CandidateGenerator) *QuizHandler {
	svc := quiz.NewService(gen, nil, nil, testQuizConfig())
	return NewQuizHandler(svc, nil, 5)
}

func postJSON(t *testing.T, handlerFn gin.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	_, engine := gin.CreateTestContext(w)
	engine.POST(path, handlerFn)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
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
	for _, r := range m.records {
		if r.Namespace != namespace {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, r)
	}
	return out, nil
}

func TestHistoryOK(t *testing.T) {
	repo := &memQuizRepo{records: []*entity.QuizRecord{
		{
			ID:           "r-1",
			Namespace:    "lecture_lec-1",
			UserID:       "u-1",
			Type:         "mcq",
			Question:     "测试题目 0",
			OptionsJSON:  `[{"label":"A","text":"甲"},{"label":"B","text":"乙"}]`,
			Answer:       "A",
			EvidenceJSON: `[{"start_ms":500,"end_ms":1500}]`,
		},
		{ID: "r-2", Namespace: "lecture_other", Type: "ox", Question: "其他讲座的题目", Answer: "O"},
	}}
	svc := quiz.NewService(&stubGenerator{}, nil, repo, testQuizConfig())
	h := NewQuizHandler(svc, nil, 5)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	_, engine := gin.CreateTestContext(w)
	engine.GET("/v1/lectures/:lecture_id/quizzes", h.History)
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/lectures/lec-1/quizzes?limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.QuizHistoryResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "lecture_lec-1", resp.Data.Namespace)
	require.Len(t, resp.Data.Records, 1)
	assert.Equal(t, "r-1", resp.Data.Records[0].ID)
	require.Len(t, resp.Data.Records[0].Options, 2)
	assert.Equal(t, "A", resp.Data.Records[0].Options[0].Label)
	require.Len(t, resp.Data.Records[0].Evidence, 1)
	assert.Equal(t, int64(500), resp.Data.Records[0].Evidence[0].StartMs)
}

func TestFromIntervalsOK(t *testing.T) {
	h := newQuizHandler(&stubGenerator{items: validItems(5)})

	w := postJSON(t, h.FromIntervals, "/v1/quiz/from-intervals", dto.QuizFromIntervalsRequest{
		LectureID: "lec-1",
		UserID:    "u-1",
		VTTText:   testVTT,
		Intervals: []dto.IntervalDTO{{StartMs: 0, EndMs: 4000}},
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.QuizResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, quiz.StatusOK, resp.Data.Status)
	assert.Equal(t, 5, resp.Data.Requested)
	assert.Len(t, resp.Data.Items, 5)
	assert.Empty(t, resp.Data.RawOutput)
}

func TestFromIntervalsPartial(t *testing.T) {
	h := newQuizHandler(&stubGenerator{items: validItems(2)})

	w := postJSON(t, h.FromIntervals, "/v1/quiz/from-intervals", dto.QuizFromIntervalsRequest{
		LectureID: "lec-1",
		VTTText:   testVTT,
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response[dto.QuizResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, quiz.StatusPartial, resp.Data.Status)
	assert.Len(t, resp.Data.Items, 2)
}

func TestFromIntervalsMissingBody(t *testing.T) {
	h := newQuizHandler(&stubGenerator{items: validItems(5)})

	w := postJSON(t, h.FromIntervals, "/v1/quiz/from-intervals", gin.H{
		"lecture_id": "lec-1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFromIntervalsNoContent(t *testing.T) {
	h := newQuizHandler(&stubGenerator{items: validItems(5)})

	w := postJSON(t, h.FromIntervals, "/v1/quiz/from-intervals", dto.QuizFromIntervalsRequest{
		LectureID: "lec-1",
		VTTText:   "WEBVTT\n\n<00:00:00.000>[music]\n",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
