package dto

import (
	"encoding/json"
	"time"

	"lecture-quiz-api/internal/application/quiz"
	"lecture-quiz-api/internal/domain/entity"
)

// IntervalDTO 关注时间段
type IntervalDTO struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// QuizFromIntervalsRequest 按时间区间出题请求
type QuizFromIntervalsRequest struct {
	LectureID string        `json:"lecture_id" binding:"required"`
	UserID    string        `json:"user_id"`
	VTTText   string        `json:"vtt_text" binding:"required"`
	Intervals []IntervalDTO `json:"intervals"`
}

// ToIntervals 转换为领域时间段
func (r *QuizFromIntervalsRequest) ToIntervals() []entity.Interval {
	intervals := make([]entity.Interval, 0, len(r.Intervals))
	for _, iv := range r.Intervals {
		intervals = append(intervals, entity.Interval{StartMs: iv.StartMs, EndMs: iv.EndMs})
	}
	return intervals
}

// QuizFromLectureRequest 整讲检索出题请求。
// 携带 vtt_text 时先确保讲座已索引再检索。
type QuizFromLectureRequest struct {
	LectureID  string `json:"lecture_id" binding:"required"`
	UserID     string `json:"user_id"`
	AnchorText string `json:"anchor_text" binding:"required"`
	VTTText    string `json:"vtt_text"`
}

// QuizItemDTO 一道题目
type QuizItemDTO struct {
	Type     string            `json:"type"`
	Question string            `json:"question"`
	Options  []QuizOptionDTO   `json:"options,omitempty"`
	Answer   string            `json:"answer"`
	Evidence []QuizEvidenceDTO `json:"evidence"`
}

// QuizOptionDTO 选项
type QuizOptionDTO struct {
	Label string `json:"label"`
	Text  string `json:"text,omitempty"`
}

// QuizEvidenceDTO 证据时间段
type QuizEvidenceDTO struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// QuizRecordDTO 历史题目记录
type QuizRecordDTO struct {
	ID        string            `json:"id"`
	Namespace string            `json:"namespace"`
	UserID    string            `json:"user_id,omitempty"`
	Type      string            `json:"type"`
	Question  string            `json:"question"`
	Options   []QuizOptionDTO   `json:"options,omitempty"`
	Answer    string            `json:"answer"`
	Evidence  []QuizEvidenceDTO `json:"evidence,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// QuizHistoryResponse 历史题目查询响应
type QuizHistoryResponse struct {
	Namespace string          `json:"namespace"`
	Records   []QuizRecordDTO `json:"records"`
}

// ToQuizHistoryResponse 把落库记录转为响应结构，JSON 字段解析失败时留空
func ToQuizHistoryResponse(namespace string, records []*entity.QuizRecord) QuizHistoryResponse {
	out := QuizHistoryResponse{Namespace: namespace, Records: make([]QuizRecordDTO, 0, len(records))}
	for _, r := range records {
		if r == nil {
			continue
		}
		d := QuizRecordDTO{
			ID:        r.ID,
			Namespace: r.Namespace,
			UserID:    r.UserID,
			Type:      r.Type,
			Question:  r.Question,
			Answer:    r.Answer,
			CreatedAt: r.CreatedAt,
		}
		if r.OptionsJSON != "" {
			_ = json.Unmarshal([]byte(r.OptionsJSON), &d.Options)
		}
		if r.EvidenceJSON != "" {
			_ = json.Unmarshal([]byte(r.EvidenceJSON), &d.Evidence)
		}
		out.Records = append(out.Records, d)
	}
	return out
}

// QuizResponse 出题响应
type QuizResponse struct {
	Status    string        `json:"status"`
	Requested int           `json:"requested"`
	Attempts  int           `json:"attempts"`
	Items     []QuizItemDTO `json:"items"`
	RawOutput string        `json:"raw_output,omitempty"`
}

// ToQuizResponse 将出题结果转换为响应
func ToQuizResponse(result *quiz.Result, requested int) QuizResponse {
	items := make([]QuizItemDTO, 0, len(result.Items))
	for _, item := range result.Items {
		options := make([]QuizOptionDTO, 0, len(item.Options))
		for _, opt := range item.Options {
			options = append(options, QuizOptionDTO{Label: opt.Label, Text: opt.Text})
		}
		evidence := make([]QuizEvidenceDTO, 0, len(item.Evidence))
		for _, evi := range item.Evidence {
			evidence = append(evidence, QuizEvidenceDTO{StartMs: evi.StartMs, EndMs: evi.EndMs})
		}
		items = append(items, QuizItemDTO{
			Type:     string(item.Type),
			Question: item.Question,
			Options:  options,
			Answer:   item.Answer,
			Evidence: evidence,
		})
	}
	return QuizResponse{
		Status:    result.Status,
		Requested: requested,
		Attempts:  result.Attempts,
		Items:     items,
		RawOutput: result.RawOutput,
	}
}
