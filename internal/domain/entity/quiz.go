package entity

import (
	"encoding/json"
	"strings"
)

// QuizType 题目类型
type QuizType string

const (
	QuizTypeMCQ QuizType = "MCQ"
	QuizTypeOX  QuizType = "OX"
)

// Option 题目选项。模型输出可能是 {label,text} 对象，也可能是裸字符串；
// 反序列化时统一提升为 {label: 值, text: ""}，核心逻辑不再处理两种形态。
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// UnmarshalJSON 兼容裸字符串选项
func (o *Option) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		o.Label = strings.TrimSpace(s)
		o.Text = ""
		return nil
	}

	type plain Option
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	o.Label = strings.TrimSpace(p.Label)
	o.Text = p.Text
	return nil
}

// Evidence 题目引用的字幕时间段证据
type Evidence struct {
	StartMs int64 `json:"start_ms"`
	EndMs   int64 `json:"end_ms"`
}

// QuizItem 一道候选/已验证题目
type QuizItem struct {
	Type     QuizType   `json:"type"`
	Question string     `json:"question"`
	Options  []Option   `json:"options"`
	Answer   string     `json:"answer"`
	Evidence []Evidence `json:"evidence"`
}

// Labels 返回选项 label 列表（保持声明顺序）
func (q *QuizItem) Labels() []string {
	labels := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		labels = append(labels, opt.Label)
	}
	return labels
}
