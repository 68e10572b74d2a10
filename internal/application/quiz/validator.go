package quiz

import (
	"strings"

	"lecture-quiz-api/internal/domain/entity"
)

var mcqLabels = []string{"A", "B", "C", "D"}

// ValidateItem 逐项检查候选题的结构与证据约束：
// 类型合法、问题非空、选项形态与类型严格匹配、答案在选项内、
// 至少一条 evidence 与上下文字幕存在时间重叠。
func ValidateItem(item *entity.QuizItem, caps []entity.Caption) bool {
	if item == nil {
		return false
	}
	if item.Type != entity.QuizTypeMCQ && item.Type != entity.QuizTypeOX {
		return false
	}
	if strings.TrimSpace(item.Question) == "" {
		return false
	}

	labels := item.Labels()
	switch item.Type {
	case entity.QuizTypeMCQ:
		if len(labels) != len(mcqLabels) {
			return false
		}
		for i, l := range mcqLabels {
			if labels[i] != l {
				return false
			}
		}
		if !containsLabel(labels, item.Answer) {
			return false
		}
	case entity.QuizTypeOX:
		if !isOXLabelSet(labels) {
			return false
		}
		if item.Answer != "O" && item.Answer != "X" {
			return false
		}
	}

	if len(item.Evidence) == 0 {
		return false
	}
	for _, evi := range item.Evidence {
		for _, c := range caps {
			if c.Overlaps(evi.StartMs, evi.EndMs) {
				return true
			}
		}
	}
	return false
}

// FilterValid 过滤候选题并按规范化问题文本去重。
// seen 跨轮次共享，重试中已接收的问题不会重复入选。
func FilterValid(items []entity.QuizItem, caps []entity.Caption, seen map[string]struct{}) []entity.QuizItem {
	if seen == nil {
		seen = make(map[string]struct{})
	}
	out := make([]entity.QuizItem, 0, len(items))
	for i := range items {
		q := strings.TrimSpace(items[i].Question)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		if !ValidateItem(&items[i], caps) {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, items[i])
	}
	return out
}

func containsLabel(labels []string, answer string) bool {
	for _, l := range labels {
		if l == answer {
			return true
		}
	}
	return false
}

// isOXLabelSet 判断 label 集合是否恰好为 {O, X}，顺序不限
func isOXLabelSet(labels []string) bool {
	if len(labels) != 2 {
		return false
	}
	seenO, seenX := false, false
	for _, l := range labels {
		switch l {
		case "O":
			seenO = true
		case "X":
			seenX = true
		default:
			return false
		}
	}
	return seenO && seenX
}
