// Package caption 字幕解析与区间切片
package caption

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"lecture-quiz-api/internal/domain/entity"
)

var (
	// 时间戳兼容点号与逗号两种毫秒分隔
	tsPattern    = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2})[.,](\d{3})`)
	noisePattern = regexp.MustCompile(`(?i)\[(?:music|applause|laughter|sound|박수|웃음).*?\]`)
	tagPattern   = regexp.MustCompile(`<.*?>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// ParseTimestamp 把 HH:MM:SS.mmm 转为毫秒，格式不匹配返回错误
func ParseTimestamp(ts string) (int64, error) {
	m := tsPattern.FindStringSubmatch(ts)
	if m == nil {
		return 0, fmt.Errorf("时间戳格式错误: %s", ts)
	}
	h, _ := strconv.ParseInt(m[1], 10, 64)
	min, _ := strconv.ParseInt(m[2], 10, 64)
	s, _ := strconv.ParseInt(m[3], 10, 64)
	ms, _ := strconv.ParseInt(m[4], 10, 64)
	return ((h*60+min)*60+s)*1000 + ms, nil
}

// FormatTimestamp 把毫秒转回 HH:MM:SS.mmm
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms%1000)
}

// Parse 解析 WebVTT 风格字幕文本。
// 坏行直接跳过，解析过程不报错，只是产出更少的字幕。
func Parse(raw string) []entity.Caption {
	lines := strings.Split(raw, "\n")
	for i := range lines {
		lines[i] = strings.Trim(lines[i], "\uFEFF \r")
	}

	caps := make([]entity.Caption, 0, len(lines)/3)
	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !strings.Contains(line, "-->") {
			i++
			continue
		}

		parts := strings.SplitN(line, "-->", 2)
		start, err1 := ParseTimestamp(strings.TrimSpace(parts[0]))
		// 箭头右侧可能跟定位参数，只取第一个 token
		right := strings.Fields(strings.TrimSpace(parts[1]))
		if len(right) == 0 {
			i++
			continue
		}
		end, err2 := ParseTimestamp(right[0])
		if err1 != nil || err2 != nil {
			i++
			continue
		}

		i++
		var buf []string
		for i < len(lines) && lines[i] != "" && !strings.Contains(lines[i], "-->") {
			buf = append(buf, strings.TrimSpace(lines[i]))
			i++
		}

		text := cleanText(strings.Join(buf, " "))
		if text != "" && start < end {
			caps = append(caps, entity.Caption{StartMs: start, EndMs: end, Text: text})
		}
	}
	return caps
}

// cleanText 去除标签、括号内的音效提示并压缩空白
func cleanText(text string) string {
	text = noisePattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
