package quiz

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// extractJSONArray 尝试从模型输出中截取第一个完整 JSON 数组。
// 容错逻辑：模型可能在 JSON 前后夹杂说明文字或代码围栏。
func extractJSONArray(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return raw
	}

	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		raw = raw[start : end+1]
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err == nil {
		if d, ok := tok.(json.Delim); ok && d == '[' {
			return raw
		}
	}

	// 兜底：消费到 EOF 确认可解析，否则原样返回交由上层报告
	dec = json.NewDecoder(strings.NewReader(raw))
	for {
		_, e := dec.Token()
		if e != nil {
			if errors.Is(e, io.EOF) {
				break
			}
			return strings.TrimSpace(s)
		}
	}
	return raw
}
