package retrieval

import (
	"fmt"
	"strings"

	"lecture-quiz-api/internal/domain/entity"
)

// FormatHitsContext 把检索命中拼成生成用上下文，每行带毫秒时间范围，
// 生成侧据此引用证据时间码。
func FormatHitsContext(hits []FusedHit) string {
	var sb strings.Builder
	for _, h := range hits {
		sb.WriteString(fmt.Sprintf("- (%d,%d) %s\n", h.Chunk.StartMs, h.Chunk.EndMs, h.Chunk.Text))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCaptionsContext 把字幕序列拼成同样格式的上下文。
func FormatCaptionsContext(caps []entity.Caption) string {
	var sb strings.Builder
	for _, c := range caps {
		sb.WriteString(fmt.Sprintf("- (%d,%d) %s\n", c.StartMs, c.EndMs, c.Text))
	}
	return strings.TrimRight(sb.String(), "\n")
}
