// Package quiz 题目生成、校验与有界重试
package quiz

import (
	"fmt"
	"strings"
)

const systemPrompt = "你是教育测验出题器。只依据提供的上下文（字幕）出题，禁止使用外部知识。" +
	"每道题都必须包含 evidence（字幕时间码）。输出只能是 JSON 数组。"

const userTemplate = `[上下文]
以下是课程字幕片段，每行格式为 (start_ms,end_ms) text。

%s

[要求]
- 共 %d 道题：判断题（OX）%d 道，四选一选择题（MCQ）%d 道
- 选项与答案必须源自上下文（允许同义改写，禁止捏造）
- 不出模糊题、常识题，只围绕上下文中明确的事实、定义、数值、步骤
- 每道题必须带 evidence: [{"start_ms":..., "end_ms":...}]，至少 1 条
- JSON 结构：
[
  {
    "type": "MCQ" | "OX",
    "question": "....",
    "options": [{"label":"A","text":"..."}, ...],  // OX 只有 O/X 两个选项
    "answer": "A" | "B" | "C" | "D" | "O" | "X",
    "evidence": [{"start_ms":12345,"end_ms":15678}]
  }, ...
]
- 用%s作答。`

// ItemSpec 单次生成的题量要求。
type ItemSpec struct {
	Total    int
	MCQCount int
	OXCount  int
	Language string
}

// BuildUserPrompt 组装出题提示词，上下文原样嵌入。
func BuildUserPrompt(context string, spec ItemSpec) string {
	lang := strings.TrimSpace(spec.Language)
	if lang == "" {
		lang = "中文"
	}
	return fmt.Sprintf(userTemplate, context, spec.Total, spec.OXCount, spec.MCQCount, lang)
}
