package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"lecture-quiz-api/internal/domain/entity"
	"lecture-quiz-api/internal/infrastructure/llm"
	"lecture-quiz-api/pkg/logger"
	"lecture-quiz-api/pkg/metrics"
)

// GenerateInput 单次生成调用的输入。
type GenerateInput struct {
	Context string
	Spec    ItemSpec

	Provider    string
	Model       string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
}

// GenerateOutput 单次生成的候选题与原始输出。
// 解析失败不视为错误：Items 为空，RawOutput 供诊断，由重试环决定后续。
type GenerateOutput struct {
	Items     []entity.QuizItem
	RawOutput string
}

// Generator 调用 LLM 产出候选题。
type Generator struct {
	factory *llm.EinoFactory
}

func NewGenerator(factory *llm.EinoFactory) *Generator {
	return &Generator{factory: factory}
}

func (g *Generator) Generate(ctx context.Context, in *GenerateInput) (*GenerateOutput, error) {
	if g == nil || g.factory == nil {
		return nil, fmt.Errorf("llm factory not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	if strings.TrimSpace(in.Context) == "" {
		return nil, fmt.Errorf("context is required")
	}

	chatModel, err := g.factory.Get(ctx, strings.TrimSpace(in.Provider))
	if err != nil {
		return nil, err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(BuildUserPrompt(in.Context, in.Spec)),
	}

	provider := strings.TrimSpace(in.Provider)
	modelName := strings.TrimSpace(in.Model)

	start := time.Now()
	outMsg, err := chatModel.Generate(ctx, msgs, buildModelOptions(in)...)
	metrics.LLMCallDuration.WithLabelValues(provider, modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(provider, modelName, "error").Inc()
		return nil, err
	}
	metrics.LLMCallTotal.WithLabelValues(provider, modelName, "success").Inc()
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	if outMsg.ResponseMeta != nil && outMsg.ResponseMeta.Usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "prompt").Add(float64(outMsg.ResponseMeta.Usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(provider, modelName, "completion").Add(float64(outMsg.ResponseMeta.Usage.CompletionTokens))
	}

	raw := strings.TrimSpace(outMsg.Content)
	items, parseErr := parseItems(raw)
	if parseErr != nil {
		logger.Warn(ctx, "模型输出不是合法 JSON，返回空候选集",
			"error", parseErr.Error(), "raw_len", len(raw))
		return &GenerateOutput{Items: nil, RawOutput: raw}, nil
	}
	return &GenerateOutput{Items: items, RawOutput: raw}, nil
}

// parseItems 解析候选题数组。Option 的反序列化兼容裸字符串选项。
func parseItems(raw string) ([]entity.QuizItem, error) {
	extracted := extractJSONArray(raw)
	if extracted == "" {
		return nil, fmt.Errorf("empty output")
	}
	var items []entity.QuizItem
	if err := json.Unmarshal([]byte(extracted), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func buildModelOptions(in *GenerateInput) []model.Option {
	var opts []model.Option
	if in.Temperature != nil {
		opts = append(opts, model.WithTemperature(*in.Temperature))
	}
	if in.TopP != nil {
		opts = append(opts, model.WithTopP(*in.TopP))
	}
	if in.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*in.MaxTokens))
	}
	if m := strings.TrimSpace(in.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	return opts
}
