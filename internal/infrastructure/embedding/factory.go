package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"

	"lecture-quiz-api/internal/config"
	"lecture-quiz-api/pkg/metrics"
)

// NewEmbedder 按 provider 选择实现：
//   - openai: Eino 的 OpenAI 适配器
//   - http:   自托管服务的 HTTP 客户端，包一层 Embedder 适配
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	switch cfg.Provider {
	case "", "openai":
		return newInstrumented(ctx, "openai", func() (embedding.Embedder, error) {
			return NewEinoEmbedder(ctx, cfg)
		})
	case "http":
		return &httpEmbedder{client: NewClient(cfg)}, nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
}

func newInstrumented(_ context.Context, provider string, build func() (embedding.Embedder, error)) (embedding.Embedder, error) {
	inner, err := build()
	if err != nil {
		return nil, err
	}
	return &instrumentedEmbedder{provider: provider, inner: inner}, nil
}

// instrumentedEmbedder 在真实 Embedder 外补调用计数
type instrumentedEmbedder struct {
	provider string
	inner    embedding.Embedder
}

func (e *instrumentedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	out, err := e.inner.EmbedStrings(ctx, texts, opts...)
	if err != nil {
		metrics.EmbeddingCallTotal.WithLabelValues(e.provider, "error").Inc()
		return nil, err
	}
	metrics.EmbeddingCallTotal.WithLabelValues(e.provider, "success").Inc()
	return out, nil
}

// httpEmbedder 把 HTTP 客户端适配成 Eino Embedder 接口
type httpEmbedder struct {
	client *Client
}

func (e *httpEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	v32, err := e.client.Embed(ctx, texts)
	if err != nil {
		metrics.EmbeddingCallTotal.WithLabelValues("http", "error").Inc()
		return nil, err
	}
	metrics.EmbeddingCallTotal.WithLabelValues("http", "success").Inc()
	out := make([][]float64, len(v32))
	for i, vec := range v32 {
		f64 := make([]float64, len(vec))
		for j, x := range vec {
			f64[j] = float64(x)
		}
		out[i] = f64
	}
	return out, nil
}
