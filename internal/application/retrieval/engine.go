package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"lecture-quiz-api/pkg/logger"
	"lecture-quiz-api/pkg/metrics"
)

// Defaults 检索参数默认值，来自配置。
type Defaults struct {
	TopKVec      int
	TopKLex      int
	FinalKRerank int
	OutK         int
	MMRLambda    float64
	KeyphraseTop int
}

// Engine 混合检索引擎：关键短语展开 → 向量/词法双路召回 →
// RRF 融合 → 重排 → MMR 多样性选择。
type Engine struct {
	embedder embedding.Embedder
	vector   VectorRepository
	lexical  LexicalStore
	reranker Reranker

	defaults Defaults
}

func NewEngine(embedder embedding.Embedder, vectorRepo VectorRepository, lexicalStore LexicalStore, reranker Reranker, defaults Defaults) *Engine {
	if defaults.TopKVec <= 0 {
		defaults.TopKVec = 12
	}
	if defaults.TopKLex <= 0 {
		defaults.TopKLex = 12
	}
	if defaults.FinalKRerank <= 0 {
		defaults.FinalKRerank = 20
	}
	if defaults.OutK <= 0 {
		defaults.OutK = 8
	}
	if defaults.MMRLambda <= 0 || defaults.MMRLambda > 1 {
		defaults.MMRLambda = 0.5
	}
	if defaults.KeyphraseTop <= 0 {
		defaults.KeyphraseTop = 5
	}
	if reranker == nil {
		reranker = NewIdentityReranker()
	}
	return &Engine{
		embedder: embedder,
		vector:   vectorRepo,
		lexical:  lexicalStore,
		reranker: reranker,
		defaults: defaults,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Retrieve 对单个命名空间执行一次混合检索。
func (e *Engine) Retrieve(ctx context.Context, in RetrieveInput) (*RetrieveOutput, error) {
	in.Namespace = strings.TrimSpace(in.Namespace)
	in.AnchorText = strings.TrimSpace(in.AnchorText)
	if err := ValidateNamespace(in.Namespace); err != nil {
		return nil, err
	}
	if in.AnchorText == "" {
		return nil, fmt.Errorf("anchor_text is required")
	}
	e.applyDefaults(&in)

	phrases := QueryPhrases(in.AnchorText, e.defaults.KeyphraseTop)

	var lists [][]Hit
	var raw []Hit

	// 向量召回：每个查询短语一次
	if e.Enabled() {
		if err := e.vector.EnsureChunkCollection(ctx); err != nil {
			return nil, err
		}
		start := time.Now()
		for _, phrase := range phrases {
			hits, err := e.vectorSearch(ctx, in.Namespace, phrase, in.TopKVec)
			if err != nil {
				return nil, fmt.Errorf("vector search %q: %w", phrase, err)
			}
			if len(hits) > 0 {
				lists = append(lists, hits)
				raw = append(raw, hits...)
			}
		}
		metrics.RetrievalDuration.WithLabelValues("vector").Observe(time.Since(start).Seconds())
		metrics.RetrievalHits.WithLabelValues("vector").Observe(float64(len(raw)))
	}

	// 词法召回：全部短语拼接后查一次
	if e.lexical != nil {
		start := time.Now()
		hits, err := e.lexicalSearch(ctx, in.Namespace, strings.Join(phrases, " "), in.TopKLex)
		if err != nil {
			return nil, fmt.Errorf("lexical search: %w", err)
		}
		if len(hits) > 0 {
			lists = append(lists, hits)
			raw = append(raw, hits...)
		}
		metrics.RetrievalDuration.WithLabelValues("lexical").Observe(time.Since(start).Seconds())
		metrics.RetrievalHits.WithLabelValues("lexical").Observe(float64(len(hits)))
	}

	fused := FuseRRF(lists)
	if len(fused) > in.FinalK {
		fused = fused[:in.FinalK]
	}

	reranked, err := e.reranker.Rerank(ctx, in.AnchorText, fused)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	selected := SelectMMR(reranked, in.OutK, in.MMRLambda)

	logger.Debug(ctx, "混合检索完成",
		"namespace", in.Namespace,
		"queries", len(phrases),
		"fused", len(fused),
		"selected", len(selected))

	out := &RetrieveOutput{Hits: selected, Queries: phrases}
	if in.IncludeRaw {
		out.RawHits = raw
	}
	return out, nil
}

func (e *Engine) applyDefaults(in *RetrieveInput) {
	if in.TopKVec <= 0 {
		in.TopKVec = e.defaults.TopKVec
	}
	if in.TopKLex <= 0 {
		in.TopKLex = e.defaults.TopKLex
	}
	if in.FinalK <= 0 {
		in.FinalK = e.defaults.FinalKRerank
	}
	if in.OutK <= 0 {
		in.OutK = e.defaults.OutK
	}
	if in.MMRLambda <= 0 || in.MMRLambda > 1 {
		in.MMRLambda = e.defaults.MMRLambda
	}
}

func (e *Engine) vectorSearch(ctx context.Context, namespace, query string, topK int) ([]Hit, error) {
	emb, err := e.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	results, err := e.vector.Search(ctx, &VectorSearchParams{
		Namespace:   namespace,
		QueryVector: emb,
		TopK:        topK,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		hits = append(hits, Hit{
			Chunk: chunkFromVectorResult(namespace, r),
			// 将“距离”转换为更直观的相似度（COSINE: distance=1-cos）
			Score: 1 - float64(r.Score),
			Mode:  "vector",
		})
	}
	return hits, nil
}

func (e *Engine) lexicalSearch(ctx context.Context, namespace, query string, topK int) ([]Hit, error) {
	blob, err := e.lexical.Get(ctx, namespace)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		return nil, nil
	}
	idx, err := UnmarshalBM25Index(blob)
	if err != nil {
		return nil, fmt.Errorf("decode lexical index: %w", err)
	}
	return idx.Search(query, topK), nil
}

func (e *Engine) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if e == nil || e.embedder == nil {
		return nil, ErrVectorDisabled
	}
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("query is empty")
	}
	v64, err := e.embedder.EmbedStrings(ctx, []string{q})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}
