package retrieval

import (
	"encoding/json"
	"math"
	"sort"

	"lecture-quiz-api/internal/domain/entity"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// lexDoc 词法索引里的一篇文档（一个 chunk）。
type lexDoc struct {
	ChunkID string         `json:"chunk_id"`
	Text    string         `json:"text"`
	StartMs int64          `json:"start_ms"`
	EndMs   int64          `json:"end_ms"`
	TF      map[string]int `json:"tf"`
	Length  int            `json:"length"`
}

// BM25Index 基于词频的排序结构，每个命名空间一份，重建时整体替换。
// 整体可 JSON 序列化，由 LexicalStore 负责存取。
type BM25Index struct {
	Namespace string         `json:"namespace"`
	Docs      []lexDoc       `json:"docs"`
	DF        map[string]int `json:"df"`
	AvgLen    float64        `json:"avg_len"`
}

// BuildBM25Index 对一组 chunk 全量构建词法索引。
func BuildBM25Index(namespace string, chunks []entity.Chunk) *BM25Index {
	idx := &BM25Index{
		Namespace: namespace,
		Docs:      make([]lexDoc, 0, len(chunks)),
		DF:        make(map[string]int),
	}
	totalLen := 0
	for _, c := range chunks {
		tokens := Tokenize(c.Text)
		tf := make(map[string]int, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		for t := range tf {
			idx.DF[t]++
		}
		idx.Docs = append(idx.Docs, lexDoc{
			ChunkID: c.ChunkID,
			Text:    c.Text,
			StartMs: c.StartMs,
			EndMs:   c.EndMs,
			TF:      tf,
			Length:  len(tokens),
		})
		totalLen += len(tokens)
	}
	if len(idx.Docs) > 0 {
		idx.AvgLen = float64(totalLen) / float64(len(idx.Docs))
	}
	return idx
}

// Search 按 BM25 打分返回前 k 条命中，得分为 0 的文档不返回。
func (idx *BM25Index) Search(query string, k int) []Hit {
	if idx == nil || len(idx.Docs) == 0 || k <= 0 {
		return nil
	}
	qTokens := Tokenize(query)
	if len(qTokens) == 0 {
		return nil
	}

	n := float64(len(idx.Docs))
	type scored struct {
		doc   int
		score float64
	}
	results := make([]scored, 0, len(idx.Docs))
	for d := range idx.Docs {
		doc := &idx.Docs[d]
		var score float64
		for _, q := range qTokens {
			tf := doc.TF[q]
			if tf == 0 {
				continue
			}
			df := float64(idx.DF[q])
			idf := math.Log(1 + (n-df+0.5)/(df+0.5))
			norm := 1 - bm25B + bm25B*float64(doc.Length)/idx.AvgLen
			score += idf * float64(tf) * (bm25K1 + 1) / (float64(tf) + bm25K1*norm)
		}
		if score > 0 {
			results = append(results, scored{doc: d, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].score > results[j].score })
	if len(results) > k {
		results = results[:k]
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		doc := idx.Docs[r.doc]
		hits = append(hits, Hit{
			Chunk: entity.Chunk{
				ChunkID:   doc.ChunkID,
				Text:      doc.Text,
				StartMs:   doc.StartMs,
				EndMs:     doc.EndMs,
				Namespace: idx.Namespace,
			},
			Score: r.score,
			Mode:  "lexical",
		})
	}
	return hits
}

// Marshal 序列化为存储 blob。
func (idx *BM25Index) Marshal() ([]byte, error) {
	return json.Marshal(idx)
}

// UnmarshalBM25Index 从存储 blob 还原索引。
func UnmarshalBM25Index(blob []byte) (*BM25Index, error) {
	var idx BM25Index
	if err := json.Unmarshal(blob, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}
