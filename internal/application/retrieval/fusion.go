package retrieval

import "sort"

// rrfK 倒数排名融合常数
const rrfK = 60

// FuseRRF 对多路有序命中列表做倒数排名融合。
// 每个列表按位置给出 rank 1..N，chunk 在 rank r 处贡献 1/(k+r)，
// 跨列表累加后按 ChunkID 去重。向量与词法的原始得分量纲不可比，
// 按 rank 融合可以避免单一信号独大。
// 排序稳定：得分相同的按首次出现顺序保留。
func FuseRRF(lists [][]Hit) []FusedHit {
	type acc struct {
		hit   FusedHit
		order int
	}
	scores := make(map[string]*acc)
	next := 0

	for _, list := range lists {
		for rank, h := range list {
			contribution := 1.0 / float64(rrfK+rank+1)
			if a, ok := scores[h.Chunk.ChunkID]; ok {
				a.hit.Score += contribution
				continue
			}
			scores[h.Chunk.ChunkID] = &acc{
				hit:   FusedHit{Chunk: h.Chunk, Score: contribution},
				order: next,
			}
			next++
		}
	}

	fused := make([]*acc, 0, len(scores))
	for _, a := range scores {
		fused = append(fused, a)
	}
	sort.SliceStable(fused, func(i, j int) bool {
		if fused[i].hit.Score != fused[j].hit.Score {
			return fused[i].hit.Score > fused[j].hit.Score
		}
		return fused[i].order < fused[j].order
	})

	out := make([]FusedHit, 0, len(fused))
	for _, a := range fused {
		out = append(out, a.hit)
	}
	return out
}
