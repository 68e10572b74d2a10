package retrieval

// SelectMMR 最大边际相关选择：每轮挑 λ*relevance − (1−λ)*maxSim 最大的候选，
// 直到取满 outK 或候选耗尽。避免返回同一时间段的近重复 chunk。
// 相似度用 token 集合的 Jaccard 系数。
func SelectMMR(candidates []FusedHit, outK int, lambda float64) []FusedHit {
	if outK <= 0 || len(candidates) == 0 {
		return nil
	}
	if len(candidates) <= outK {
		out := make([]FusedHit, len(candidates))
		copy(out, candidates)
		return out
	}

	tokenSets := make([]map[string]struct{}, len(candidates))
	for i, c := range candidates {
		set := make(map[string]struct{})
		for _, t := range Tokenize(c.Chunk.Text) {
			set[t] = struct{}{}
		}
		tokenSets[i] = set
	}

	// 相关性按最大值归一到 [0,1]。RRF 融合分通常只有 0.01~0.05 量级，
	// 不归一的话 λ 权衡会退化成纯去重。
	maxScore := 0.0
	for _, c := range candidates {
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}
	rel := make([]float64, len(candidates))
	for i, c := range candidates {
		if maxScore > 0 {
			rel[i] = c.Score / maxScore
		}
	}

	picked := make([]FusedHit, 0, outK)
	pickedSets := make([]map[string]struct{}, 0, outK)
	used := make([]bool, len(candidates))

	for len(picked) < outK {
		best := -1
		bestScore := 0.0
		for i := range candidates {
			if used[i] {
				continue
			}
			maxSim := 0.0
			for _, ps := range pickedSets {
				if sim := jaccard(tokenSets[i], ps); sim > maxSim {
					maxSim = sim
				}
			}
			score := lambda*rel[i] - (1-lambda)*maxSim
			if best == -1 || score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best == -1 {
			break
		}
		used[best] = true
		picked = append(picked, candidates[best])
		pickedSets = append(pickedSets, tokenSets[best])
	}
	return picked
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
