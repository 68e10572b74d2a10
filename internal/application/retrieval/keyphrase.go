package retrieval

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// 高频功能词，不参与关键短语统计
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {},
	"in": {}, "on": {}, "at": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "it": {}, "this": {}, "that": {}, "for": {}, "with": {}, "as": {},
	"by": {}, "from": {}, "we": {}, "you": {}, "they": {}, "so": {}, "but": {},
	"的": {}, "了": {}, "是": {}, "在": {}, "和": {}, "就": {}, "都": {},
	"这": {}, "那": {}, "有": {}, "我": {}, "你": {}, "他": {}, "它": {},
}

// ExtractKeyphrases 从锚点文本抽取至多 topN 个查询短语。
// 词频打分的一元/二元组合，二元短语得分为成员词频之和，
// 偏向高频且更长的短语。抽不出来时由调用方回退到原文。
func ExtractKeyphrases(text string, topN int) []string {
	if topN <= 0 {
		topN = 5
	}
	tokens := Tokenize(text)
	content := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if _, ok := stopwords[t]; ok {
			continue
		}
		if utf8.RuneCountInString(t) < 2 && !isHanToken(t) {
			continue
		}
		content = append(content, t)
	}
	if len(content) == 0 {
		return nil
	}

	freq := make(map[string]int, len(content))
	for _, t := range content {
		freq[t]++
	}

	type cand struct {
		phrase string
		score  int
		order  int
	}
	seen := make(map[string]struct{})
	cands := make([]cand, 0, len(content)*2)

	for i, t := range content {
		if _, ok := seen[t]; !ok {
			seen[t] = struct{}{}
			cands = append(cands, cand{phrase: t, score: freq[t], order: i})
		}
		if i+1 < len(content) {
			bigram := joinPhrase(content[i], content[i+1])
			if _, ok := seen[bigram]; !ok {
				seen[bigram] = struct{}{}
				cands = append(cands, cand{phrase: bigram, score: freq[content[i]] + freq[content[i+1]], order: i})
			}
		}
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].order < cands[j].order
	})

	out := make([]string, 0, topN)
	for _, c := range cands {
		if len(out) >= topN {
			break
		}
		out = append(out, c.phrase)
	}
	return out
}

func isHanToken(t string) bool {
	r, size := utf8.DecodeRuneInString(t)
	return size == len(t) && r >= 0x4E00 && r <= 0x9FFF
}

// joinPhrase 拉丁词之间补空格，CJK 直接拼接
func joinPhrase(a, b string) string {
	if isHanToken(a) && isHanToken(b) {
		return a + b
	}
	return a + " " + b
}

// QueryPhrases 关键短语加回退：抽取为空时用原文本身做唯一查询。
func QueryPhrases(anchorText string, topN int) []string {
	anchorText = strings.TrimSpace(anchorText)
	if anchorText == "" {
		return nil
	}
	phrases := ExtractKeyphrases(anchorText, topN)
	if len(phrases) == 0 {
		return []string{anchorText}
	}
	return phrases
}
