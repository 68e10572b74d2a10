package caption

import (
	"sort"
	"unicode/utf8"

	"lecture-quiz-api/internal/domain/entity"
)

// SliceByIntervals 按关注区间挑选字幕。
// 每个区间向两侧扩 padMs（下界钳到 0），收集与扩展窗口有时间重叠的字幕，
// 合并排序去重后按字符预算截断。预算是硬性字符上限，不是条数上限。
func SliceByIntervals(caps []entity.Caption, intervals []entity.Interval, padMs int64, maxChars int) []entity.Caption {
	var picked []entity.Caption
	for _, iv := range intervals {
		ws := iv.StartMs - padMs
		if ws < 0 {
			ws = 0
		}
		we := iv.EndMs + padMs
		for _, c := range caps {
			if c.Overlaps(ws, we) {
				picked = append(picked, c)
			}
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		if picked[i].StartMs != picked[j].StartMs {
			return picked[i].StartMs < picked[j].StartMs
		}
		return picked[i].EndMs < picked[j].EndMs
	})

	type key struct {
		start, end int64
		text       string
	}
	seen := make(map[key]struct{}, len(picked))
	out := make([]entity.Caption, 0, len(picked))
	total := 0
	for _, c := range picked {
		k := key{c.StartMs, c.EndMs, c.Text}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		n := utf8.RuneCountInString(c.Text)
		if total+n > maxChars {
			break
		}
		out = append(out, c)
		total += n
	}
	return out
}

// TruncateToBudget 把完整字幕集按字符预算截断，供无区间命中时兜底
func TruncateToBudget(caps []entity.Caption, maxChars int) []entity.Caption {
	out := make([]entity.Caption, 0, len(caps))
	total := 0
	for _, c := range caps {
		n := utf8.RuneCountInString(c.Text)
		if total+n > maxChars {
			break
		}
		out = append(out, c)
		total += n
	}
	return out
}
