package retrieval

// SplitRunes 按固定 rune 数切分长文本，末块允许不足。
func SplitRunes(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	out := make([]string, 0, len(runes)/chunkSize+1)
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}
