package domain

import "strings"

// NormalizeKey prepares a pinyin key for segmentation:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - drops apostrophe syllable separators ("xi'an" -> "xian")
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return ""
	}
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "'", "")
}
