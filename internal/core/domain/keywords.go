package domain

import "strings"

// HiddenKeywords are title and comment fragments that keep a submission off
// the public map.
var HiddenKeywords = []string{
	"猛犬危険",
	"散歩好きの皆",
	"慶應生は勉強",
	"逃げよう",
	"神だのみ",
	"浸水危険",
	"上へ逃げろ",
	"買い物客",
	"避難する方向に",
	"流域の方へ",
	"迅速な避難",
	"危ない気お",
	"土の表情",
}

// ContainsHiddenKeyword reports whether text contains any hidden keyword.
func ContainsHiddenKeyword(text string) bool {
	for _, kw := range HiddenKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
