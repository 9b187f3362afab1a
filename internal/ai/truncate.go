package ai

import (
	"unicode/utf8"

	"github.com/go-ego/gse"
	"github.com/rs/zerolog/log"
)

// Truncator 按词边界截断过长的输入，避免把词语从中间切开
type Truncator struct {
	maxRunes  int
	segmenter *gse.Segmenter
}

// NewTruncator 创建截断器，maxRunes <= 0 表示不截断
func NewTruncator(maxRunes int) *Truncator {
	t := &Truncator{maxRunes: maxRunes}
	if maxRunes <= 0 {
		return t
	}

	var segmenter gse.Segmenter
	if err := segmenter.LoadDict(); err != nil {
		// 降级为按字符截断
		log.Warn().Err(err).Msg("failed to load gse dictionary, truncating by rune")
		return t
	}
	t.segmenter = &segmenter
	return t
}

// Truncate 返回不超过 maxRunes 个字符的前缀，以及是否发生了截断
func (t *Truncator) Truncate(text string) (string, bool) {
	if t.maxRunes <= 0 || utf8.RuneCountInString(text) <= t.maxRunes {
		return text, false
	}

	if t.segmenter == nil {
		return string([]rune(text)[:t.maxRunes]), true
	}

	var (
		out   []byte
		count int
	)
	for _, word := range t.segmenter.Cut(text, false) {
		n := utf8.RuneCountInString(word)
		if count+n > t.maxRunes {
			break
		}
		out = append(out, word...)
		count += n
	}
	if count == 0 {
		// 首个词就超长
		return string([]rune(text)[:t.maxRunes]), true
	}
	return string(out), true
}
