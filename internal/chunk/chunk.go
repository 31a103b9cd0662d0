// Package chunk splits assembled document text into an ordered sequence of
// bounded-size chunks for the summarization service. Chunks concatenated in
// sequence order reproduce the input exactly, so nothing is silently lost.
package chunk

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/docfold/pdf-digest/models"
)

// DefaultMaxChars is a conservative character ceiling per chunk. The
// service's true limit is token-based; characters are a safe proxy.
const DefaultMaxChars = 15000

// sentenceEnders mark positions after which a sentence boundary exists.
var sentenceEnders = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

// Split partitions text into chunks of at most maxChars runes each,
// preferring paragraph boundaries, then sentence boundaries, then word
// boundaries. A single indivisible unit longer than maxChars is hard-split
// at the rune limit as a last resort. maxChars <= 0 selects
// DefaultMaxChars. Empty input yields no chunks.
func Split(document, text string, maxChars int) []models.Chunk {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if text == "" {
		return nil
	}

	var chunks []models.Chunk
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		chunks = append(chunks, models.Chunk{
			Document: document,
			Sequence: len(chunks),
			Text:     cur.String(),
		})
		cur.Reset()
		curLen = 0
	}

	for _, unit := range units(text, maxChars) {
		n := utf8.RuneCountInString(unit)
		if curLen+n > maxChars {
			flush()
		}
		cur.WriteString(unit)
		curLen += n
	}
	flush()

	return chunks
}

// units decomposes text into segments of at most max runes whose
// concatenation is the input. Paragraphs that fit stay whole; oversized
// paragraphs decompose into sentences, oversized sentences into words,
// and oversized words are hard-split.
func units(text string, max int) []string {
	var out []string
	for _, para := range splitParagraphs(text) {
		if utf8.RuneCountInString(para) <= max {
			out = append(out, para)
			continue
		}
		for _, sent := range splitSentences(para) {
			if utf8.RuneCountInString(sent) <= max {
				out = append(out, sent)
				continue
			}
			for _, word := range splitWords(sent) {
				if utf8.RuneCountInString(word) <= max {
					out = append(out, word)
					continue
				}
				out = append(out, hardSplit(word, max)...)
			}
		}
	}
	return out
}

// splitParagraphs cuts after each blank line, keeping the separator
// attached to the preceding segment.
func splitParagraphs(text string) []string {
	var out []string
	for {
		idx := strings.Index(text, "\n\n")
		if idx < 0 {
			break
		}
		out = append(out, text[:idx+2])
		text = text[idx+2:]
	}
	if text != "" {
		out = append(out, text)
	}
	return out
}

// splitSentences cuts after sentence-ending punctuation followed by a
// space or newline, keeping both characters with the preceding segment.
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(text); i++ {
		pair := text[i : i+2]
		for _, ender := range sentenceEnders {
			if pair == ender {
				out = append(out, text[start:i+2])
				start = i + 2
				i++ // skip past the separator character
				break
			}
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// splitWords cuts after each whitespace run.
func splitWords(text string) []string {
	var out []string
	start := 0
	inSpace := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			out = append(out, text[start:i])
			start = i
			inSpace = false
		}
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}

// hardSplit cuts a single oversized unit into pieces of exactly max runes
// (the final piece may be shorter), always on rune boundaries.
func hardSplit(text string, max int) []string {
	var out []string
	count := 0
	start := 0
	for i := range text {
		if count == max {
			out = append(out, text[start:i])
			start = i
			count = 0
		}
		count++
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
