// Package analyzer picks topic-bearing sentences out of article bodies.
package analyzer

import (
	"strings"
	"unicode"
)

// minTermLen drops short words such as "of" and "in" from topic terms.
const minTermLen = 3

// Terms splits topic into lower-cased, de-duplicated search terms of at
// least three characters, in first-seen order.
func Terms(topic string) []string {
	fields := strings.FieldsFunc(strings.ToLower(topic), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTermLen || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// Highlights returns up to limit sentences of content that mention any
// topic term, in document order.
func Highlights(content, topic string, limit int) []string {
	if limit <= 0 || content == "" {
		return nil
	}
	terms := Terms(topic)
	if len(terms) == 0 {
		return nil
	}

	var out []string
	for _, s := range splitSentences(content) {
		for _, term := range terms {
			if strings.Contains(s.lower, term) {
				out = append(out, s.original)
				break
			}
		}
		if len(out) == limit {
			break
		}
	}
	return out
}

// sentence holds original and lowercase versions together
type sentence struct {
	original string
	lower    string
}

// splitSentences splits on '.', '!' and '?', keeping the delimiter. Runs of
// whitespace inside a sentence collapse to single spaces.
func splitSentences(text string) []sentence {
	if len(text) == 0 {
		return nil
	}

	// Estimate sentence count: roughly 1 sentence per 50 chars average
	sentences := make([]sentence, 0, max(len(text)/50, 1))
	add := func(raw string) {
		orig := strings.Join(strings.Fields(raw), " ")
		if orig == "" {
			return
		}
		sentences = append(sentences, sentence{original: orig, lower: strings.ToLower(orig)})
	}

	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			end := i + 1
			// Keep "..." and "?!" attached to their sentence.
			for end < len(text) && strings.ContainsRune(".!?", rune(text[end])) {
				end++
			}
			if end <= start {
				continue
			}
			add(text[start:end])
			start = end
		}
	}

	// Capture any trailing text
	if start < len(text) {
		add(text[start:])
	}

	return sentences
}
