// Package sentiment scores text polarity and turns a compound score into a
// percentage breakdown.
package sentiment

import (
	"context"
	"math"

	"github.com/FranksOps/newslens/internal/article"
	"github.com/jonreiter/govader"
)

// Analyzer returns a compound polarity score in [-1, 1] for text.
type Analyzer interface {
	Compound(ctx context.Context, text string) (float64, error)
}

// VADER scores text with the VADER lexicon and rule set.
type VADER struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVADER loads the bundled VADER lexicon.
func NewVADER() *VADER {
	return &VADER{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Compound implements Analyzer. Lexicon scoring never fails.
func (v *VADER) Compound(_ context.Context, text string) (float64, error) {
	return Clamp(v.analyzer.PolarityScores(text).Compound), nil
}

// Clamp bounds a compound score to [-1, 1].
func Clamp(compound float64) float64 {
	if math.IsNaN(compound) {
		return 0
	}
	return math.Max(-1, math.Min(1, compound))
}

// Breakdown derives the positive/neutral/negative split from a compound
// score. Only the side matching the score's sign is non-zero.
func Breakdown(compound float64) article.Percentages {
	compound = Clamp(compound)
	if compound >= 0 {
		pos := int(math.Floor(compound * 100))
		return article.Percentages{Positive: pos, Neutral: 100 - pos}
	}
	neg := int(math.Floor(math.Abs(compound) * 100))
	return article.Percentages{Negative: neg, Neutral: 100 - neg}
}
