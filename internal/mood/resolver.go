package mood

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// keywordRule lists the trigger words counted for one mood.
type keywordRule struct {
	mood  Mood
	words []string
}

// keywordRules is scanned in order and only a strictly greater count replaces the
// current best, so on ties the earlier rule wins. The order differs from the
// enumeration order of All: sad comes before energetic.
var keywordRules = []keywordRule{
	{Happy, []string{"happy", "joy", "excited", "great", "awesome", "celebrating", "wonderful"}},
	{Sad, []string{"sad", "down", "depressed", "lonely", "miss", "heartbreak", "cry"}},
	{Energetic, []string{"workout", "gym", "run", "energy", "pump", "motivated", "active"}},
	{Calm, []string{"relax", "chill", "peace", "quiet", "meditate", "unwind", "calm"}},
	{Romantic, []string{"love", "romance", "date", "heart", "partner", "relationship"}},
	{Angry, []string{"angry", "mad", "frustrated", "annoyed", "furious", "rage"}},
	{Focused, []string{"study", "work", "concentrate", "focus", "productive", "task"}},
	{Nostalgic, []string{"memory", "remember", "past", "childhood", "nostalgia", "miss"}},
	{Party, []string{"party", "dance", "club", "celebrate", "fun", "friends"}},
	{Sleepy, []string{"sleep", "tired", "rest", "bed", "sleepy", "exhausted"}},
}

// detectable is the subset the simulated face detector can report.
var detectable = []Mood{Happy, Calm, Energetic, Focused, Nostalgic}

// RandSource picks an integer in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Resolver turns raw signals into a Mood.
type Resolver struct {
	rng RandSource
}

// NewResolver creates a Resolver. A nil source uses the global math/rand/v2 generator.
func NewResolver(rng RandSource) *Resolver {
	if rng == nil {
		rng = globalRand{}
	}
	return &Resolver{rng: rng}
}

// ResolveFromKeywords scores text against each mood's trigger words and returns the
// best match, or Happy when nothing matches.
// Returns ErrEmptyInput if text is blank.
func (r *Resolver) ResolveFromKeywords(text string) (Mood, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyInput
	}

	lower := strings.ToLower(text)
	best := Default
	maxMatches := 0

	for _, rule := range keywordRules {
		matches := 0
		for _, word := range rule.words {
			if strings.Contains(lower, word) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			best = rule.mood
		}
	}

	return best, nil
}

// ResolveFromDetection returns a mood drawn uniformly from the detectable subset.
// It stands in for a real facial-expression classifier.
func (r *Resolver) ResolveFromDetection() Mood {
	return detectable[r.rng.IntN(len(detectable))]
}

// ResolveFromSelection validates an explicit choice.
func (r *Resolver) ResolveFromSelection(m Mood) (Mood, error) {
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMood, string(m))
	}
	return m, nil
}

// Detectable returns the moods ResolveFromDetection can produce.
func Detectable() []Mood {
	return append([]Mood(nil), detectable...)
}
