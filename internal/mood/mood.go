// Package mood defines the fixed set of moods and resolves a mood from user signals.
package mood

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mood is one value from the closed set of supported moods.
type Mood string

// Supported moods, in enumeration order.
const (
	Happy     Mood = "happy"
	Energetic Mood = "energetic"
	Sad       Mood = "sad"
	Calm      Mood = "calm"
	Romantic  Mood = "romantic"
	Angry     Mood = "angry"
	Focused   Mood = "focused"
	Nostalgic Mood = "nostalgic"
	Party     Mood = "party"
	Sleepy    Mood = "sleepy"
)

// Default is the mood a session starts with before anything is resolved.
const Default = Happy

const fallbackIcon = "fa-smile"

// Sentinel errors.
var (
	// ErrEmptyInput is returned when free text contains nothing to analyze.
	ErrEmptyInput = errors.New("empty mood input")

	// ErrInvalidMood is returned for values outside the supported set.
	ErrInvalidMood = errors.New("invalid mood")
)

// Info is the display metadata attached to a mood.
type Info struct {
	Mood   Mood
	Label  string   // Capitalized name
	Emoji  string   // Unicode emoji shown with the mood
	Icon   string   // Font Awesome icon class
	Genres []string // Ordered genre list used for recommendations
}

var table = []Info{
	{Mood: Happy, Label: "Happy", Emoji: "😊", Icon: "fa-smile", Genres: []string{"Pop", "Dance", "Funk", "Disco"}},
	{Mood: Energetic, Label: "Energetic", Emoji: "⚡", Icon: "fa-bolt", Genres: []string{"EDM", "Rock", "Hip-Hop", "Metal"}},
	{Mood: Sad, Label: "Sad", Emoji: "😢", Icon: "fa-sad-tear", Genres: []string{"Indie", "Alternative", "Blues", "Ballad"}},
	{Mood: Calm, Label: "Calm", Emoji: "😌", Icon: "fa-spa", Genres: []string{"Ambient", "Classical", "Jazz", "Chill"}},
	{Mood: Romantic, Label: "Romantic", Emoji: "💕", Icon: "fa-heart", Genres: []string{"R&B", "Soul", "Love Songs", "Acoustic"}},
	{Mood: Angry, Label: "Angry", Emoji: "😠", Icon: "fa-angry", Genres: []string{"Rock", "Metal", "Punk", "Rap"}},
	{Mood: Focused, Label: "Focused", Emoji: "🎯", Icon: "fa-bullseye", Genres: []string{"Lo-fi", "Classical", "Instrumental", "Study Music"}},
	{Mood: Nostalgic, Label: "Nostalgic", Emoji: "🌅", Icon: "fa-clock", Genres: []string{"Classic Rock", "Oldies", "Retro", "Throwback"}},
	{Mood: Party, Label: "Party", Emoji: "🎉", Icon: "fa-glass-cheers", Genres: []string{"Dance", "EDM", "Hip-Hop", "Party Hits"}},
	{Mood: Sleepy, Label: "Sleepy", Emoji: "😴", Icon: "fa-moon", Genres: []string{"Ambient", "Lullaby", "Meditation", "Sleep Music"}},
}

var index = func() map[Mood]int {
	m := make(map[Mood]int, len(table))
	for i, info := range table {
		m[info.Mood] = i
	}
	return m
}()

// All returns every supported mood in enumeration order.
func All() []Mood {
	moods := make([]Mood, len(table))
	for i, info := range table {
		moods[i] = info.Mood
	}
	return moods
}

// Lookup returns the metadata for m.
func Lookup(m Mood) (Info, bool) {
	i, ok := index[m]
	if !ok {
		return Info{}, false
	}
	info := table[i]
	info.Genres = append([]string(nil), info.Genres...)
	return info, true
}

// Parse normalizes s and returns the matching mood.
func Parse(s string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMood, s)
	}
	return m, nil
}

// Valid reports whether m belongs to the supported set.
func (m Mood) Valid() bool {
	_, ok := index[m]
	return ok
}

// String implements fmt.Stringer.
func (m Mood) String() string {
	return string(m)
}

// Label returns the capitalized display name.
func (m Mood) Label() string {
	if info, ok := Lookup(m); ok {
		return info.Label
	}
	if m == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(string(m))
	return string(unicode.ToUpper(r)) + string(m[size:])
}

// Emoji returns the emoji for m, or an empty string for unknown moods.
func (m Mood) Emoji() string {
	info, _ := Lookup(m)
	return info.Emoji
}

// Icon returns the icon class for m. Unknown moods get the happy icon.
func (m Mood) Icon() string {
	if info, ok := Lookup(m); ok {
		return info.Icon
	}
	return fallbackIcon
}

// Genres returns a copy of the genre list for m.
func (m Mood) Genres() []string {
	info, _ := Lookup(m)
	return info.Genres
}
