package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/justestif/go-tuneaura/internal/mood"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	moodStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	genreStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)
)

// moodLine renders "😌 Calm  Ambient, Classical, Jazz, Chill".
func moodLine(m mood.Mood) string {
	return moodStyle.Render(m.Emoji()+" "+m.Label()) + "  " + genreStyle.Render(strings.Join(m.Genres(), ", "))
}
