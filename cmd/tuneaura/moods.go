package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/justestif/go-tuneaura/internal/mood"
)

var moodsCmd = &cobra.Command{
	Use:   "moods",
	Short: "List the supported moods",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, headerStyle.Render("Moods"))

		nameCol := lipgloss.NewStyle().Width(16)
		iconCol := lipgloss.NewStyle().Width(18)
		for _, m := range mood.All() {
			fmt.Fprintln(out,
				nameCol.Render(moodStyle.Render(m.Emoji()+" "+m.Label()))+
					iconCol.Render(dimStyle.Render(m.Icon()))+
					genreStyle.Render(strings.Join(m.Genres(), ", ")),
			)
		}
		return nil
	},
}
