package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/go-tuneaura/internal/mood"
)

var resolveDetect bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [text...]",
	Short: "Resolve a mood from free text",
	Long: `Resolve a mood the way the "what's on your mind" dialog does: the mood whose
keywords appear most often wins, and text without any keyword is happy.

With --detect, print what the simulated face detector would report instead.`,
	Example: `  tuneaura resolve "I need to study for my exam"
  tuneaura resolve --detect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := mood.NewResolver(nil)

		var m mood.Mood
		if resolveDetect {
			m = r.ResolveFromDetection()
		} else {
			var err error
			m, err = r.ResolveFromKeywords(strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("resolving mood: %w", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), moodLine(m))
		return nil
	},
}

func init() {
	resolveCmd.Flags().BoolVar(&resolveDetect, "detect", false, "Simulate facial detection instead of reading text")
}
