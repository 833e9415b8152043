package catalog

import (
	"fmt"
	"strings"
)

const sampleTrackCount = 3

// FormatMixSummary returns a human-readable summary of mood mixes.
// Shows track count and the first 3 tracks of each mix.
// Outliers are summarized by count only.
func FormatMixSummary(mixes []Mix, outliers []Track) string {
	var sb strings.Builder

	total := len(outliers)
	for _, m := range mixes {
		total += len(m.Tracks)
	}

	if len(mixes) == 0 {
		fmt.Fprintf(&sb, "No mixes found from %d tracks", total)
		if len(outliers) > 0 {
			fmt.Fprintf(&sb, " (%d outliers skipped)", len(outliers))
		}
		sb.WriteString("\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "Found %d %s from %d tracks", len(mixes), plural(len(mixes), "mix", "mixes"), total)
	if len(outliers) > 0 {
		fmt.Fprintf(&sb, " (%d outliers skipped)", len(outliers))
	}
	sb.WriteString("\n")

	for _, m := range mixes {
		sb.WriteString("\n")
		sb.WriteString(formatMix(m))
	}
	return sb.String()
}

func formatMix(m Mix) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s %s (%d %s, energy %.2f, valence %.2f)\n",
		m.Mood.Emoji(), m.Name, len(m.Tracks), plural(len(m.Tracks), "track", "tracks"), m.Energy, m.Valence)

	for _, t := range m.Tracks[:min(sampleTrackCount, len(m.Tracks))] {
		fmt.Fprintf(&sb, "  • %q - %s\n", t.Title, t.Artist)
	}
	if remaining := len(m.Tracks) - sampleTrackCount; remaining > 0 {
		fmt.Fprintf(&sb, "  ... and %d more\n", remaining)
	}
	return sb.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
