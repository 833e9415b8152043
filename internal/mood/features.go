package mood

import (
	"github.com/muesli/clusters"
)

// profiles places each mood on the Spotify energy/valence plane.
// Energy runs from calm to intense, valence from negative to positive.
var profiles = map[Mood]clusters.Coordinates{
	Happy:     {0.65, 0.90},
	Energetic: {0.90, 0.60},
	Sad:       {0.30, 0.15},
	Calm:      {0.25, 0.60},
	Romantic:  {0.40, 0.75},
	Angry:     {0.90, 0.20},
	Focused:   {0.45, 0.45},
	Nostalgic: {0.50, 0.35},
	Party:     {0.85, 0.85},
	Sleepy:    {0.10, 0.35},
}

// Profile returns the energy and valence centre used for m.
func Profile(m Mood) (energy, valence float64, ok bool) {
	c, ok := profiles[m]
	if !ok {
		return 0, 0, false
	}
	return c[0], c[1], true
}

// FromFeatures returns the mood whose profile is closest to the given audio features.
// Distance ties go to the mood earlier in enumeration order.
func FromFeatures(energy, valence float64) Mood {
	point := clusters.Coordinates{clamp(energy), clamp(valence)}

	best := Default
	bestDist := -1.0
	for _, info := range table {
		d := profiles[info.Mood].Distance(point)
		if bestDist < 0 || d < bestDist {
			best = info.Mood
			bestDist = d
		}
	}
	return best
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
