package catalog

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"github.com/justestif/go-tuneaura/internal/mood"
)

// MixConfig holds mood mix clustering parameters.
type MixConfig struct {
	NumMixes   int // Number of clusters to create (default: 4)
	MinMixSize int // Minimum tracks per mix (smaller clusters become outliers)
}

// DefaultMixConfig returns the recommended default configuration.
func DefaultMixConfig() MixConfig {
	return MixConfig{
		NumMixes:   4,
		MinMixSize: 2,
	}
}

// Mix is a group of tracks with similar audio features, labelled with the nearest mood.
type Mix struct {
	Name        string    // "Calm Mix", "Calm Mix 2" when two clusters share a mood
	Mood        mood.Mood // Mood whose profile is closest to the centroid
	Description string
	Tracks      []Track // Sorted by title
	Energy      float32 // Centroid energy
	Valence     float32 // Centroid valence
}

// trackObservation wraps a Track to implement the clusters.Observation interface.
type trackObservation struct {
	track  *Track
	coords clusters.Coordinates
}

func (o trackObservation) Coordinates() clusters.Coordinates {
	return o.coords
}

func (o trackObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// Mixes groups tracks by energy and valence using k-means clustering.
// Returns the mixes, largest first, and the tracks that did not fit into any mix.
// Tracks missing audio features are treated as outliers.
func Mixes(tracks []Track, cfg MixConfig) ([]Mix, []Track) {
	if len(tracks) == 0 {
		return nil, nil
	}
	if cfg.NumMixes <= 0 {
		cfg.NumMixes = DefaultMixConfig().NumMixes
	}

	var valid []*Track
	var missing []Track
	for i := range tracks {
		t := &tracks[i]
		if t.HasFeatures() {
			valid = append(valid, t)
		} else {
			missing = append(missing, *t)
		}
	}

	if len(valid) < cfg.NumMixes {
		return nil, append(derefAll(valid), missing...)
	}

	var obs clusters.Observations
	for _, t := range valid {
		obs = append(obs, trackObservation{
			track:  t,
			coords: clusters.Coordinates{float64(*t.Energy), float64(*t.Valence)},
		})
	}

	km := kmeans.New()
	result, err := km.Partition(obs, cfg.NumMixes)
	if err != nil {
		return nil, append(derefAll(valid), missing...)
	}

	var mixes []Mix
	var outliers []Track
	for _, cluster := range result {
		var members []Track
		for _, o := range cluster.Observations {
			if to, ok := o.(trackObservation); ok {
				members = append(members, *to.track)
			}
		}

		if len(members) < cfg.MinMixSize || len(members) == 0 {
			outliers = append(outliers, members...)
			continue
		}

		slices.SortFunc(members, func(a, b Track) int {
			if c := cmp.Compare(a.Title, b.Title); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})

		energy, valence := cluster.Center[0], cluster.Center[1]
		md := mood.FromFeatures(energy, valence)
		mixes = append(mixes, Mix{
			Mood:        md,
			Description: describe(float32(energy), float32(valence)),
			Tracks:      members,
			Energy:      float32(energy),
			Valence:     float32(valence),
		})
	}

	outliers = append(outliers, missing...)

	slices.SortStableFunc(mixes, func(a, b Mix) int {
		if c := cmp.Compare(len(b.Tracks), len(a.Tracks)); c != 0 {
			return c
		}
		return cmp.Compare(a.Mood, b.Mood)
	})
	nameMixes(mixes)

	return mixes, outliers
}

// nameMixes labels each mix after its mood, numbering repeats.
func nameMixes(mixes []Mix) {
	seen := make(map[mood.Mood]int)
	for i := range mixes {
		m := &mixes[i]
		seen[m.Mood]++
		m.Name = m.Mood.Label() + " Mix"
		if n := seen[m.Mood]; n > 1 {
			m.Name = fmt.Sprintf("%s %d", m.Name, n)
		}
	}
}

// describe uses a 2x2 energy/valence quadrant system.
func describe(energy, valence float32) string {
	switch {
	case energy > 0.6 && valence > 0.5:
		return "High-energy, positive vibes - perfect for dancing and celebrations"
	case energy > 0.6:
		return "Intense, driving energy with darker emotional tones"
	case valence > 0.5:
		return "Relaxed and uplifting - great for unwinding"
	default:
		return "Contemplative and introspective - ideal for quiet moments"
	}
}

func derefAll(ts []*Track) []Track {
	out := make([]Track, 0, len(ts))
	for _, t := range ts {
		out = append(out, *t)
	}
	return out
}
