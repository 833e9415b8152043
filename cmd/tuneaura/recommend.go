package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/go-tuneaura/internal/catalog"
	"github.com/justestif/go-tuneaura/internal/mood"
)

var recommendMixes bool

var recommendCmd = &cobra.Command{
	Use:   "recommend <mood>",
	Short: "Print recommendations for a mood",
	Long: `Print the tracks recommended for a mood, grouped by genre, from the configured
catalog. With --mixes, also cluster them into mood mixes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := mood.Parse(args[0])
		if err != nil {
			return err
		}

		database, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		if database != nil {
			defer database.Close()
		}
		src, err := catalogSource(ctx, database)
		if err != nil {
			return err
		}

		recs, err := catalogService(src).ForMood(ctx, m)
		if err != nil && !errors.Is(err, catalog.ErrNoTracks) {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, moodLine(m))
		for _, g := range recs.Genres {
			fmt.Fprintf(out, "\n%s %s\n", headerStyle.Render(g.Genre), countStyle.Render(fmt.Sprint(len(g.Tracks))))
			if g.Error != nil {
				fmt.Fprintln(out, dimStyle.Render("  lookup failed: "+g.Error.Error()))
				continue
			}
			for _, t := range g.Tracks {
				fmt.Fprintf(out, "  %s %s\n", t.Title, dimStyle.Render("by "+t.Artist))
			}
		}

		if recommendMixes {
			mixCfg := catalog.DefaultMixConfig()
			mixCfg.NumMixes = cfg.Catalog.Mixes
			mixes, outliers := catalog.Mixes(recs.Tracks, mixCfg)
			fmt.Fprintln(out)
			fmt.Fprint(out, catalog.FormatMixSummary(mixes, outliers))
		}
		return err
	},
}

func init() {
	recommendCmd.Flags().BoolVar(&recommendMixes, "mixes", false, "Also group the tracks into mood mixes")
}
