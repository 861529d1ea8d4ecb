package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/trip"
)

func newStylesCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "styles",
		Short: "Show the marker style table",
		Long: `Show the marker styles and congestion colors in effect, including any
overrides from overlay.styles_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			styles, err := cfg.LoadStyles()
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if global.jsonOutput {
				return outputJSON(w, styles)
			}

			keys := make([]string, 0, len(styles.Styles))
			for key := range styles.Styles {
				keys = append(keys, string(key))
			}
			sort.Strings(keys)

			PrintSection(w, "Marker Styles")
			rows := make([][]string, 0, len(keys))
			for _, key := range keys {
				s := styles.Styles[overlay.StyleKey(key)]
				rows = append(rows, []string{
					key,
					fmt.Sprintf("%dx%d", s.IconSize[0], s.IconSize[1]),
					s.Color,
					s.IconURL,
				})
			}
			PrintTable(w, []string{"STYLE", "SIZE", "COLOR", "ICON"}, rows)

			PrintSection(w, "Route Colors")
			PrintLabelValue(w, "route", styles.RouteColor)
			for _, level := range []trip.CongestionLevel{
				trip.CongestionLight, trip.CongestionModerate, trip.CongestionHeavy, trip.CongestionUnknown,
			} {
				if color, ok := styles.CongestionColors[level]; ok {
					PrintLabelValue(w, string(level), color)
				}
			}
			return nil
		},
	}
}

func newAttractionsCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "attractions",
		Short: "List attraction preference tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if global.jsonOutput {
				return outputJSON(w, trip.AttractionTypes)
			}

			PrintSection(w, "Attraction Types")
			rows := make([][]string, 0, len(trip.AttractionTypes))
			for _, a := range trip.AttractionTypes {
				rows = append(rows, []string{a.ID, a.Label})
			}
			PrintTable(w, []string{"ID", "LABEL"}, rows)
			_, _ = fmt.Fprintln(w)
			PrintCount(w, len(trip.AttractionTypes), "type", "types")
			return nil
		},
	}
}
