package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/config"
	"github.com/breatheroute/roadtrip/internal/overlay"
)

// loadConfig loads the shared server configuration.
func loadConfig(opts *globalOptions) (*config.Config, error) {
	if opts.configDir != "" {
		return config.Load(opts.configDir)
	}
	return config.Load()
}

// newLogger writes human-readable logs to w. Only warnings are shown unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// newNormalizer builds a normalizer from the configured style table.
func newNormalizer(cfg *config.Config) (*overlay.Normalizer, error) {
	styles, err := cfg.LoadStyles()
	if err != nil {
		return nil, err
	}
	return overlay.NewNormalizer(overlay.Config{
		Classifier:          overlay.NewClassifier(styles),
		RecommendationLimit: cfg.Overlay.RecommendationLimit,
	}), nil
}

// outputJSON writes a value as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeModel prints a render model in the selected output format.
func writeModel(w io.Writer, opts *globalOptions, geoJSON bool, model overlay.RenderModel, report overlay.Report) error {
	switch {
	case geoJSON:
		return outputJSON(w, model.FeatureCollection())
	case opts.jsonOutput:
		return outputJSON(w, model)
	default:
		printSummary(w, model, report)
		return nil
	}
}

// printSummary prints a colored overview of a render model.
func printSummary(w io.Writer, model overlay.RenderModel, report overlay.Report) {
	PrintSection(w, "Route")
	if model.Empty() {
		PrintEmptyState(w, "No route to display")
	} else {
		PrintLabelValue(w, "Distance", fmt.Sprintf("%.1f km", model.DistanceMeters/1000))
		PrintLabelValue(w, "Points", fmt.Sprintf("%d", len(model.RoutePath)))
		PrintLabelValue(w, "Segments", fmt.Sprintf("%d", len(model.RouteSegments)))
		if model.Bounds != nil {
			PrintLabelValue(w, "Bounds", fmt.Sprintf("%.5f,%.5f to %.5f,%.5f",
				model.Bounds.SouthWest.Lat, model.Bounds.SouthWest.Lng,
				model.Bounds.NorthEast.Lat, model.Bounds.NorthEast.Lng))
		}
	}

	PrintSection(w, "Markers")
	var rows [][]string
	for _, category := range overlay.Categories {
		if n := len(model.MarkersOf(category)); n > 0 {
			rows = append(rows, []string{string(category), fmt.Sprintf("%d", n)})
		}
	}
	if len(rows) == 0 {
		PrintEmptyState(w, "No markers")
	} else {
		PrintTable(w, []string{"CATEGORY", "COUNT"}, rows)
		_, _ = fmt.Fprintln(w)
		PrintCount(w, len(model.Markers), "marker", "markers")
	}

	_, _ = fmt.Fprintln(w)
	if report.FallbackSegment {
		PrintWarning(w, "No usable traffic data, route drawn as a single segment")
	}
	dropped := report.Dropped()
	if dropped == 0 {
		PrintSuccess(w, "Overlay normalized")
		return
	}

	PrintWarning(w, fmt.Sprintf("Overlay normalized, %d input items dropped", dropped))
	sections := report.Sections()
	names := make([]string, 0, len(sections))
	for name, n := range sections {
		if n > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		PrintLabelValue(w, name, fmt.Sprintf("%d", sections[name]))
	}
}
