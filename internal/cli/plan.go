package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/breatheroute/roadtrip/internal/planner"
	"github.com/breatheroute/roadtrip/internal/trip"
)

const departLayout = "2006-01-02T15:04"

type planOptions struct {
	origin      string
	destination string
	waypoints   []string
	durations   []string
	depart      string
	preferences []string
	geoJSON     bool
	plannerURL  string
	timeout     time.Duration
}

func newPlanCmd(global *globalOptions) *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan a trip and print its map overlay",
		Long: `Plan a trip with the planning service and print the normalized overlay.

Waypoints and stop durations are matched by position. The departure time
defaults to now in the configured timezone.`,
		Example: `  tripctl plan --origin "Houston, TX" --destination "Austin, TX"
  tripctl plan --origin Houston --destination Dallas --waypoint Waco --duration 2 --pref museum
  tripctl plan --origin Houston --destination Austin --geojson > trip.geojson`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, global, opts)
		},
	}

	cmd.Flags().StringVar(&opts.origin, "origin", "", "Starting location")
	cmd.Flags().StringVar(&opts.destination, "destination", "", "Final location")
	cmd.Flags().StringArrayVar(&opts.waypoints, "waypoint", nil, "Intermediate stop (repeatable)")
	cmd.Flags().StringArrayVar(&opts.durations, "duration", nil, "Hours spent at the matching waypoint (repeatable)")
	cmd.Flags().StringVar(&opts.depart, "depart", "", "Departure time as "+departLayout+" (default now)")
	cmd.Flags().StringSliceVar(&opts.preferences, "pref", nil, "Attraction preference tags")
	cmd.Flags().BoolVar(&opts.geoJSON, "geojson", false, "Output the overlay as a GeoJSON FeatureCollection")
	cmd.Flags().StringVar(&opts.plannerURL, "planner-url", "", "Planning service base URL (overrides config)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Planning request timeout (overrides config)")

	return cmd
}

func runPlan(cmd *cobra.Command, global *globalOptions, opts *planOptions) error {
	cfg, err := loadConfig(global)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), global.verbose)

	depart := opts.depart
	if strings.TrimSpace(depart) == "" {
		depart = time.Now().In(cfg.Location()).Format(departLayout)
	}

	builder := trip.NewRequestBuilder(trip.BuilderConfig{
		Location:     cfg.Location(),
		MaxStopHours: cfg.Request.MaxStopHours,
	})
	req, err := builder.Build(trip.FormInput{
		Origin:                opts.origin,
		Destination:           opts.destination,
		Waypoints:             opts.waypoints,
		StopDurations:         opts.durations,
		DepartureTime:         depart,
		AttractionPreferences: opts.preferences,
	})
	if err != nil {
		var verr *trip.RequestValidationError
		if errors.As(err, &verr) {
			for _, f := range verr.Fields {
				PrintError(cmd.ErrOrStderr(), fmt.Sprintf("%s: %s", f.Field, f.Message))
			}
		}
		return err
	}

	baseURL := cfg.Planner.BaseURL
	if opts.plannerURL != "" {
		baseURL = opts.plannerURL
	}
	timeout := cfg.Planner.Timeout
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	client := planner.NewClient(planner.ClientConfig{
		BaseURL:      baseURL,
		Timeout:      timeout,
		MaxBodyBytes: cfg.Planner.MaxBodyBytes,
		Logger:       logger,
	})

	logger.Debug().
		Str("origin", req.Origin).
		Str("destination", req.Destination).
		Int("waypoints", len(req.Waypoints)).
		Str("planner", baseURL).
		Msg("submitting trip")

	result, err := client.PlanTrip(cmd.Context(), req)
	if err != nil {
		return err
	}

	normalizer, err := newNormalizer(cfg)
	if err != nil {
		return err
	}
	model, report := normalizer.NormalizeWithReport(result)
	logger.Debug().Object("report", report).Msg("overlay normalized")

	return writeModel(cmd.OutOrStdout(), global, opts.geoJSON, model, report)
}
