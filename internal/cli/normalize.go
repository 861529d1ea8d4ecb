package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/breatheroute/roadtrip/internal/trip"
)

func newNormalizeCmd(global *globalOptions) *cobra.Command {
	var geoJSON bool

	cmd := &cobra.Command{
		Use:   "normalize FILE",
		Short: "Normalize a saved planning result",
		Long: `Normalize a planning service response saved to FILE and print the overlay.
Use "-" to read from stdin. Malformed sections are dropped and reported,
never fatal.`,
		Example: `  tripctl normalize result.json
  curl -s localhost:8000/api/plan_trip -d @form.json | tripctl normalize - --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(global)
			if err != nil {
				return err
			}
			logger := newLogger(cmd.ErrOrStderr(), global.verbose)

			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			var result trip.TripPlanResult
			if err := json.Unmarshal(data, &result); err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			if !result.HasRoute {
				PrintWarning(cmd.ErrOrStderr(), "Input has no route")
			}

			normalizer, err := newNormalizer(cfg)
			if err != nil {
				return err
			}
			model, report := normalizer.NormalizeWithReport(&result)
			logger.Debug().Object("report", report).Msg("overlay normalized")

			return writeModel(cmd.OutOrStdout(), global, geoJSON, model, report)
		},
	}

	cmd.Flags().BoolVar(&geoJSON, "geojson", false, "Output the overlay as a GeoJSON FeatureCollection")

	return cmd
}

// readInput reads a named file, or stdin for "-".
func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
