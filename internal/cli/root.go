// Package cli implements tripctl, a terminal front end for the trip
// planning pipeline.
package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	// Colors for help output sections
	groupTitleColor   = color.New(color.FgCyan, color.Bold)
	sectionTitleColor = color.New(color.FgBlue, color.Bold)
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	jsonOutput bool
	configDir  string
	verbose    bool
}

// SetVersion sets the version reported by --version and the version command.
func SetVersion(v string) {
	if v == "" {
		return
	}
	version = v
}

// customHelpFunc colors group titles in help output.
func customHelpFunc(cmd *cobra.Command, _ []string) {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString(cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString(sectionTitleColor.Sprint("Usage:"))
	help.WriteString("\n")
	fmt.Fprintf(&help, "  %s\n\n", cmd.UseLine())

	for _, group := range cmd.Groups() {
		help.WriteString(groupTitleColor.Sprint(group.Title))
		help.WriteString("\n")
		for _, c := range cmd.Commands() {
			if c.GroupID == group.ID && !c.Hidden {
				fmt.Fprintf(&help, "  %-11s %s\n", c.Name(), c.Short)
			}
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() || cmd.HasAvailablePersistentFlags() {
		help.WriteString(sectionTitleColor.Sprint("Flags:"))
		help.WriteString("\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("\n")
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&help, "Use \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}

	fmt.Fprint(cmd.OutOrStdout(), help.String())
}

// newRootCmd builds the command tree. Each call returns a fresh tree so
// flag state never leaks between invocations.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tripctl",
		Version: version,
		Short:   "Plan road trips and inspect map overlays",
		Long: `tripctl submits trips to the planning service and prints the normalized
map overlay: route, congestion segments and markers.

It reads the same configuration as the API server (config.yaml, .env and
ROADTRIP_* environment variables).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.SetHelpFunc(customHelpFunc)

	// Global flags
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config", "", "Directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline details to stderr")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "trips",
		Title: "Trip Planning:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "presentation",
		Title: "Presentation:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cli-tooling",
		Title: "CLI & Tooling:",
	})

	planCmd := newPlanCmd(opts)
	normalizeCmd := newNormalizeCmd(opts)
	planCmd.GroupID = "trips"
	normalizeCmd.GroupID = "trips"
	rootCmd.AddCommand(planCmd, normalizeCmd)

	stylesCmd := newStylesCmd(opts)
	attractionsCmd := newAttractionsCmd(opts)
	stylesCmd.GroupID = "presentation"
	attractionsCmd.GroupID = "presentation"
	rootCmd.AddCommand(stylesCmd, attractionsCmd)

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the tripctl version",
		Args:    cobra.NoArgs,
		GroupID: "cli-tooling",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
	rootCmd.AddCommand(versionCmd)

	helpCmd := &cobra.Command{
		Use:     "help [command]",
		Short:   "Help about any command",
		GroupID: "cli-tooling",
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _, err := cmd.Root().Find(args)
			if err != nil || target == nil {
				target = cmd.Root()
			}
			return target.Help()
		},
	}
	rootCmd.SetHelpCommand(helpCmd)

	return rootCmd
}

// Execute runs tripctl with the process arguments.
func Execute() error {
	return newRootCmd().Execute()
}
