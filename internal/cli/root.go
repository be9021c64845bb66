package cli

import (
	"github.com/spf13/cobra"

	"github.com/btools-dev/btools/internal/branding"
	"github.com/btools-dev/btools/internal/config"
	"github.com/btools-dev/btools/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var verbosity int

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds Chrome Manifest V3 extension projects from templates,
generates manifest.json files and validates existing manifests against the
Manifest V3 rules and the files they reference.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfgErr := config.Load()
		v := verbosity
		if v == 0 {
			v = config.Verbosity()
		}
		logging.Setup(v, cmd.ErrOrStderr())
		if cfgErr != nil {
			logger := logging.GetLogger("config")
			logger.Warn().Err(cfgErr).Msg("using defaults for settings the config file could not provide")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug, -vvv trace)")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
