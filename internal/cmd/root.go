package cmd

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/superagent-dev/superagent/internal/config"
	"github.com/superagent-dev/superagent/internal/log"
)

var (
	flagProjectRoot string
	flagConfigPath  string
	flagLogLevel    string
	flagLogFormat   string
)

// Output styles shared by the commands
var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleAdded    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleModified = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleDeleted  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var rootCmd = &cobra.Command{
	Use:   "superagent",
	Short: "Plan scheduling and incremental change tracking for agent workflows",
	Long: `superagent coordinates multi-step agent plans executed against a shared
project directory and tracks exactly what each step changed on disk, so
downstream steps and reports never need to resend or rescan whole files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := log.DefaultConfig()
		logCfg.Level = log.ParseLevel(flagLogLevel)
		logCfg.Format = log.ParseFormat(flagLogFormat)
		log.SetDefaultLogger(log.New(logCfg))
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with a cancellation context
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the effective configuration for the project root
func loadConfig() (config.Config, error) {
	path := flagConfigPath
	if path == "" {
		path = filepath.Join(flagProjectRoot, ".superagent", "config.yaml")
	}
	return config.Load(path)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagProjectRoot, "project", ".", "project root directory")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file (default <project>/.superagent/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")
}
