package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"goalbridge/internal/config"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func errorLine(msg string) string   { return red("error: " + msg) }
func successLine(msg string) string { return green(msg) }
func warnLine(msg string) string    { return yellow(msg) }

// newViper reads GOALBRIDGE_* environment variables, so database.url is
// GOALBRIDGE_DATABASE_URL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOALBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func newRootCommand() *cobra.Command {
	v := newViper()

	rootCmd := &cobra.Command{
		Use:   "goalbridge",
		Short: "Translate objectives between EOS, OKR, 4DX and Scaling Up",
		Long: fmt.Sprintf(`%s

Stores objectives once in a universal model and renders them in the
management framework each organization runs on.

%s
  goalbridge serve                                  # Start the HTTP API
  goalbridge translate --to okr -f objective.json   # Translate one objective
  goalbridge translate --to eos -f batch.json       # Translate a JSON array
  goalbridge recommend --org acme                   # Rank frameworks for an organization
  goalbridge migrate                                # Create the Postgres tables`,
			bold("goalbridge"), bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if v.GetBool("no_color") {
				color.NoColor = true
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default $GOALBRIDGE_CONFIG or ~/.goalbridge/config.yaml)")
	flags.String("database-url", "", "Postgres connection URL; empty uses the in-memory store")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Bool("no-color", false, "disable colored output")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("database.url", flags.Lookup("database-url"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("no_color", flags.Lookup("no-color"))

	rootCmd.AddCommand(
		newServeCommand(v),
		newMigrateCommand(v),
		newTranslateCommand(v),
		newValidateCommand(v),
		newRecommendCommand(v),
		newFrameworksCommand(v),
	)
	return rootCmd
}

// loadConfig reads the config file and applies flag and environment overrides.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg, path, err := config.Load(config.WithPath(v.GetString("config")))
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if url := strings.TrimSpace(v.GetString("database.url")); url != "" {
		cfg.Database.URL = url
	}
	if level := strings.TrimSpace(v.GetString("log.level")); level != "" {
		cfg.Observability.Logging.Level = level
	}
	if addr := strings.TrimSpace(v.GetString("server.addr")); addr != "" {
		cfg.Server.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
