package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "critree",
	Short: "Structure clinical trial eligibility criteria into a numbered hierarchy",
	Long: `critree reads eligibility criteria text (txt, md, html, csv, pdf, docx),
splits it into inclusion, exclusion and eligibility sections, and tags every
line with its classification band, depth and hierarchical path.

Settings can also be given as CRITREE_* environment variables, for example
CRITREE_KIND=exclusion or CRITREE_OUTPUT=json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return viper.BindPFlags(cmd.Flags())
	},
}

func init() {
	viper.SetEnvPrefix("CRITREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.PersistentFlags().Bool("verbose", false, "log builder warnings to stderr")

	rootCmd.AddCommand(tagCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger logs to stderr so stdout stays machine readable.
func newLogger() *slog.Logger {
	level := slog.LevelError
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
