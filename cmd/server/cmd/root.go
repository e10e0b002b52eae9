// Package cmd contains all CLI commands for the hanzi server.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"hanzi_backend/internal/app/di"
	"hanzi_backend/internal/platform/config"
	"hanzi_backend/internal/platform/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hanzi",
	Short: "Photo to Chinese characters with pinyin",
	Long: `hanzi names the subject of a photo in Chinese, one character at a time,
with tone-marked pinyin and pronunciation audio.

Run 'hanzi serve' to start the HTTP API, or 'hanzi identify photo.jpg'
to recognize a single photo from the command line.

Configuration comes from HANZI_* environment variables or --config.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig points viper at the config file if one was given.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig decodes the configuration and installs the logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if _, err := logging.Setup(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp loads configuration and wires every component.
func newApp(ctx context.Context) (*di.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	app, err := di.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("starting: %w", err)
	}
	return app, nil
}
