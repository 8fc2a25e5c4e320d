// Package cli implements the retype command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dynkit/retype/internal/config"
)

var (
	cfgFile      string
	outputFormat string
	journalFile  string
)

var rootCmd = &cobra.Command{
	Use:   "retype",
	Short: "Covariant constructor propagation runtime",
	Long: "retype runs class hierarchies through the covariant wrapper protocol:\n" +
		"initializer arguments are captured per instance, and factory methods\n" +
		"authored on a base class rebuild their results as the subclass they\n" +
		"were reached through. Scenario files describe hierarchies and calls\n" +
		"declaratively; check and watch verify them, report reads the journal.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.retype/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "", "output format: text, json or table")
	rootCmd.PersistentFlags().StringVar(&journalFile, "journal", "", "journal database file")
}

// initConfig reads the config file and RETYPE_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, config.ConfigDirName))
		viper.SetConfigName(config.ConfigFileName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()
	viper.BindEnv("output")
	viper.BindEnv("journal")
	viper.BindEnv("scenario_dir")

	viper.SetDefault("output", config.DefaultOutput)
	viper.SetDefault("journal", config.DefaultJournalFile)

	// Missing config files are fine, the defaults above cover them.
	_ = viper.ReadInConfig()

	if outputFormat == "" {
		outputFormat = viper.GetString("output")
	}
	if journalFile == "" {
		journalFile = viper.GetString("journal")
	}
}

// scenarioDir returns the configured default scenario directory.
func scenarioDir() string {
	if dir := viper.GetString("scenario_dir"); dir != "" {
		return dir
	}
	return "."
}
