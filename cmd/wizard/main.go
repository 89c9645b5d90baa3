// Package main is the entry point for the casewizard CLI, the terminal
// client of the configuration gateway. It drives the step-by-step form
// wizard, the conversational assistant, and draft management.
package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Set up projects and cases against the casewizard gateway",
	Long: `wizard walks you through configuring a new project or case record.
Progress is saved to a local draft after every step, so an interrupted
session resumes where it left off. The intelligent mode hands the flow
to a conversational assistant instead of the fixed forms.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./casewizard.yaml or ~/.config/casewizard/config.yaml)")
	rootCmd.PersistentFlags().String("api-url", "", "gateway base URL")
	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("casewizard")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "casewizard"))
		}
	}

	viper.SetEnvPrefix("CASEWIZARD")
	viper.AutomaticEnv()

	viper.SetDefault("api_url", "http://localhost:8081")
	viper.SetDefault("data_dir", defaultDataDir())

	_ = viper.ReadInConfig()
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".casewizard"
	}
	return filepath.Join(home, ".casewizard")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
