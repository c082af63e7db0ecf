// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the metasearch CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/metasearch/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// creds holds API credentials resolved from .secrets/ and the
// environment at startup.
var creds secrets.Credentials

// logger is the process-wide structured logger; verbose mode switches it
// to development output.
var logger *zap.Logger

// rootCmd is the base command for the metasearch CLI.
var rootCmd = &cobra.Command{
	Use:   "metasearch",
	Short: "Intent-aware search across multiple providers",
	Long: `metasearch fans a query out to several search providers (Exa, Tavily,
Grok, OpenAlex, Semantic Scholar), deduplicates the results by canonical
URL, and on request classifies the query's intent to expand it into
sub-queries and rank results by intent-weighted scoring.

Providers without credentials are skipped, never fatal: any one
configured provider is enough to search.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			cfg := zap.NewProductionConfig()
			cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
			logger, err = cfg.Build()
		}
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}

		fileSecrets, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		creds = secrets.Resolve(fileSecrets)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./metasearch.yaml or ~/.config/metasearch/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("metasearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "metasearch"))
		}
	}

	viper.SetDefault("num_results", 5)
	viper.SetDefault("timeout", "10s")
	viper.SetDefault("max_parallel", 8)
	viper.SetDefault("user_agent", "metasearch/"+version)
	viper.SetDefault("history.max_list", 20)
	if home, err := os.UserHomeDir(); err == nil {
		viper.SetDefault("history.path", filepath.Join(home, ".metasearch", "history.db"))
	}

	viper.SetEnvPrefix("METASEARCH")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
