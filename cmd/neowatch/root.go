package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"neo-overwatch/pkg/config"
	"neo-overwatch/pkg/logger"
)

var (
	cfg    *config.Config
	appLog *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "neowatch",
	Short: "Near-Earth object close approach explorer",
	Long: "neowatch links near-Earth objects to their close approaches to Earth and answers\n" +
		"lookups and filtered queries from the command line, over HTTP and over NATS.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLog != nil {
			appLog.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default .neowatch.yaml)")
	flags.String("source", config.SourceFiles, "record source: files or sqlite")
	flags.String("neos", "", "path to the NEO CSV file")
	flags.String("cad", "", "path to the close approach JSON file")
	flags.String("sqlite", "", "path to the sqlite catalog")
	flags.String("log-mode", "", "log mode: dev or prod")

	_ = viper.BindPFlag("source", flags.Lookup("source"))
	_ = viper.BindPFlag("neos_path", flags.Lookup("neos"))
	_ = viper.BindPFlag("cad_path", flags.Lookup("cad"))
	_ = viper.BindPFlag("sqlite_path", flags.Lookup("sqlite"))
	_ = viper.BindPFlag("log_mode", flags.Lookup("log-mode"))
}

func initConfig() {
	if _, err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	config.SetDefaults(viper.GetViper())

	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".neowatch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	// No config file is fine; defaults and environment still apply.
	_ = viper.ReadInConfig()
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	appLog, err = logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	if used := viper.ConfigFileUsed(); used != "" {
		appLog.Debug("using config file", "path", used)
	}
	return nil
}
