package cmd

import (
	"os"
	"path/filepath"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	demangler string
	arch32    bool
	dotPath   string
	minWeight uint64
)

var rootCmd = &cobra.Command{
	Use:   "binsize <binary> [watch_symbol]",
	Short: "Explain what makes up a linked executable's size",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAnalyze,
}

// Execute runs the root command, exiting 1 on fatal error per spec §6.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("binsize")
		os.Exit(1)
	}
}

func init() {
	log.SetHandler(clihandler.Default)
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/binsize/config.yaml)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "V", false, "verbose diagnostic output")
	rootCmd.Flags().StringVar(&demangler, "demangler", "c++filt", "external demangler binary")
	rootCmd.Flags().BoolVar(&arch32, "32", false, "target is a 32-bit binary (default 64-bit)")
	rootCmd.Flags().StringVar(&dotPath, "dot", "graph.dot", "path to write the dominator-weighted dot graph")
	rootCmd.Flags().Uint64Var(&minWeight, "min-max-weight", 30000, "prune dot-graph edges whose target max_weight is at or below this value")

	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("demangler", rootCmd.Flags().Lookup("demangler"))
	viper.BindPFlag("dot", rootCmd.Flags().Lookup("dot"))
	viper.BindPFlag("min-max-weight", rootCmd.Flags().Lookup("min-max-weight"))
	viper.SetEnvPrefix("binsize")
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.SetConfigFile(filepath.Join(home, ".config", "binsize", "config.yaml"))
	} else {
		return
	}
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded config")
	}
}
