package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quarrydata/quarry/internal/log"
)

var (
	cfgFile      string
	outputFormat string
	logLevel     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "CLI for quarry columnar files",
	Long:  `quarry is a command line interface for inspecting and writing quarry columnar data files.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Configure(log.Config{Level: logLevel, Service: "quarry-cli"})
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.quarry/config)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".quarry/config" (without extension)
		configDir := filepath.Join(home, ".quarry")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("quarry")
	viper.AutomaticEnv() // read in environment variables that match

	viper.SetDefault("row_group_size", 0)
	viper.SetDefault("page_size", 0)

	// Missing config file is fine, the defaults above apply.
	_ = viper.ReadInConfig()
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}
