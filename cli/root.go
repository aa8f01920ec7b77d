// Package cli implements the dataaccess command line on top of cobra.
package cli

import (
	"dataaccess/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// log a convenience alias to shorten code lines
var log = utils.Logger

// dotEnvFile the optional file with environment variables, relative to the working directory.
const dotEnvFile = ".env"

// loadDotEnv adds the variables of the file to the environment, variables already set are kept.
// It runs after the logger is configured so that the outcome respects the log level.
func loadDotEnv(path string) bool {
	if err := godotenv.Load(path); err != nil {
		log.Debug("No .env file found, using system environment variables", zap.String("path", path), zap.Error(err))
		return false
	}
	log.Debug("Loaded environment variables", zap.String("path", path))
	return true
}

// NewRootCmd creates the root command with all sub-commands attached.
func NewRootCmd() *cobra.Command {
	var logOptions utils.LogOptions

	rootCmd := &cobra.Command{
		Use:   "dataaccess",
		Short: "dataaccess - read tables from Google Drive and write them to S3 or PostgreSQL",
		Long: `dataaccess reads CSV, Parquet or JSON files shared with a Google Drive service account
(or stored locally) and writes them as CSV objects to S3 or copies them into PostgreSQL tables.

Credentials are read from the environment, a .env file in the working directory is loaded first.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			utils.InitLogger(logOptions)
			loadDotEnv(dotEnvFile)
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&logOptions.JSON, "json-logs", false, "Write logs in JSON format")
	flags.BoolVar(&logOptions.Dev, "dev-logs", false, "Write development logs with time stamps and source files")
	flags.BoolVarP(&logOptions.Verbose, "verbose", "v", false, "Enable DEBUG logs")
	flags.BoolVar(&logOptions.Trace, "trace", false, "Enable TRACE logs (very detailed)")

	rootCmd.AddCommand(newExampleCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newMetadataCmd())
	rootCmd.AddCommand(newCopyCmd())

	return rootCmd
}
