// Package main provides the firecrown CLI application entry point.
// firecrown maps cosmological parameters between the conventions of different
// codes and evaluates configured two-point likelihoods.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/am610/firecrown/internal/logger"
	"github.com/am610/firecrown/internal/output"
)

var (
	logLevel string
	logFile  string
	testMode bool
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "firecrown",
		Short: "Firecrown - cosmological likelihood framework",
		Long: `Firecrown connects sampler frameworks with cosmology codes.
It maps parameter conventions between codes and evaluates configured
two-point analyses into a single log-likelihood.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")

	// Bind flags to viper
	for _, name := range []string{"log-level", "log-file", "test-mode"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", name, err)
			os.Exit(1)
		}
	}

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newMapCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newEvaluateCmd())

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints a command failure as a single error line.
func reportError(w io.Writer, err error) {
	output.NewPrinter(output.WithWriter(w), output.WithStyles(output.NewLipglossStyles())).Error(err.Error())
}

func init() {
	viper.SetEnvPrefix("FIRECROWN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Configure logger before any command execution
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	// Flags win over FIRECROWN_* variables, which win over defaults.
	if err := logger.Configure(viper.GetString("log-level"), viper.GetString("log-file"), viper.GetBool("test-mode")); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// loadDotEnv exports the FIRECROWN_* entries of a .env file that are not
// already set in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read .env file %s: %w", path, err)
	}

	envMap, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return fmt.Errorf("failed to parse .env file %s: %w", path, err)
	}

	for key, value := range envMap {
		if !strings.HasPrefix(key, "FIRECROWN_") {
			continue
		}
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
	}
	return nil
}
