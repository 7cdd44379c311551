// Package commands provides CLI commands for estatechat.
package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/diogo/estatechat/internal/config"
)

var (
	// Global flags
	apiURLFlag  string
	verboseFlag bool

	// One-shot query flags
	outputFlag string
	fileFlag   string
	pdfFlag    bool
	rawFlag    bool
	jsonFlag   bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"

	deps = NewDependencies()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "estatechat [question]",
	Short: "Terminal client for the real estate analytics service",
	Long: `estatechat asks questions to a real estate analytics service and renders
the answer in the terminal: a summary, a trend chart and a data table.
A spreadsheet (.xlsx, .xls or .csv) can be attached as the data source.

Examples:
  estatechat chat                                 Start interactive chat
  estatechat "Average price in Wakad since 2020"  Ask a single question
  estatechat "Compare Aundh and Wakad" -f data.csv
  estatechat "Price trend in Baner" --pdf         Also save a PDF report
  echo "Top areas by demand" | estatechat         Read the question from stdin
  estatechat "Price trend" -o answer.md           Save the answer to a file
  estatechat config set api_base_url http://localhost:8000`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Fprintf(deps.Stdout, "estatechat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		question, err := readQuestion(args)
		if err != nil {
			return err
		}
		if question == "" {
			return cmd.Help()
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runQuery(cmd.Context(), deps, cfg, question, queryOptions{
			File:   fileFlag,
			Output: outputFlag,
			PDF:    pdfFlag,
			Raw:    rawFlag,
			JSON:   jsonFlag,
		})
	},
}

// readQuestion takes the question from the argument or, without one, from
// piped stdin
func readQuestion(args []string) (string, error) {
	if len(args) > 0 {
		return strings.TrimSpace(args[0]), nil
	}

	if f, ok := deps.Stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", nil
		}
	}

	data, err := io.ReadAll(deps.Stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// loadConfig returns the effective config: file, then .env and environment,
// then flags
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if apiURLFlag != "" {
		if err := config.Set(&cfg, "api_base_url", apiURLFlag); err != nil {
			return cfg, err
		}
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	return cfg, nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Analytics service URL (overrides config and "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Log requests and responses")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the answer to a file (.md, .json or .yaml)")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Spreadsheet to analyze (.xlsx, .xls or .csv)")
	rootCmd.Flags().BoolVar(&pdfFlag, "pdf", false, "Also save the analysis as a PDF report")
	rootCmd.Flags().BoolVar(&rawFlag, "raw", false, "Print only the summary text, without decoration")
	rootCmd.Flags().BoolVar(&jsonFlag, "json", false, "Print the analysis as JSON")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(configCmd)
}
