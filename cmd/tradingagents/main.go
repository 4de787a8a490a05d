// TradingAgents — multi-vendor China A-share market data access layer.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/arhow/tradingagents/internal/config"
	"github.com/arhow/tradingagents/internal/dataflows"
	"github.com/arhow/tradingagents/internal/indicator"
	"github.com/arhow/tradingagents/internal/logging"
	"github.com/arhow/tradingagents/internal/vendor"
	"github.com/arhow/tradingagents/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global state built in PersistentPreRunE.
var (
	cfg     *config.Config
	log     zerolog.Logger
	toolkit *dataflows.Toolkit
	router  *vendor.Router
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tradingagents",
	Short: "TradingAgents — multi-vendor market data access layer",
	Long: `TradingAgents data layer
Routes market data, news, and insider data requests across vendors with
rate-limit fallback, caches daily price series as CSV, computes
technical indicators, and aggregates stock discussion across Chinese
finance platforms.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		log, err = logging.New(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}

		toolkit, router, err = buildToolkit(cfg, log)
		if err != nil {
			return fmt.Errorf("failed to build toolkit: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(priceCmd)
	rootCmd.AddCommand(indicatorCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(insiderCmd)
	rootCmd.AddCommand(fundamentalsCmd)
	rootCmd.AddCommand(sentimentCmd)
	rootCmd.AddCommand(vendorsCmd)
}

// dateFlag parses the --date flag, defaulting to today in CST.
func dateFlag(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return utils.NowCST(), nil
	}
	return utils.ParseDate(s)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("TradingAgents %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Price Command ---

var priceCmd = &cobra.Command{
	Use:   "price [symbol]",
	Short: "Fetch daily price data as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")

		end := utils.NowCST()
		if endStr != "" {
			var err error
			if end, err = utils.ParseDate(endStr); err != nil {
				return err
			}
		}
		start := end.AddDate(0, -1, 0)
		if startStr != "" {
			var err error
			if start, err = utils.ParseDate(startStr); err != nil {
				return err
			}
		}

		out, err := toolkit.PriceData(cmd.Context(), args[0], start, end)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	priceCmd.Flags().String("start", "", "window start (YYYY-MM-DD, default: one month back)")
	priceCmd.Flags().String("end", "", "window end (YYYY-MM-DD, default: today)")
}

// --- Indicator Command ---

var indicatorCmd = &cobra.Command{
	Use:   "indicator [symbol] [name]",
	Short: "Report a technical indicator over a trailing window",
	Long: "Report a technical indicator over a trailing window.\n\nSupported indicators:\n  " +
		fmt.Sprint(indicator.Supported()),
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		curr, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		lookBack, _ := cmd.Flags().GetInt("look-back")
		online, _ := cmd.Flags().GetBool("online")

		report, err := toolkit.IndicatorReport(cmd.Context(), args[0], args[1], curr, lookBack, online)
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	indicatorCmd.Flags().String("date", "", "as-of date (YYYY-MM-DD, default: today)")
	indicatorCmd.Flags().Int("look-back", 30, "window length in days")
	indicatorCmd.Flags().Bool("online", true, "fetch series from vendors instead of offline files")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [symbol]",
	Short: "Report company news, or global news with --global",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		curr, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		lookBack, _ := cmd.Flags().GetInt("look-back")
		global, _ := cmd.Flags().GetBool("global")

		var report string
		if global {
			report, err = toolkit.GlobalNews(cmd.Context(), curr, lookBack)
		} else {
			if len(args) == 0 {
				return fmt.Errorf("a symbol is required unless --global is set")
			}
			name, _ := cmd.Flags().GetString("name")
			report, err = toolkit.CompanyNews(cmd.Context(), args[0], name, curr, lookBack)
		}
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	newsCmd.Flags().String("date", "", "as-of date (YYYY-MM-DD, default: today)")
	newsCmd.Flags().Int("look-back", 7, "window length in days")
	newsCmd.Flags().Bool("global", false, "report global macro news instead of company news")
	newsCmd.Flags().String("name", "", "company display name, improves relatedness matching")
}

// --- Insider Command ---

var insiderCmd = &cobra.Command{
	Use:   "insider",
	Short: "Report insider sentiment or transactions",
}

var insiderSentimentCmd = &cobra.Command{
	Use:   "sentiment [ticker]",
	Short: "Report monthly insider sentiment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		curr, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		lookBack, _ := cmd.Flags().GetInt("look-back")

		report, err := toolkit.InsiderSentiment(cmd.Context(), args[0], curr, lookBack)
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

var insiderTransactionsCmd = &cobra.Command{
	Use:   "transactions [ticker]",
	Short: "Report insider transaction filings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		curr, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		lookBack, _ := cmd.Flags().GetInt("look-back")

		report, err := toolkit.InsiderTransactions(cmd.Context(), args[0], curr, lookBack)
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{insiderSentimentCmd, insiderTransactionsCmd} {
		c.Flags().String("date", "", "as-of date (YYYY-MM-DD, default: today)")
		c.Flags().Int("look-back", 30, "window length in days")
	}
	insiderCmd.AddCommand(insiderSentimentCmd)
	insiderCmd.AddCommand(insiderTransactionsCmd)
}

// --- Fundamentals Command ---

var fundamentalsCmd = &cobra.Command{
	Use:   "fundamentals",
	Short: "Report financial statements from the offline SimFin dataset",
}

func newStatementCmd(use, short string, report func(cmd *cobra.Command, ticker, freq string, curr time.Time) (string, error)) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			curr, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			freq, _ := cmd.Flags().GetString("freq")

			out, err := report(cmd, args[0], freq, curr)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	c.Flags().String("date", "", "as-of date (YYYY-MM-DD, default: today)")
	c.Flags().String("freq", "annual", "reporting frequency (annual, quarterly)")
	return c
}

func init() {
	fundamentalsCmd.AddCommand(
		newStatementCmd("balance-sheet [ticker]", "Report the latest balance sheet",
			func(cmd *cobra.Command, ticker, freq string, curr time.Time) (string, error) {
				return toolkit.BalanceSheet(cmd.Context(), ticker, freq, curr)
			}),
		newStatementCmd("cashflow [ticker]", "Report the latest cash flow statement",
			func(cmd *cobra.Command, ticker, freq string, curr time.Time) (string, error) {
				return toolkit.CashFlow(cmd.Context(), ticker, freq, curr)
			}),
		newStatementCmd("income [ticker]", "Report the latest income statement",
			func(cmd *cobra.Command, ticker, freq string, curr time.Time) (string, error) {
				return toolkit.IncomeStatement(cmd.Context(), ticker, freq, curr)
			}),
	)
}

// --- Sentiment Command ---

var sentimentCmd = &cobra.Command{
	Use:   "sentiment [symbol] [name]",
	Short: "Aggregate stock discussion across Chinese finance platforms",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		asOf, err := dateFlag(cmd)
		if err != nil {
			return err
		}
		out, err := toolkit.StockSocialSentiment(cmd.Context(), args[0], args[1], asOf)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	},
}

func init() {
	sentimentCmd.Flags().String("date", "", "as-of date (YYYY-MM-DD, default: today)")
}

// --- Vendors Command ---

var vendorsCmd = &cobra.Command{
	Use:   "vendors",
	Short: "Show vendor routing chains and credential status",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Routing chains:")
		for _, m := range vendor.AllMethods() {
			fmt.Printf("  %-22s %v\n", m, router.Chain(m))
		}

		fmt.Println("\nCredentials:")
		for _, status := range config.CheckAPIKeys(cfg) {
			state := "not set"
			if status.IsSet {
				state = fmt.Sprintf("%s (%s)", status.Masked, status.Source)
			}
			fmt.Printf("  %-18s %s\n", status.Name, state)
		}
	},
}
