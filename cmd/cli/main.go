package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/fundflow/internal/adapter/http/dto"
	"github.com/iho/fundflow/internal/domain"
	"github.com/iho/fundflow/internal/engine"
	"github.com/iho/fundflow/internal/infrastructure/config"
	"github.com/iho/fundflow/internal/infrastructure/logger"
	"github.com/iho/fundflow/internal/infrastructure/postgres"
)

const dateLayout = "2006-01-02"

type rootOptions struct {
	baseURL string
	timeout time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fundctl",
		Short:         "Fund distribution and returns toolkit",
		Long:          `Run capital call, waterfall and attribution calculations offline, or talk to a running fundflow API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the fundflow API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		allocateCmd(),
		waterfallCmd(),
		attributionCmd(),
		withholdingCmd(),
		fundCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}

func allocateCmd() *cobra.Command {
	var (
		amount      string
		commitments []string
	)

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate a capital call pro rata to commitments",
		Example: `  fundctl allocate --amount 100 --commitment lp-a=60 --commitment lp-b=40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := parseAmount("amount", amount)
			if err != nil {
				return err
			}
			if err := domain.ValidatePositiveAmount(total); err != nil {
				return err
			}
			table, err := parseCommitments(commitments)
			if err != nil {
				return err
			}
			if err := domain.ValidateCommitments(table); err != nil {
				return err
			}

			allocations := engine.AllocateCapitalCall(total, table)
			return printJSON(cmd.OutOrStdout(), dto.CapitalCallResponse{
				Amount:      total,
				Allocations: dto.AllocationsFromDomain(allocations),
			})
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "Total amount to call")
	cmd.Flags().StringArrayVar(&commitments, "commitment", nil, "Investor commitment as id=amount (repeatable)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func waterfallCmd() *cobra.Command {
	var (
		proceeds    string
		preferred   string
		carry       string
		catchUp     string
		feeOffset   bool
		commitments []string
	)

	cmd := &cobra.Command{
		Use:     "waterfall",
		Short:   "Run the four-tier distribution waterfall",
		Example: `  fundctl waterfall --proceeds 130 --commitment lp-a=60 --commitment lp-b=40`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				in  domain.WaterfallInput
				err error
			)
			if in.TotalProceeds, err = parseAmount("proceeds", proceeds); err != nil {
				return err
			}
			if in.PreferredReturnPct, err = parseAmount("preferred-return", preferred); err != nil {
				return err
			}
			if in.CarriedInterestPct, err = parseAmount("carry", carry); err != nil {
				return err
			}
			if in.CatchUpPct, err = parseAmount("catch-up", catchUp); err != nil {
				return err
			}
			if in.Commitments, err = parseCommitments(commitments); err != nil {
				return err
			}
			in.ManagementFeeOffset = feeOffset

			if err := domain.ValidateWaterfallInput(in); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), dto.WaterfallFromDomain(engine.CalculateWaterfall(in)))
		},
	}

	defaults := domain.DefaultFundTerms()
	cmd.Flags().StringVar(&proceeds, "proceeds", "", "Total proceeds to distribute")
	cmd.Flags().StringVar(&preferred, "preferred-return", defaults.PreferredReturnPct.String(), "Preferred return in percent")
	cmd.Flags().StringVar(&carry, "carry", defaults.CarriedInterestPct.String(), "Carried interest in percent")
	cmd.Flags().StringVar(&catchUp, "catch-up", defaults.CatchUpPct.String(), "GP catch-up in percent")
	cmd.Flags().BoolVar(&feeOffset, "fee-offset", false, "Management fee offset")
	cmd.Flags().StringArrayVar(&commitments, "commitment", nil, "Investor commitment as id=amount (repeatable)")
	_ = cmd.MarkFlagRequired("proceeds")

	return cmd
}

func attributionCmd() *cobra.Command {
	var (
		investorID  string
		domicile    string
		commitment  string
		called      string
		distributed string
		onboarded   string
		asOf        string
		taxRate     string
		hurdle      string
	)

	cmd := &cobra.Command{
		Use:     "attribution",
		Short:   "Compute performance metrics for one investor",
		Example: `  fundctl attribution --commitment 10 --called 10 --onboarded 2025-06-30 --as-of 2026-06-30 --domicile US`,
		RunE: func(cmd *cobra.Command, args []string) error {
			record := domain.InvestorRecord{InvestorID: investorID, Domicile: domicile}

			var err error
			if record.Commitment, err = parseAmount("commitment", commitment); err != nil {
				return err
			}
			if record.CalledCapital, err = parseAmount("called", called); err != nil {
				return err
			}
			if record.DistributionsReceived, err = parseAmount("distributed", distributed); err != nil {
				return err
			}
			if onboarded != "" {
				if record.OnboardedAt, err = time.Parse(dateLayout, onboarded); err != nil {
					return fmt.Errorf("onboarded: %w", err)
				}
			}
			if taxRate != "" {
				rate, err := parseAmount("tax-rate", taxRate)
				if err != nil {
					return err
				}
				record.EffectiveTaxRatePct = &rate
			}

			when := time.Now().UTC()
			if asOf != "" {
				if when, err = time.Parse(dateLayout, asOf); err != nil {
					return fmt.Errorf("as-of: %w", err)
				}
			}

			cfg := engine.DefaultAttributionConfig()
			if hurdle != "" {
				h, err := parseAmount("hurdle", hurdle)
				if err != nil {
					return err
				}
				if err := domain.ValidateRatePct("hurdle", h); err != nil {
					return err
				}
				cfg.HurdleRatePct = h.InexactFloat64()
			}

			m := engine.NewAttributor(cfg).Calculate(record, when)
			return printJSON(cmd.OutOrStdout(), dto.AttributionFromDomain(m))
		},
	}

	cmd.Flags().StringVar(&investorID, "investor", "investor", "Investor ID to report")
	cmd.Flags().StringVar(&domicile, "domicile", "", "Investor domicile (country name or ISO code)")
	cmd.Flags().StringVar(&commitment, "commitment", "", "Committed capital")
	cmd.Flags().StringVar(&called, "called", "", "Called capital")
	cmd.Flags().StringVar(&distributed, "distributed", "0", "Distributions received")
	cmd.Flags().StringVar(&onboarded, "onboarded", "", "Onboarding date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&asOf, "as-of", "", "Valuation date (YYYY-MM-DD), defaults to today")
	cmd.Flags().StringVar(&taxRate, "tax-rate", "", "Effective tax rate override in percent")
	cmd.Flags().StringVar(&hurdle, "hurdle", "", "Hurdle rate override in percent")
	_ = cmd.MarkFlagRequired("commitment")
	_ = cmd.MarkFlagRequired("called")

	return cmd
}

func withholdingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withholding <domicile>",
		Short: "Show the treaty withholding rate for a domicile",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domicile := strings.Join(args, " ")
			_, listed := engine.LookupWithholdingRate(domicile)

			return printJSON(cmd.OutOrStdout(), dto.WithholdingResponse{
				Domicile: domicile,
				RatePct:  engine.WithholdingTaxRate(domicile),
				Default:  !listed,
			})
		},
	}
}

func fundCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Fund operations against a running API",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile <fund-id>",
		Short: "Check a fund's investor balances against its call and distribution history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reconcileFund(cmd.OutOrStdout(), opts, args[0])
		},
	})

	return cmd
}

func reconcileFund(out io.Writer, opts *rootOptions, fundID string) error {
	client := &http.Client{Timeout: opts.timeout}
	endpoint := strings.TrimRight(opts.baseURL, "/") + "/api/v1/funds/" + url.PathEscape(fundID) + "/reconciliation"

	resp, err := client.Get(endpoint)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr dto.ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("reconciliation failed (status %d): %s: %s", resp.StatusCode, apiErr.Error, apiErr.Message)
		}
		return fmt.Errorf("reconciliation failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var report dto.ReconciliationResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	if err := printJSON(out, report); err != nil {
		return err
	}

	if !report.Consistent {
		return fmt.Errorf("fund %s is inconsistent: %d discrepancies", report.FundID, report.Discrepancies)
	}
	return nil
}

func migrateCmd() *cobra.Command {
	var (
		databaseURL    string
		migrationsPath string
	)

	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL == "" {
				databaseURL = cfg.DatabaseURL
			}
			if migrationsPath == "" {
				migrationsPath = cfg.MigrationsPath
			}

			log := logger.NewWithWriter(logger.Config{Level: cfg.LogLevel, Format: "console"}, cmd.ErrOrStderr())
			return runMigration(args[0], databaseURL, migrationsPath, log)
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Database URL (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&migrationsPath, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	return cmd
}

func runMigration(direction, databaseURL, migrationsPath string, log zerolog.Logger) error {
	switch direction {
	case "up":
		return postgres.RunMigrations(databaseURL, migrationsPath, log)
	case "down":
		return postgres.RunMigrationsDown(databaseURL, migrationsPath, log)
	default:
		return fmt.Errorf("unknown migration direction %q", direction)
	}
}

// parseCommitments parses id=amount pairs in the order given.
func parseCommitments(pairs []string) ([]domain.InvestorCommitment, error) {
	result := make([]domain.InvestorCommitment, 0, len(pairs))
	for _, pair := range pairs {
		id, amount, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("commitment %q: expected id=amount", pair)
		}
		value, err := parseAmount("commitment "+id, amount)
		if err != nil {
			return nil, err
		}
		result = append(result, domain.InvestorCommitment{
			InvestorID: strings.TrimSpace(id),
			Commitment: value,
		})
	}
	return result, nil
}

func parseAmount(field, value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", field, value)
	}
	return d, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
