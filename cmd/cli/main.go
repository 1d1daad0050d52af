package main

import (
	"context"
	"fmt"
	"os"

	"aline/adapters/csvsource"
	"aline/adapters/excel"
	"aline/adapters/stats/glm"
	"aline/app"
	"aline/domain/causal"
	"aline/internal/balance"
	"aline/internal/config"
	"aline/internal/errors"
	"aline/internal/report"
	"aline/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "aline-cli",
		Short: "IPTW analysis of arterial catheterization and 28-day mortality",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newBalanceCmd(),
		newSimulateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] %v\n", errors.GetCode(err), err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [csv-file]",
		Short: "Estimate the marginal odds ratio via inverse-probability weighting",
		Long: `Fit the propensity model, weight the cohort, and estimate the marginal
odds ratio of arterial catheterization on 28-day mortality with a
robust confidence interval.

Example: aline-cli analyze full_cohort_data.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Data.CSVPath = args[0]
			}
			return runAnalyze(cmd.Context(), cfg)
		},
	}
	return cmd
}

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [csv-file]",
		Short: "Audit covariate balance before and after weighting",
		Long: `Compute standardized mean differences between the exposed and
unexposed groups, unweighted and after inverse-probability weighting.

Example: aline-cli balance full_cohort_data.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Data.CSVPath = args[0]
			}
			return runBalance(cmd.Context(), cfg)
		},
	}
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var n int
	var seed int64
	var effect float64

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the estimator against a synthetic cohort with known effect",
		Long: `Generate a cohort with a known treatment effect and confounded
assignment, then estimate the effect back. Useful as a smoke test of
the full pipeline.

Example: aline-cli simulate --n 5000 --seed 42 --effect 0.7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd.Context(), n, seed, effect)
		},
	}

	cmd.Flags().IntVar(&n, "n", 5000, "Cohort size")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic generation")
	cmd.Flags().Float64Var(&effect, "effect", 0.7, "True log odds ratio of treatment")

	return cmd
}

func runAnalyze(ctx context.Context, cfg *config.Config) error {
	reader := csvsource.NewReader(cfg.Data.CSVPath)
	study := app.ArterialLineStudy()

	data, err := reader.Load(study.Schema)
	if err != nil {
		return errors.Wrap(err, "failed to load cohort")
	}

	svc := app.NewCausalEffectService(glm.NewFitterAdapter())
	result, err := svc.EstimateEffect(ctx, app.EffectRequest{
		Data:       data,
		Study:      study,
		Weights:    cfg.Analysis.Weights,
		Confidence: cfg.Analysis.Confidence,
	})
	if err != nil {
		return errors.Wrap(err, "estimation failed")
	}

	est := result.Estimate
	fmt.Printf("Cohort rows: %d (complete cases in propensity model: %d, in outcome model: %d)\n",
		data.RowCount(), est.PreparedRows, est.FitRows)
	fmt.Printf("Propensity range: [%.4f, %.4f], mean %.4f\n",
		est.Propensity.Min, est.Propensity.Max, est.Propensity.Mean)
	fmt.Println()

	effectTable := report.EffectTable(est)
	fmt.Print(report.RenderText(effectTable))

	tables := []report.Table{effectTable}
	if cfg.Report.HTMLFile != "" {
		if err := os.WriteFile(cfg.Report.HTMLFile, report.RenderHTML(tables...), 0644); err != nil {
			return errors.Wrap(err, "failed to write HTML report")
		}
		fmt.Printf("\nHTML report saved to %s\n", cfg.Report.HTMLFile)
	}
	if cfg.Report.ExcelFile != "" {
		writer := excel.NewReportWriter(cfg.Report.ExcelFile)
		if err := writer.Write(tables...); err != nil {
			return errors.Wrap(err, "failed to write Excel report")
		}
		fmt.Printf("Excel report saved to %s\n", cfg.Report.ExcelFile)
	}
	return nil
}

func runBalance(ctx context.Context, cfg *config.Config) error {
	reader := csvsource.NewReader(cfg.Data.CSVPath)
	study := app.ArterialLineStudy()

	data, err := reader.Load(study.Schema)
	if err != nil {
		return errors.Wrap(err, "failed to load cohort")
	}

	svc := app.NewCausalEffectService(glm.NewFitterAdapter())
	result, err := svc.EstimateEffect(ctx, app.EffectRequest{
		Data:       data,
		Study:      study,
		Weights:    cfg.Analysis.Weights,
		Confidence: cfg.Analysis.Confidence,
	})
	if err != nil {
		return errors.Wrap(err, "estimation failed")
	}

	rows, err := balance.Compute(ctx, result.Prepared, study.Exposure, study.Covariates, result.Weights)
	if err != nil {
		return errors.Wrap(err, "balance audit failed")
	}

	fmt.Print(report.RenderText(report.BalanceTable(rows)))
	return nil
}

func runSimulate(ctx context.Context, n int, seed int64, effect float64) error {
	cohort, err := testkit.Generate(testkit.CohortConfig{
		N:      n,
		Seed:   seed,
		Beta:   []float64{-0.3, 0.8, -0.5},
		Theta0: -1.0,
		Theta1: effect,
	})
	if err != nil {
		return errors.Wrap(err, "cohort generation failed")
	}

	svc := app.NewCausalEffectService(glm.NewFitterAdapter())
	result, err := svc.EstimateEffect(ctx, app.EffectRequest{
		Data:    cohort.Frame,
		Study:   testkit.Study(2),
		Weights: causal.DefaultWeightConfig(),
	})
	if err != nil {
		return errors.Wrap(err, "estimation failed")
	}

	est := result.Estimate
	fmt.Printf("True log OR:      %.4f\n", effect)
	fmt.Printf("Estimated log OR: %.4f (robust SE %.4f)\n", est.Effect.LogOdds, est.Effect.RobustSE)
	fmt.Println()
	fmt.Print(report.RenderText(report.EffectTable(est)))
	return nil
}
