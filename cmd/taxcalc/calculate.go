package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rgehrsitz/taxcalc/internal/config"
	"github.com/rgehrsitz/taxcalc/internal/domain"
	"github.com/rgehrsitz/taxcalc/internal/output"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Calculate taxes for a tax form",
	Long: `Calculate federal, state and sales tax for a tax form file (YAML or JSON).

Example form:
  income: 75000
  filingStatus: SINGLE
  state: TX
  saleAmount: 1000
  deductions:
    - type: STANDARD_DEDUCTION
      amount: 14600`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		form, err := parser.LoadTaxForm(args[0])
		if err != nil {
			return err
		}

		result, err := application.Engine.Calculate(cmd.Context(), *form)
		if err != nil {
			return err
		}

		return render(cmd, &output.Report{Result: result})
	},
}

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Build a quarterly estimated tax schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		incomeText, _ := cmd.Flags().GetString("income")
		if incomeText == "" {
			return fmt.Errorf("--income is required")
		}
		income, err := decimal.NewFromString(strings.ReplaceAll(incomeText, ",", ""))
		if err != nil {
			return fmt.Errorf("invalid --income %q: %w", incomeText, err)
		}
		statusText, _ := cmd.Flags().GetString("filing-status")
		state, _ := cmd.Flags().GetString("state")

		schedule, err := application.Engine.EstimateQuarterly(cmd.Context(), income, domain.FilingStatus(statusText), state)
		if err != nil {
			return err
		}

		return render(cmd, &output.Report{Schedule: schedule})
	},
}

var deductionsCmd = &cobra.Command{
	Use:   "deductions [input-file]",
	Short: "Validate a deduction list",
	Long:  "Validate a deduction list. The file may be a bare list or a document with a top-level deductions key.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		deductions, err := parser.LoadDeductions(args[0])
		if err != nil {
			return err
		}

		validation := application.Engine.ValidateDeductions(deductions)
		return render(cmd, &output.Report{Validation: &validation})
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a tax form file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		if _, err := parser.LoadTaxForm(args[0]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tax form %s is valid\n", args[0])
		return nil
	},
}

// render writes the report in the format named by --format
func render(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	data, err := output.Render(format, report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func init() {
	formatHelp := "Output format (" + strings.Join(output.FormatterNames(), ", ") + ")"

	calculateCmd.Flags().StringP("format", "f", "console", formatHelp)

	estimateCmd.Flags().String("income", "", "Expected annual income (required)")
	estimateCmd.Flags().String("filing-status", string(domain.FilingSingle), "Filing status (SINGLE, MARRIED, HEAD_OF_HOUSEHOLD, QUALIFYING_WIDOW)")
	estimateCmd.Flags().String("state", "", "Two-letter state code (optional)")
	estimateCmd.Flags().StringP("format", "f", "console", formatHelp)

	deductionsCmd.Flags().StringP("format", "f", "console", formatHelp)

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(deductionsCmd)
	rootCmd.AddCommand(validateCmd)
}
