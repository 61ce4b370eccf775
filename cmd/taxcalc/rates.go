package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rgehrsitz/taxcalc/internal/rates"
)

func initRatesCommand() {
	ratesCmd := &cobra.Command{
		Use:   "rates",
		Short: "Inspect, validate and reload rate tables",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the rate table in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table := application.Engine.Rates.Current()
			format, _ := cmd.Flags().GetString("format")

			var (
				data []byte
				err  error
			)
			switch format {
			case "yaml":
				data, err = yaml.Marshal(table)
			case "json":
				data, err = json.MarshalIndent(table, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "# %d rates from %s\n", table.TaxYear, application.Engine.Rates.LoaderDescription())
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	showCmd.Flags().StringP("format", "f", "yaml", "Output format (yaml, json)")

	validateRatesCmd := &cobra.Command{
		Use:   "validate [rates-file]",
		Short: "Validate a rate table file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rates.FileLoader{Path: args[0]}.Load(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rate file %s is valid (tax year %d, %d state rates, %d sales rates)\n",
				args[0], table.TaxYear, len(table.StateIncome.Rates), len(table.Sales.Rates))
			return nil
		},
	}

	refreshCmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload rates from the configured sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := application.Engine.Rates.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d rates from %s\n", table.TaxYear, application.Engine.Rates.LoaderDescription())
			return nil
		},
	}

	ratesCmd.AddCommand(showCmd)
	ratesCmd.AddCommand(validateRatesCmd)
	ratesCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(ratesCmd)
}

func init() {
	initRatesCommand()
}
