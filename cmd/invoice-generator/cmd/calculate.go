package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/assembler"
	"github.com/rezonia/invoice-generator/internal/calculator"
	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/model"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate [file]",
	Short: "Show invoice totals without rendering",
	Long: `Validate an input file and print its line totals, subtotal, discount,
tax and grand total. Nothing is rendered or stored.

Examples:
  invoice-generator calculate order.json
  invoice-generator calculate - -f table < order.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)
}

func runCalculate(cmd *cobra.Command, args []string) error {
	in, err := readInput(args[0])
	if err != nil {
		return err
	}
	if err := newCheckGenerator().Check(in); err != nil {
		return err
	}

	details := in.Details()
	code := details.Currency
	if code == "" {
		code = model.DefaultCurrency
	}
	amounts := calculator.Calculate(assembler.NormalizeItems(in.Items), details.TaxRate, details.DiscountRate)

	switch outputFormat {
	case "json":
		return writeJSON(os.Stdout, CalculationResult{
			Currency:       code,
			FormattedTotal: currency.Format(amounts.Total, code),
			InvoiceAmounts: amounts,
		})
	case "table":
		return printAmounts(amounts, code)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func printAmounts(amounts model.InvoiceAmounts, code string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESCRIPTION\tQTY\tUNIT\tPRICE\tTOTAL")
	fmt.Fprintln(tw, "-----------\t---\t----\t-----\t-----")
	for _, item := range amounts.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			item.Description,
			item.Quantity.String(),
			item.Unit,
			currency.Format(item.UnitPrice, code),
			currency.Format(item.LineTotal, code),
		)
	}
	fmt.Fprintln(tw, "\t\t\t\t")
	fmt.Fprintf(tw, "\t\t\tSubtotal\t%s\n", currency.Format(amounts.Subtotal, code))
	if !amounts.Discount.IsZero() {
		fmt.Fprintf(tw, "\t\t\tDiscount (%s%%)\t-%s\n", amounts.DiscountRate.String(), currency.Format(amounts.Discount, code))
	}
	fmt.Fprintf(tw, "\t\t\tTax (%s%%)\t%s\n", amounts.TaxRate.String(), currency.Format(amounts.Tax, code))
	fmt.Fprintf(tw, "\t\t\tTotal\t%s\n", currency.Format(amounts.Total, code))
	return tw.Flush()
}

// CalculationResult holds the totals for one input
type CalculationResult struct {
	Currency       string `json:"currency"`
	FormattedTotal string `json:"formattedTotal"`
	model.InvoiceAmounts
}
