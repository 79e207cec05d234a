package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-generator/internal/currency"
	"github.com/rezonia/invoice-generator/internal/model"
	"github.com/rezonia/invoice-generator/internal/render"
)

var currenciesCmd = &cobra.Command{
	Use:   "currencies",
	Short: "List supported currencies",
	Long: `List the currency codes with dedicated display formatting.

Unknown codes are accepted in input but formatted as ` + currency.Fallback + `.`,
	Args: cobra.NoArgs,
	RunE: runCurrencies,
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List available invoice templates",
	Long: `List the HTML templates available for the "template" input field.

Templates come from the built-in set, or from render.template_dir when
configured (env: INVOICE_RENDER_TEMPLATE_DIR).`,
	Args: cobra.NoArgs,
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(currenciesCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runCurrencies(cmd *cobra.Command, args []string) error {
	all := currency.All()

	if outputFormat == "json" {
		return writeJSON(os.Stdout, all)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSYMBOL\tDECIMALS\tNAME")
	fmt.Fprintln(tw, "----\t------\t--------\t----")
	for _, c := range all {
		marker := ""
		if c.Code == model.DefaultCurrency {
			marker = " (default)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s%s\n", c.Code, c.Symbol, c.Decimals, c.Name, marker)
	}
	return tw.Flush()
}

func runTemplates(cmd *cobra.Command, args []string) error {
	var opts []render.HTMLOption
	if cfg.Render.TemplateDir != "" {
		opts = append(opts, render.WithTemplateDir(cfg.Render.TemplateDir))
	}

	names, err := render.NewHTMLRenderer(opts...).Templates()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}

	if outputFormat == "json" {
		return writeJSON(os.Stdout, map[string]any{
			"templates": names,
			"default":   cfg.Render.DefaultTemplate,
		})
	}

	for _, name := range names {
		if name == cfg.Render.DefaultTemplate {
			fmt.Printf("%s (default)\n", name)
			continue
		}
		fmt.Println(name)
	}
	return nil
}
