package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
)

var (
	quoteWidth   string
	quoteHeight  string
	quoteOptions []string
	quoteLocal   bool
)

var quoteCmd = &cobra.Command{
	Use:   "quote <product-id>",
	Short: "Price a product at the given size and options",
	Long: `Price a product the way the configurator does: the remote pricing
service when one is configured, the local formula otherwise or on failure.

Options not given on the command line take the product's defaults.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVar(&quoteWidth, "width", "", "width in inches, e.g. 42 or 36.25 [REQUIRED]")
	quoteCmd.Flags().StringVar(&quoteHeight, "height", "", "height in inches [REQUIRED]")
	quoteCmd.Flags().StringArrayVarP(&quoteOptions, "option", "o", nil, `option selection as "Name=Value" (repeatable)`)
	quoteCmd.Flags().BoolVar(&quoteLocal, "local", false, "use the local formula only")
	_ = quoteCmd.MarkFlagRequired("width")
	_ = quoteCmd.MarkFlagRequired("height")
}

func runQuote(cmd *cobra.Command, args []string) error {
	width, err := decimal.NewFromString(quoteWidth)
	if err != nil {
		return fmt.Errorf("invalid width %q", quoteWidth)
	}
	height, err := decimal.NewFromString(quoteHeight)
	if err != nil {
		return fmt.Errorf("invalid height %q", quoteHeight)
	}
	overrides, err := parseOptions(quoteOptions)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app) error {
		product, err := a.catalog.FindByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		options := make(map[string]string, len(product.Options))
		for _, o := range product.Options {
			options[o.Name] = o.DefaultValue()
		}
		for name, value := range overrides {
			options[name] = value
		}

		svc := a.pricing
		if quoteLocal {
			svc = appconfigurator.NewPricingService(a.catalog, nil, a.pricing.Local(), nil)
		}
		quote, err := svc.QuoteProduct(cmd.Context(), appconfigurator.QuoteRequest{
			ProductID: product.ID,
			Width:     width,
			Height:    height,
			Options:   options,
		})
		if err != nil {
			return err
		}

		return render(cmd, quote, func(w io.Writer) {
			fmt.Fprintf(w, "PRODUCT\t%s\n", product.Title)
			fmt.Fprintf(w, "SIZE\t%s x %s\n", quote.Width.String(), quote.Height.String())
			for _, o := range product.Options {
				fmt.Fprintf(w, "%s\t%s\n", strings.ToUpper(o.Name), options[o.Name])
			}
			fmt.Fprintf(w, "PRICE\t%s (%s)\n", quote.Price.StringFixed(2), quote.PriceSource)
		})
	})
}

func parseOptions(raw []string) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid option %q, want Name=Value", kv)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
