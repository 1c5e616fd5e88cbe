package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shadecraft/backend/internal/infrastructure/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the product catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog products with their size ranges and options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app) error {
			products, err := a.catalog.FindAll(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd, products, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tTITLE\tBASE PRICE\tWIDTH\tHEIGHT\tOPTIONS")
				for _, p := range products {
					names := make([]string, 0, len(p.Options))
					for _, o := range p.Options {
						names = append(names, o.Name)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%d-%d\t%d-%d\t%s\n",
						p.ID, p.Title, p.BasePrice.StringFixed(2),
						p.WidthRange.Min, p.WidthRange.Max,
						p.HeightRange.Min, p.HeightRange.Max,
						strings.Join(names, ", "))
				}
			})
		})
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Parse and validate a catalog file without loading it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := catalog.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d products, %d surcharges\n", args[0], len(def.Products), len(def.Surcharges))
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
}
