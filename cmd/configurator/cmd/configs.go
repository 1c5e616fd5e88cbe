package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"
)

var configsProduct string

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Manage saved configurations",
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configurations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(a *app) error {
			list := a.configs.List(cmd.Context(), configsProduct)
			return render(cmd, list, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tPRODUCT\tSIZE\tQTY\tPRICE\tSAVED")
				for _, c := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s x %s\t%d\t%s\t%s\n",
						c.ID, c.Name, c.Product.ID,
						c.Width.String(), c.Height.String(),
						c.Quantity, c.Price.StringFixed(2),
						c.CreatedAt.Format("2006-01-02 15:04"))
				}
			})
		})
	},
}

var configsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one saved configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			c, err := a.configs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, c, func(w io.Writer) {
				fmt.Fprintf(w, "ID\t%s\n", c.ID)
				fmt.Fprintf(w, "NAME\t%s\n", c.Name)
				fmt.Fprintf(w, "PRODUCT\t%s\n", c.Product.Title)
				fmt.Fprintf(w, "SIZE\t%s x %s\n", c.Width.String(), c.Height.String())
				names := make([]string, 0, len(c.Options))
				for name := range c.Options {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(w, "OPTION\t%s: %s\n", name, c.Options[name])
				}
				fmt.Fprintf(w, "QUANTITY\t%d\n", c.Quantity)
				fmt.Fprintf(w, "PRICE\t%s\n", c.Price.StringFixed(2))
				fmt.Fprintf(w, "TOTAL\t%s\n", c.Total.StringFixed(2))
			})
		})
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app) error {
			if err := a.configs.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		})
	},
}

func init() {
	configsListCmd.Flags().StringVar(&configsProduct, "product", "", "only configurations of this product")

	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsShowCmd)
	configsCmd.AddCommand(configsDeleteCmd)
}
