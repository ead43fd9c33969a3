package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s21toolkit/s21introspector/internal/staticprops"
)

func newStaticCmd(a *app) *cobra.Command {
	var (
		selectors []string
		noName    bool
	)

	cmd := &cobra.Command{
		Use:   "static",
		Short: "Print the properties the platform static.js assigns on window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := staticprops.Fetch(cmd.Context(), a.newLoader(nil), a.endpoint(staticPath))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range props.Select(selectors...) {
				if noName {
					fmt.Fprintln(out, p.Value)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", p.Name, p.Value)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&selectors, "select", "s", nil, "property to print (repeatable, default all)")
	cmd.Flags().BoolVarP(&noName, "no-name", "n", false, "print values only")
	return cmd
}
