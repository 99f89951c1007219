package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func quotesCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quotes",
		Short: "Quote maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "reconcile",
		Short: "Complete the contact exchange for paid quotes that got stuck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			res, err := svc.quotes.Reconcile(cmd.Context())
			if res != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "checked %d, exchanged %d, failed %d\n", res.Checked, res.Exchanged, len(res.Failed))
			}
			return err
		},
	})
	return cmd
}
