package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

func transfersCmd(load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfers",
		Short: "Inspect and retry failed payouts",
	}
	cmd.AddCommand(transfersPendingCmd(load))
	cmd.AddCommand(transfersRetryCmd(load))
	return cmd
}

func transfersPendingCmd(load loader) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List failed transfers waiting for a retry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			pending, err := svc.transfers.ListPending(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No pending transfers.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOMPANY\tAMOUNT\tRETRIES\tLAST ERROR")
			for _, t := range pending {
				lastErr := t.LastError
				if lastErr == "" {
					lastErr = t.OriginalError
				}
				fmt.Fprintf(w, "%s\t%s\t%d %s\t%d\t%s\n", t.ID, t.CompanyID, t.Amount, strings.ToUpper(t.Currency), t.RetryCount, lastErr)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum records to show (0 = all)")
	return cmd
}

func transfersRetryCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>...",
		Short: "Retry failed transfers against Stripe",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := load(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.close()

			results, err := svc.transfers.Retry(cmd.Context(), args)
			if err != nil {
				return err
			}

			var errs *multierror.Error
			out := cmd.OutOrStdout()
			for _, r := range results {
				switch {
				case r.Success && r.Message != "":
					fmt.Fprintf(out, "%s: %s\n", r.ID, r.Message)
				case r.Success:
					fmt.Fprintf(out, "%s: completed as %s\n", r.ID, r.NewTransferID)
				default:
					fmt.Fprintf(out, "%s: failed (%s)\n", r.ID, r.Error)
					errs = multierror.Append(errs, fmt.Errorf("%s: %s", r.ID, r.Error))
				}
			}
			if err := errs.ErrorOrNil(); err != nil {
				return fmt.Errorf("%d of %d transfers failed: %w", len(errs.Errors), len(results), err)
			}
			return nil
		},
	}
}
