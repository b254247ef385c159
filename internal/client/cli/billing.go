package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/lingua/internal/client/format"
	"github.com/dmitrijs2005/lingua/internal/client/models"
)

func (r *runner) plansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			plans := r.app.subscriptions.Plans(ctx)
			out := cmd.OutOrStdout()
			if len(plans) == 0 {
				fmt.Fprintln(out, "No plans available.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPLAN\tPRICE\tDAYS\tFEATURES")
			for _, p := range plans {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					p.ID, p.Name, format.Amount(p.Amount, p.Currency), p.IntervalDays, strings.Join(p.Features, ", "))
			}
			return tw.Flush()
		}),
	}
}

func (r *runner) subscriptionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "subscription",
		Short: "Show your current subscription",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			sub := r.app.subscriptions.Current(ctx)
			if sub == nil {
				fmt.Fprintln(out, "No active subscription.")
				return nil
			}
			fmt.Fprintf(out, "Plan %s, %s since %s", sub.PlanID, sub.Status, format.Date(sub.StartedAt))
			if sub.ExpiresAt != nil {
				fmt.Fprintf(out, ", renews %s", format.Date(*sub.ExpiresAt))
			}
			fmt.Fprintln(out)
			return nil
		}),
	}
}

func (r *runner) transactionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transactions",
		Short: "Show payment history",
		Args:  cobra.NoArgs,
		RunE: r.authed(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			txs := r.app.subscriptions.Transactions(ctx)
			out := cmd.OutOrStdout()
			if len(txs) == 0 {
				fmt.Fprintln(out, "No transactions yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tAMOUNT\tSTATUS\tDESCRIPTION")
			for _, tx := range txs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					format.Date(tx.CreatedAt), format.Amount(tx.Amount, tx.Currency), tx.Status, tx.Description)
			}
			return tw.Flush()
		}),
	}
}

// subscribeCommand creates a gateway order, then collects the gateway's
// payment callback fields and has the backend verify them.
func (r *runner) subscribeCommand() *cobra.Command {
	var (
		v   models.PaymentVerification
		yes bool
	)
	cmd := &cobra.Command{
		Use:   "subscribe <plan-id>",
		Short: "Buy a subscription plan",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&v.PaymentID, "payment-id", "", "gateway payment id")
	cmd.Flags().StringVar(&v.Signature, "signature", "", "gateway payment signature")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.RunE = r.authed(func(ctx context.Context, cmd *cobra.Command, args []string) error {
		in := inputOf(cmd)
		out := cmd.OutOrStdout()

		if !yes {
			ok, err := Confirm(in, "Subscribe to "+describePlan(r.app.subscriptions.Plans(ctx), args[0])+"?", out)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		order, err := r.app.subscriptions.CreateOrder(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %s for %s created.\n", order.ID, format.Amount(order.Amount, order.Currency))
		if order.KeyID != "" {
			fmt.Fprintf(out, "Complete the payment with key %s, then enter the gateway response.\n", order.KeyID)
		}

		v.OrderID = order.ID
		if v.PaymentID == "" {
			if v.PaymentID, err = getSimpleText(in, "Payment id", out); err != nil {
				return err
			}
		}
		if v.Signature == "" {
			if v.Signature, err = getSimpleText(in, "Payment signature", out); err != nil {
				return err
			}
		}

		sub, err := r.app.subscriptions.VerifyPayment(ctx, v)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Payment verified. Subscription %s is %s.\n", sub.PlanID, sub.Status)
		return nil
	})
	return cmd
}

// describePlan names planID with its price when the plan list knows it.
func describePlan(plans []models.Plan, planID string) string {
	for _, p := range plans {
		if p.ID == planID {
			return fmt.Sprintf("%s (%s every %d days)", p.Name, format.Amount(p.Amount, p.Currency), p.IntervalDays)
		}
	}
	return planID
}
