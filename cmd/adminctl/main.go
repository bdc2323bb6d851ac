package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"hopely/internal/app/bootstrap"
	"hopely/internal/app/config"
	"hopely/internal/app/domains/entity/etdonation"
	"hopely/internal/app/pkg/auth"
	"hopely/internal/app/pkg/logger"
)

var (
	configPath string
	operator   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Hopely operator tooling: manual donation completion and operator tokens",
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $HOPELY_CONFIG or config/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&operator, "operator", "o", os.Getenv("USER"), "operator name recorded in the audit log")

	rootCmd.AddCommand(listPendingCmd())
	rootCmd.AddCommand(completeOrderCmd())
	rootCmd.AddCommand(completePendingCmd())
	rootCmd.AddCommand(issueTokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	return config.LoadDefault()
}

func withContainer(fn func(ctx context.Context, c *bootstrap.Container) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, cleanup, err := bootstrap.New(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return fn(logger.WithActor(ctx, operator), c)
}

func listPendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-pending",
		Short: "List donations awaiting gateway confirmation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *bootstrap.Container) error {
				donations, err := c.AdminService.ListPending(ctx)
				if err != nil {
					return err
				}
				printDonations(cmd, donations)
				return nil
			})
		},
	}
}

func completeOrderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete-order [order_id]",
		Short: "Mark a single pending donation as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(ctx context.Context, c *bootstrap.Container) error {
				if err := c.AdminService.CompleteOrder(ctx, operator, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed %s (operator: %s)\n", args[0], operator)
				return nil
			})
		},
	}
}

func completePendingCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "complete-pending",
		Short: "Mark every pending donation as completed",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to complete all pending donations without --yes")
			}
			return withContainer(func(ctx context.Context, c *bootstrap.Container) error {
				ids, err := c.AdminService.CompleteAllPending(ctx, operator)
				if err != nil {
					return err
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Completed %d donation(s) (operator: %s)\n", len(ids), operator)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm bulk completion")
	return cmd
}

func issueTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "issue-token [operator]",
		Short: "Issue an operator bearer token for the admin HTTP routes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := operator
			if len(args) == 1 {
				name = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Admin.TokenTTL
			}

			token, err := auth.NewTokenIssuer(cfg.Admin.JWTSecret, ttl).Issue(name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default admin.token_ttl)")
	return cmd
}

func printDonations(cmd *cobra.Command, donations []*etdonation.Donation) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER_ID\tSHORTAGE_ID\tDONOR\tAMOUNT\tCREATED_AT")
	for _, d := range donations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
			d.OrderID,
			d.ShortageID,
			d.Donor.Name,
			d.Amount.StringFixed(2),
			d.Currency,
			d.CreatedAt.Format(time.RFC3339),
		)
	}
	_ = w.Flush()
	fmt.Fprintf(cmd.OutOrStdout(), "%d pending donation(s)\n", len(donations))
}
