package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tournevent/easypost/pkg/easypost"
)

// apiCommand wraps a call against the EasyPost API: it builds a client from
// the environment and prints the result as indented JSON.
func apiCommand(use, short string, args cobra.PositionalArgs, call func(ctx context.Context, c *easypost.Client, args []string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:          use,
		Short:        short,
		Args:         args,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger, err := initLogger(cfg.LogLevel, "console")
			if err != nil {
				return err
			}
			defer logger.Sync()

			client := initEasyPostClient(cfg, logger, nil)
			result, err := call(cmd.Context(), client, args)
			if err != nil {
				if reqErr, ok := easypost.AsRequestError(err); ok {
					_ = printJSON(cmd.ErrOrStderr(), reqErr)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	listBeforeID string
	listAfterID  string
	listStart    string
	listEnd      string
	listPageSize int

	buyCarrier string
	buyService string

	labelFormat string
)

func listOptions() (*easypost.ListOptions, error) {
	opts := &easypost.ListOptions{
		BeforeID: listBeforeID,
		AfterID:  listAfterID,
		PageSize: listPageSize,
	}
	for _, f := range []struct {
		value string
		dst   **time.Time
	}{
		{listStart, &opts.StartDatetime},
		{listEnd, &opts.EndDatetime},
	} {
		if f.value == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, f.value)
		if err != nil {
			return nil, fmt.Errorf("invalid datetime %q: %w", f.value, err)
		}
		*f.dst = &t
	}
	return opts, nil
}

func init() {
	userCmd := apiCommand("user [id]", "Show the authenticated user, or a child user by id", cobra.MaximumNArgs(1),
		func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
			if len(args) == 1 {
				return c.GetUser(ctx, args[0])
			}
			return c.GetSelf(ctx)
		})

	apiKeysCmd := apiCommand("apikeys", "List API keys", cobra.NoArgs,
		func(ctx context.Context, c *easypost.Client, _ []string) (any, error) {
			return c.GetAPIKeys(ctx)
		})

	carrierAccountsCmd := apiCommand("carrier-accounts", "List carrier accounts", cobra.NoArgs,
		func(ctx context.Context, c *easypost.Client, _ []string) (any, error) {
			return c.ListCarrierAccounts(ctx)
		})

	// scanforms
	scanFormsCmd := &cobra.Command{Use: "scanforms", Short: "Manage scan forms"}
	scanFormsListCmd := apiCommand("list", "List scan forms", cobra.NoArgs,
		func(ctx context.Context, c *easypost.Client, _ []string) (any, error) {
			opts, err := listOptions()
			if err != nil {
				return nil, err
			}
			return c.ListScanForms(ctx, opts)
		})
	scanFormsListCmd.Flags().StringVar(&listBeforeID, "before-id", "", "only scan forms created before this id")
	scanFormsListCmd.Flags().StringVar(&listAfterID, "after-id", "", "only scan forms created after this id")
	scanFormsListCmd.Flags().StringVar(&listStart, "start", "", "start datetime (RFC 3339)")
	scanFormsListCmd.Flags().StringVar(&listEnd, "end", "", "end datetime (RFC 3339)")
	scanFormsListCmd.Flags().IntVar(&listPageSize, "page-size", 0, "page size")
	scanFormsCmd.AddCommand(
		scanFormsListCmd,
		apiCommand("get <id>", "Show a scan form", cobra.ExactArgs(1),
			func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
				return c.GetScanForm(ctx, args[0])
			}),
		apiCommand("create <shipment-id>...", "Create a scan form for purchased shipments", cobra.MinimumNArgs(1),
			func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
				return c.CreateScanForm(ctx, args...)
			}),
	)

	// rate
	rateCmd := &cobra.Command{Use: "rate", Short: "Inspect rates"}
	rateCmd.AddCommand(apiCommand("get <id>", "Show a rate", cobra.ExactArgs(1),
		func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
			return c.GetRate(ctx, args[0])
		}))

	// order
	orderCmd := &cobra.Command{Use: "order", Short: "Manage orders"}
	orderBuyCmd := apiCommand("buy <id>", "Buy postage for every shipment of an order", cobra.ExactArgs(1),
		func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
			return c.BuyOrder(ctx, args[0], buyCarrier, buyService)
		})
	orderBuyCmd.Flags().StringVar(&buyCarrier, "carrier", "", "carrier to buy from")
	orderBuyCmd.Flags().StringVar(&buyService, "service", "", "service level to buy")
	_ = orderBuyCmd.MarkFlagRequired("carrier")
	_ = orderBuyCmd.MarkFlagRequired("service")
	orderCmd.AddCommand(
		apiCommand("get <id>", "Show an order", cobra.ExactArgs(1),
			func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
				return c.GetOrder(ctx, args[0])
			}),
		orderBuyCmd,
	)

	// shipment
	shipmentCmd := &cobra.Command{Use: "shipment", Short: "Manage shipments"}
	shipmentLabelCmd := apiCommand("label <id>", "Convert a purchased label to another format", cobra.ExactArgs(1),
		func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
			return c.LabelShipment(ctx, args[0], labelFormat)
		})
	shipmentLabelCmd.Flags().StringVar(&labelFormat, "format", "PDF", "label format: PDF, ZPL or EPL2")
	shipmentCmd.AddCommand(
		apiCommand("get <id>", "Show a shipment", cobra.ExactArgs(1),
			func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
				return c.GetShipment(ctx, args[0])
			}),
		shipmentLabelCmd,
		apiCommand("refund <id>", "Request a refund for a purchased label", cobra.ExactArgs(1),
			func(ctx context.Context, c *easypost.Client, args []string) (any, error) {
				return c.RefundShipment(ctx, args[0])
			}),
	)

	rootCmd.AddCommand(userCmd, apiKeysCmd, carrierAccountsCmd, scanFormsCmd, rateCmd, orderCmd, shipmentCmd)
}
