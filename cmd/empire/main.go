package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	cl "rentalempire/internal/cli"
	"rentalempire/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.LoadCLIFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	apiBase := cfg.APIBaseURL

	root := &cobra.Command{
		Use:          "empire",
		Short:        "Rental Empire command-line client",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&apiBase, "api", apiBase, "game server base URL")

	root.AddCommand(
		newStatusCmd(&apiBase),
		newAssetsCmd(&apiBase),
		newBuyCmd(&apiBase),
		newSellCmd(&apiBase),
		newLevelCmd(&apiBase),
		newUpgradesCmd(&apiBase),
		newMarketCmd(&apiBase),
		newAchievementsCmd(&apiBase),
		newTiersCmd(&apiBase),
		newNotificationsCmd(&apiBase),
		newStartCmd(&apiBase),
		newStopCmd(&apiBase),
		newCheckpointCmd(&apiBase),
		newResetCmd(&apiBase),
		newWatchCmd(&apiBase),
		newRunCmd(cfg),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newClient(apiBase *string) *cl.Client {
	return cl.NewClient(strings.TrimRight(strings.TrimSpace(*apiBase), "/"))
}

func withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 15*time.Second)
}

func newStatusCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show balance, revenue and business level",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			client := newClient(apiBase)
			ledger, err := client.Ledger(ctx)
			if err != nil {
				return err
			}
			tiers, err := client.Tiers(ctx)
			if err != nil {
				return err
			}
			renderLedger(ledger, tiers)
			return nil
		},
	}
}

func newAssetsCmd(apiBase *string) *cobra.Command {
	var ownedOnly bool
	cmd := &cobra.Command{
		Use:     "assets",
		Short:   "List rental equipment and your fleet",
		Aliases: []string{"fleet"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Assets(ctx)
			if err != nil {
				return err
			}
			renderAssets(out, ownedOnly)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ownedOnly, "owned", false, "only show equipment you own")
	return cmd
}

func newBuyCmd(apiBase *string) *cobra.Command {
	var qty int
	cmd := &cobra.Command{
		Use:   "buy [asset]",
		Short: "Buy rental equipment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Asset id")
			if err != nil {
				return err
			}
			if qty < 1 {
				return fmt.Errorf("quantity must be at least 1")
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			client := newClient(apiBase)
			for i := 0; i < qty; i++ {
				out, err := client.BuyAsset(ctx, id)
				if err != nil {
					if i > 0 {
						printWarn(fmt.Sprintf("Bought %d of %d before stopping.", i, qty))
					}
					return err
				}
				renderPurchase(out, "Bought")
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&qty, "quantity", "n", 1, "units to buy")
	return cmd
}

func newSellCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sell [asset]",
		Short: "Sell one unit back at half price",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Asset id")
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).SellAsset(ctx, id)
			if err != nil {
				return err
			}
			renderSale(out)
			return nil
		},
	}
}

func newLevelCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "level [asset]",
		Short: "Level up an owned equipment type",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Asset id")
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).LevelUpAsset(ctx, id)
			if err != nil {
				return err
			}
			renderPurchase(out, "Leveled")
			return nil
		},
	}
}

func newUpgradesCmd(apiBase *string) *cobra.Command {
	upgrades := &cobra.Command{
		Use:     "upgrades",
		Short:   "List upgrades",
		Aliases: []string{"upgrade"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Upgrades(ctx)
			if err != nil {
				return err
			}
			renderUpgrades(out)
			return nil
		},
	}
	upgrades.AddCommand(&cobra.Command{
		Use:   "buy [upgrade]",
		Short: "Purchase an unlocked upgrade",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Upgrade id")
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).BuyUpgrade(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Purchased %s for $%s. Revenue is now $%s/s.",
				out.UpgradeID, money(out.Cost), money(out.RevenuePerInterval)))
			return nil
		},
	})
	return upgrades
}

func newMarketCmd(apiBase *string) *cobra.Command {
	market := &cobra.Command{
		Use:   "market",
		Short: "Show market events and active modifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Market(ctx)
			if err != nil {
				return err
			}
			renderMarket(out)
			return nil
		},
	}
	market.AddCommand(&cobra.Command{
		Use:   "trigger [event]",
		Short: "Force a market event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idFromArgsOrPrompt(args, "Event id")
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			ev, err := newClient(apiBase).TriggerEvent(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("%s is live for %ds.", ev.Name, ev.DurationSeconds))
			return nil
		},
	})
	return market
}

func newAchievementsCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "achievements",
		Short: "Show achievement progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Achievements(ctx)
			if err != nil {
				return err
			}
			renderAchievements(out)
			return nil
		},
	}
}

func newTiersCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "tiers",
		Short:   "Show business levels",
		Aliases: []string{"levels"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Tiers(ctx)
			if err != nil {
				return err
			}
			renderTiers(out)
			return nil
		},
	}
}

func newNotificationsCmd(apiBase *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "notifications",
		Short:   "Show recent game notifications",
		Aliases: []string{"inbox"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := newClient(apiBase).Notifications(ctx, limit)
			if err != nil {
				return err
			}
			renderNotifications(out)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of notifications")
	return cmd
}

func newStartCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Resume the game on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			ledger, err := newClient(apiBase).Start(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game running. Balance $%s.", money(ledger.Balance)))
			return nil
		},
	}
}

func newStopCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Pause the game and save it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			ledger, err := newClient(apiBase).Stop(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Game paused and saved at %s.", ledger.LastSavedAt.Local().Format(time.Kitchen)))
			return nil
		},
	}
}

func newCheckpointCmd(apiBase *string) *cobra.Command {
	return &cobra.Command{
		Use:     "save",
		Short:   "Save the game now",
		Aliases: []string{"checkpoint"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			at, err := newClient(apiBase).Checkpoint(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Saved at %s.", at.Local().Format(time.Kitchen)))
			return nil
		},
	}
}

func newResetCmd(apiBase *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the save and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				choice, err := promptChoice("This deletes all progress. Continue", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				if choice != "yes" {
					printInfo("Reset cancelled.")
					return nil
				}
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			ledger, err := newClient(apiBase).Reset(ctx)
			if err != nil {
				return err
			}
			printWarn(fmt.Sprintf("Game reset. Balance $%s. Run `empire start` to play again.", money(ledger.Balance)))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func idFromArgsOrPrompt(args []string, label string) (string, error) {
	if len(args) > 0 {
		if id := strings.TrimSpace(args[0]); id != "" {
			return id, nil
		}
	}
	return promptRequired(label)
}
