package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/angelmondragon/webmarket/internal/storefront"
	"github.com/angelmondragon/webmarket/pkg/config"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/angelmondragon/webmarket/pkg/metrics"
)

// cli carries the state shared by every subcommand.
type cli struct {
	out  io.Writer
	cfg  *config.StorefrontConfig
	logg *logger.Logger
	app  *storefront.App

	// newApp is swapped in tests.
	newApp func(ctx context.Context, params storefront.AppParams) (*storefront.App, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{out: os.Stdout, newApp: storefront.NewApp}
	root := c.rootCmd()
	err := root.ExecuteContext(ctx)
	if c.app != nil {
		_ = c.app.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Webmarket storefront: browse the catalog, manage the cart and check out",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			app := c.app
			c.app = nil
			return app.Close()
		},
	}
	root.SetOut(c.out)

	root.AddCommand(
		c.productsCmd(),
		c.cartCmd(),
		c.checkoutCmd(),
		c.loginCmd(),
		c.registerCmd(),
		c.logoutCmd(),
		c.ordersCmd(),
		c.adminCmd(),
	)
	return root
}

func (c *cli) setup(ctx context.Context) error {
	if c.app != nil {
		return nil
	}
	_ = godotenv.Load()

	if c.cfg == nil {
		cfg, err := config.LoadStorefront()
		if err != nil {
			return err
		}
		c.cfg = cfg
	}
	if c.logg == nil {
		c.logg = logger.New(logger.Options{
			ServiceName: "storefront",
			Level:       logger.ParseLevel(c.cfg.LogLevel),
			Output:      os.Stderr,
		})
	}
	app, err := c.newApp(ctx, storefront.AppParams{
		Config:  c.cfg,
		Out:     c.out,
		Logger:  c.logg,
		Metrics: metrics.NewCheckoutMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		return fmt.Errorf("starting storefront: %w", err)
	}
	c.app = app
	return nil
}
