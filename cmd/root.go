package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"larose-cli/api"
	"larose-cli/logging"
	"larose-cli/storage"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	outputJSON    bool
	outputCompact bool
	verbosity     int
	logJSON       bool
	apiURL        string
	cfg           = defaultConfig()
	client        = api.NewClient()
	logger        = logr.Discard()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "larose",
		Short: "La Rose hotel booking CLI",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if outputJSON && outputCompact {
				return fmt.Errorf("choose either --json or --compact")
			}
			logger = logging.New(logging.Options{Verbosity: verbosity, JSON: logJSON})

			loaded, err := loadConfig()
			if err != nil {
				return err
			}
			if apiURL != "" {
				loaded.APIURL = apiURL
			}
			cfg = loaded
			client = newClient(cfg, logger)
			logger.V(1).Info("configured", "apiURL", cfg.APIURL, "timeout", cfg.TimeoutSeconds, "timezone", cfg.Timezone)

			cmd.SetContext(logging.IntoContext(cmd.Context(), logger))
			return nil
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.BoolVar(&outputJSON, "json", false, "Output JSON")
	flags.BoolVar(&outputCompact, "compact", false, "Output compact text")
	flags.CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (repeatable)")
	flags.BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&apiURL, "api-url", "", "Backend base URL (overrides config and $"+envAPIURL+")")

	cmd.AddCommand(roomsCmd())
	cmd.AddCommand(suggestionsCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(authCmd())
	cmd.AddCommand(bookCmd())
	cmd.AddCommand(bookingsCmd())
	cmd.AddCommand(payCmd())
	cmd.AddCommand(reviewsCmd())
	cmd.AddCommand(servicesCmd())
	cmd.AddCommand(adminCmd())
	cmd.AddCommand(cacheCmd())
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newClient(conf Config, log logr.Logger) *api.Client {
	c := api.NewClient()
	c.BaseURL = conf.APIURL
	c.HTTP.Timeout = time.Duration(conf.TimeoutSeconds) * time.Second
	c.Tokens = storage.SessionTokens{}
	c.Log = log.WithName("api")
	if conf.RateLimitPerSecond > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(conf.RateLimitPerSecond), 1)
	}
	c.OnUnauthorized = func() {
		if err := storage.ClearSession(); err != nil {
			log.Error(err, "clear rejected session")
			return
		}
		log.Info("session rejected by the backend, run 'larose auth login'")
	}
	return c
}
