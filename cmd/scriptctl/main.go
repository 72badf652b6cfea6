// Command scriptctl runs operator tasks against the script library:
// schema migrations, folder statistics audits and counter reconciliation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"scriptdesk/internal/app"
	"scriptdesk/internal/config"
)

// runtime is built lazily by commands that need storage
type runtime struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *slog.Logger
	close  func()
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rt := &runtime{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "scriptctl",
		Short:         "Operator tooling for the script library",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			rt.cfg = config.LoadFrom(rt.v)
			logger, closeLog, err := config.NewLogger(rt.cfg)
			if err != nil {
				return err
			}
			rt.logger = logger
			rt.close = closeLog
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.close != nil {
				rt.close()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("database-url", "", "Postgres connection string (env DATABASE_URL)")
	flags.String("table-prefix", "", "Table prefix (env TABLE_PREFIX, defaults by environment)")
	flags.String("environment", "", "dev, test or prod (env ENVIRONMENT)")
	flags.String("redis-addr", "", "Report cache address (env REDIS_ADDR)")
	_ = rt.v.BindPFlag("DATABASE_URL", flags.Lookup("database-url"))
	_ = rt.v.BindPFlag("TABLE_PREFIX", flags.Lookup("table-prefix"))
	_ = rt.v.BindPFlag("ENVIRONMENT", flags.Lookup("environment"))
	_ = rt.v.BindPFlag("REDIS_ADDR", flags.Lookup("redis-addr"))

	cmd.AddCommand(
		newMigrateCmd(rt),
		newAuditCmd(rt),
		newReconcileCmd(rt),
		newPurgeCmd(rt),
	)
	return cmd
}

// services connects to postgres; operator commands never use the memory backend
func (rt *runtime) services(ctx context.Context) (*app.Services, error) {
	cfg := *rt.cfg
	cfg.StorageBackend = config.StoragePostgres
	return app.Setup(ctx, &cfg, app.Options{}, rt.logger)
}
