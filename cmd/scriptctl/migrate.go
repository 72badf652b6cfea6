package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"scriptdesk/internal/database"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := database.Migrate(ctx, s.Pool, rt.cfg.TablePrefix, rt.logger); err != nil {
				return err
			}
			version, err := database.Version(ctx, s.Pool, rt.cfg.TablePrefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (prefix %q)\n", version, rt.cfg.TablePrefix)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration, dropping all tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rt.cfg.Environment == "prod" {
				return fmt.Errorf("refusing to reset the prod schema")
			}
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := database.Reset(ctx, s.Pool, rt.cfg.TablePrefix, rt.logger); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema reset (prefix %q)\n", rt.cfg.TablePrefix)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			version, err := database.Version(ctx, s.Pool, rt.cfg.TablePrefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	})

	return cmd
}
