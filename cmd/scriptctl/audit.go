package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	librarySvc "scriptdesk/internal/domain/services/library"
	"scriptdesk/internal/folderstats"
)

func newAuditCmd(rt *runtime) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "audit <project-id>",
		Short: "Compare cached folder counters with live script counts",
		Long: `Audit a project's folder forest.

Prints each folder with its live and cached script counts, flags drift,
and lists scripts whose folder no longer exists. Nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			report, err := s.Audit.AuditProject(ctx, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the report as JSON")
	return cmd
}

func newReconcileCmd(rt *runtime) *cobra.Command {
	var purgeOrphans bool

	cmd := &cobra.Command{
		Use:   "reconcile <project-id>",
		Short: "Overwrite cached folder counters with live script counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := s.Audit.Reconcile(ctx, args[0], librarySvc.ReconcileOptions{PurgeOrphans: purgeOrphans})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "folders corrected: %d\n", result.FoldersCorrected)
			fmt.Fprintf(out, "total scripts:     %d -> %d\n", result.PreviousTotal, result.TotalScripts)
			if purgeOrphans {
				fmt.Fprintf(out, "orphans purged:    %d\n", result.OrphansPurged)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&purgeOrphans, "purge-orphans", false, "Also delete scripts whose folder no longer exists")
	return cmd
}

func newPurgeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-deleted-projects",
		Short: "Delete scripts left behind by deleted projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := rt.services(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.Audit.PurgeDeletedProjects(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d scripts\n", n)
			return nil
		},
	}
}

func printReport(out io.Writer, report *folderstats.Report) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tLIVE\tCACHED\t")
	for _, f := range report.ScriptsPerFolder {
		mark := ""
		if f.Drifted() {
			mark = "drift"
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", f.Path, f.LiveCount, f.CachedCount, mark)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\nfolders: %d  depth: %d  empty: %d\n", report.TotalFolders, report.FolderDepth, len(report.EmptyFolders))
	fmt.Fprintf(out, "scripts: %d live, %d cached\n", report.LiveScriptTotal, report.CachedScriptTotal)
	if len(report.OrphanedFolderIDs) > 0 {
		fmt.Fprintf(out, "orphaned: %d scripts in missing folders %v\n", report.OrphanedScripts, report.OrphanedFolderIDs)
	}
	if report.Consistent() {
		fmt.Fprintln(out, "status: consistent")
	} else {
		fmt.Fprintln(out, "status: inconsistent (run reconcile)")
	}
}
