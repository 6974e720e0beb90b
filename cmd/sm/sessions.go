package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zulandar/stationmaster/internal/config"
	"github.com/zulandar/stationmaster/internal/session"
)

func newSessionsCmd() *cobra.Command {
	var configPath string
	var managerID int64

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List registered client sessions",
		Long:  "Reads the session log and prints every registered client, optionally filtered by manager.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions(cmd, configPath, managerID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "stationmaster.yaml", "path to config file")
	cmd.Flags().Int64VarP(&managerID, "manager", "m", 0, "only sessions assigned to this manager chat ID")
	return cmd
}

func runSessions(cmd *cobra.Command, configPath string, managerID int64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := session.Open(cfg.Paths.Sessions)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}

	var sessions []session.Session
	if managerID != 0 {
		sessions = store.ListByManager(managerID)
	} else {
		sessions = store.All()
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No registered clients.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHAT ID\tENTERPRISE\tNAME\tMANAGER")
	for _, s := range sessions {
		name := s.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%d\n", s.ID, s.Enterprise, name, s.Manager)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d client(s)\n", len(sessions))
	return nil
}
