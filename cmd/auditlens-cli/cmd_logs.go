package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/persistorai/auditlens/client"
)

// filterFlags binds the log filter flags shared by search and export.
type filterFlags struct {
	actorID, action, resource, status, search string
	severity                                  int
	since, until                              string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.actorID, "actor", "", "Filter by actor ID")
	cmd.Flags().StringVar(&f.action, "action", "", "Filter by action")
	cmd.Flags().StringVar(&f.resource, "resource", "", "Filter by resource")
	cmd.Flags().StringVar(&f.status, "status", "", "Filter by status: success|failure")
	cmd.Flags().IntVar(&f.severity, "severity", 0, "Filter by severity 1-5")
	cmd.Flags().StringVar(&f.search, "search", "", "Substring match on action, resource, or details")
	cmd.Flags().StringVar(&f.since, "since", "", "Start date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.until, "until", "", "End date (RFC 3339 or YYYY-MM-DD)")
}

func (f *filterFlags) build() (*client.LogFilter, error) {
	lf := &client.LogFilter{
		ActorID:  f.actorID,
		Action:   f.action,
		Resource: f.resource,
		Status:   f.status,
		Severity: f.severity,
		Search:   f.search,
	}

	var err error
	if lf.StartDate, err = parseDateFlag("since", f.since); err != nil {
		return nil, err
	}
	if lf.EndDate, err = parseDateFlag("until", f.until); err != nil {
		return nil, err
	}
	return lf, nil
}

func parseDateFlag(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--%s: %q is not RFC 3339 or YYYY-MM-DD", name, v)
}

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Search activity logs",
	}
	cmd.AddCommand(newLogsSearchCmd())
	return cmd
}

func newLogsSearchCmd() *cobra.Command {
	var (
		filters     filterFlags
		page, limit int
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search activity logs with filters and pagination",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filters.build()
			if err != nil {
				return err
			}

			res, err := apiClient.Logs.Search(cmd.Context(), f, page, limit)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if flagFmt == "table" {
				printLogTable(res.Logs)
				fmt.Printf("\npage %d of %d (%d total)\n", res.Pagination.Page, res.Pagination.TotalPages, res.Pagination.Total)
				return nil
			}
			output(res, strconv.FormatInt(res.Pagination.Total, 10))
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().IntVar(&page, "page", 0, "Page number (default 1)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Page size, max 1000 (default 50)")
	return cmd
}

func printLogTable(logs []client.LogEntry) {
	headers := []string{"TIMESTAMP", "ACTOR", "ACTION", "RESOURCE", "STATUS", "SEV", "IP"}
	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		actor := l.ActorID
		if l.Actor != nil && l.Actor.Username != "" {
			actor = l.Actor.Username
		}
		rows = append(rows, []string{
			l.Timestamp.UTC().Format(time.RFC3339), actor, l.Action, l.Resource,
			l.Status, strconv.Itoa(l.Severity), l.IPAddress,
		})
	}
	formatTable(headers, rows)
}
