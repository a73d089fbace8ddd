package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"mercator-hq/rundir/pkg/journal"
	"mercator-hq/rundir/pkg/rundir"
)

// createResult is the output of create.
type createResult struct {
	Root string `json:"root"`
	Name string `json:"name"`
	Path string `json:"path"`
}

func (r createResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintln(w, r.Path)
	return err
}

func (r createResult) Header() []string { return []string{"root", "name", "path"} }

func (r createResult) Rows() [][]string { return [][]string{{r.Root, r.Name, r.Path}} }

// reportView renders cleaning reports. Reports of failed passes carry the
// error message.
type reportView struct {
	Reports []reportEntry `json:"reports"`
}

type reportEntry struct {
	*rundir.Report
	Error string `json:"error,omitempty"`
}

func (v reportView) RenderText(w io.Writer) error {
	for i, e := range v.Reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		verb := "cleaned"
		if e.DryRun {
			verb = "plan for"
		}
		fmt.Fprintf(w, "%s %s (keep %d)\n", verb, e.Root, e.Keep)
		writeNames(w, "delete", e.Deleted)
		writeNames(w, "move", e.Moved)
		writeNames(w, "keep", e.Kept)
		writeNames(w, "malformed", e.Malformed)
		if e.Error != "" {
			fmt.Fprintf(w, "  error: %s\n", e.Error)
		}
	}
	return nil
}

func writeNames(w io.Writer, label string, names []string) {
	if len(names) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s (%d):\n", label, len(names))
	for _, n := range names {
		fmt.Fprintf(w, "    %s\n", n)
	}
}

func (v reportView) Header() []string {
	return []string{"root", "dry_run", "action", "name"}
}

func (v reportView) Rows() [][]string {
	var rows [][]string
	for _, e := range v.Reports {
		dry := strconv.FormatBool(e.DryRun)
		for _, group := range []struct {
			action string
			names  []string
		}{
			{"delete", e.Deleted},
			{"move", e.Moved},
			{"keep", e.Kept},
			{"malformed", e.Malformed},
		} {
			for _, n := range group.names {
				rows = append(rows, []string{e.Root, dry, group.action, n})
			}
		}
	}
	return rows
}

// statusView renders a root listing with entry ages relative to Now.
type statusView struct {
	*rundir.Status
	Now time.Time `json:"-"`
}

func (v statusView) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "%s: %d active, %d archived\n", v.Root, len(v.Active), len(v.Archive))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tNAME\tCREATED\tAGE")
	for _, row := range v.Rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(v.Malformed) > 0 {
		fmt.Fprintf(w, "malformed: %s\n", strings.Join(v.Malformed, ", "))
	}
	return nil
}

func (v statusView) Header() []string {
	return []string{"location", "name", "created", "age"}
}

func (v statusView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Active)+len(v.Archive))
	for _, e := range v.Active {
		rows = append(rows, []string{v.Layout.ActiveDir, e.Name, e.Timestamp.Format(time.RFC3339), formatAge(e.Age(v.Now))})
	}
	for _, e := range v.Archive {
		rows = append(rows, []string{v.Layout.ArchiveDir, e.Name, e.Timestamp.Format(time.RFC3339), formatAge(e.Age(v.Now))})
	}
	return rows
}

// formatAge rounds an age for display.
func formatAge(d time.Duration) string {
	switch {
	case d < 0:
		return "0s"
	case d < time.Minute:
		return d.Truncate(time.Second).String()
	case d < 48*time.Hour:
		return d.Truncate(time.Minute).String()
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

// historyView renders journal records.
type historyView struct {
	Records []*journal.Record `json:"records"`
}

func (v historyView) RenderText(w io.Writer) error {
	if len(v.Records) == 0 {
		_, err := fmt.Fprintln(w, "no journal records")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STARTED\tROOT\tOPERATION\tOUTCOME\tDETAIL")
	for _, row := range v.Rows() {
		fmt.Fprintln(tw, strings.Join(row[:5], "\t"))
	}
	return tw.Flush()
}

func (v historyView) Header() []string {
	return []string{"started", "root", "operation", "outcome", "detail", "duration_ms", "id"}
}

func (v historyView) Rows() [][]string {
	rows := make([][]string, 0, len(v.Records))
	for _, r := range v.Records {
		rows = append(rows, []string{
			r.StartedAt.UTC().Format(time.RFC3339),
			r.Root,
			string(r.Operation),
			string(r.Outcome),
			recordDetail(r),
			strconv.FormatInt(r.Duration().Milliseconds(), 10),
			r.ID,
		})
	}
	return rows
}

func recordDetail(r *journal.Record) string {
	switch {
	case r.Error != "":
		return r.Error
	case r.Operation == journal.OperationCreate:
		return r.RunName
	default:
		return fmt.Sprintf("keep=%d deleted=%d moved=%d malformed=%d", r.Keep, len(r.Deleted), len(r.Moved), len(r.Malformed))
	}
}
