package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/clipkeeper/internal/models"
	"github.com/dmitrijs2005/clipkeeper/internal/services"
)

const (
	timeLayout   = "2006-01-02 15:04"
	previewWidth = 40
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// preview collapses whitespace and cuts s to previewWidth runes.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewWidth {
		return s
	}
	r := []rune(s)
	return string(r[:previewWidth-3]) + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func joinTags(tags models.TagList) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ",")
}

func renderEntries(w io.Writer, list []*models.ClipboardEntry) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No entries.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tTYPE\tPIN\tSYNC\tCAPTURED\tTAGS\tCONTENT")
	for _, e := range list {
		pin := "-"
		if e.IsPinned {
			pin = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.ContentType, pin, e.SyncStatus, formatTime(e.Timestamp), joinTags(e.Tags), preview(e.Content))
	}
	return tw.Flush()
}

func renderEntry(w io.Writer, e *models.ClipboardEntry) error {
	source := e.SourceApp
	if e.SourceWindow != "" {
		source += " / " + e.SourceWindow
	}
	if source == "" {
		source = "-"
	}
	server := "-"
	if e.ServerID != nil {
		server = fmt.Sprint(*e.ServerID)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%d\n", e.ID)
	fmt.Fprintf(tw, "Type:\t%s\n", e.ContentType)
	fmt.Fprintf(tw, "Captured:\t%s\n", formatTime(e.Timestamp))
	fmt.Fprintf(tw, "Source:\t%s\n", source)
	fmt.Fprintf(tw, "Pinned:\t%s\n", yesNo(e.IsPinned))
	fmt.Fprintf(tw, "Tags:\t%s\n", joinTags(e.Tags))
	fmt.Fprintf(tw, "Sync:\t%s (server id %s)\n", e.SyncStatus, server)
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s\n", e.Content)
	return err
}

func renderTagUsage(w io.Writer, usage []models.TagUsage) error {
	if len(usage) == 0 {
		_, err := fmt.Fprintln(w, "No tags.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tCOLOR\tENTRIES\tSYNC")
	for _, u := range usage {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", u.ID, u.Name, u.Color, u.Entries, u.SyncStatus)
	}
	return tw.Flush()
}

func renderSettings(w io.Writer, s *models.TenantSettings) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Tenant:\t%s\n", s.TenantID)
	fmt.Fprintf(tw, "Purge cadence:\t%s\n", s.Cadence.Display())
	fmt.Fprintf(tw, "Keep tagged:\t%s\n", yesNo(s.RetainTags))
	fmt.Fprintf(tw, "Updated:\t%s\n", formatTime(s.UpdatedAt))
	return tw.Flush()
}

var reportKinds = []services.OutcomeKind{
	services.OutcomeSynced,
	services.OutcomeInserted,
	services.OutcomeUpdated,
	services.OutcomeUnchanged,
	services.OutcomePushed,
	services.OutcomeAdopted,
	services.OutcomeSkipped,
}

func renderReport(w io.Writer, rep *services.Report) error {
	if _, err := fmt.Fprintf(w, "run %s\n", rep.RunID); err != nil {
		return err
	}

	tw := newTable(w)
	header := []string{"ENTITY"}
	for _, k := range reportKinds {
		header = append(header, strings.ToUpper(string(k)))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, entity := range []string{services.EntityEntry, services.EntityTag, services.EntitySettings} {
		row := []string{entity}
		for _, k := range reportKinds {
			row = append(row, fmt.Sprint(rep.CountFor(entity, k)))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, o := range rep.Skipped() {
		line := fmt.Sprintf("skipped %s %d: %s", o.Entity, o.LocalID, o.Reason)
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
