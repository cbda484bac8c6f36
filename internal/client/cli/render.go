package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/client/store"
)

const (
	displayDate  = "2 Jan 2006"
	maskedSecret = "********"
)

// renderSnapshot prints the visible records of snap as a table followed by
// the pagination line. Passwords are masked.
func renderSnapshot(w io.Writer, snap store.Snapshot) {
	switch {
	case snap.Error == "":
	case len(snap.Records) == 0 && snap.Overlay == nil:
		fmt.Fprintf(w, "! %s (type 'retry' to reload)\n", snap.Error)
	default:
		fmt.Fprintf(w, "! %s\n", snap.Error)
	}
	if snap.SearchError != "" && snap.SearchError != snap.Error {
		fmt.Fprintf(w, "! search: %s\n", snap.SearchError)
	}

	if snap.Overlay != nil {
		fmt.Fprintln(w, "Search result (type 'clear' to return to the list):")
		renderTable(w, snap.Visible())
		return
	}

	if len(snap.Records) == 0 {
		if snap.Error == "" {
			fmt.Fprintln(w, "No platforms registered yet. Type 'add' to create one.")
		}
		return
	}

	renderTable(w, snap.Records)
	fmt.Fprintf(w, "Page %d of %d, %d platform(s) in total\n",
		snap.PageIndex+1, max(snap.TotalPages, 1), snap.TotalElements)
}

func renderTable(w io.Writer, records []models.PlatformCredential) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tURL\tUSERNAME\tPASSWORD\tCREATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.URL, r.Username, maskedSecret, formatDate(r.CreatedDate))
	}
	_ = tw.Flush()
}

// renderRecord prints one record including its password.
func renderRecord(w io.Writer, r models.PlatformCredential) {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", r.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", r.Name)
	fmt.Fprintf(tw, "URL:\t%s\n", r.URL)
	fmt.Fprintf(tw, "Username:\t%s\n", r.Username)
	fmt.Fprintf(tw, "Password:\t%s\n", r.Password)
	fmt.Fprintf(tw, "Created:\t%s\n", formatDate(r.CreatedDate))
	_ = tw.Flush()
}

func formatDate(d models.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(displayDate)
}

func helpText(loggedIn bool) string {
	if !loggedIn {
		return "Available commands: register, login, help, exit"
	}
	return strings.Join([]string{
		"Available commands:",
		"  (l)ist             reload the current page",
		"  page <n>, next, prev",
		"  find <name>, clear",
		"  add, edit <id>, delete <id>, show <id>",
		"  export excel|pdf",
		"  retry, logout, help, exit",
	}, "\n")
}
