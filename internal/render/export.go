package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/gocarina/gocsv"
)

// WriteCSV writes the itinerary rows with a header line. A view without rows
// produces only the header.
func WriteCSV(w io.Writer, v ListView) error {
	rows := v.Rows
	if rows == nil {
		rows = []ListRow{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write itinerary csv: %w", err)
	}
	return nil
}

// WriteText prints the itinerary as an aligned table for terminals.
func WriteText(w io.Writer, v ListView) error {
	var b strings.Builder

	b.WriteString(v.Title + "\n")
	if v.Summary != nil {
		fmt.Fprintf(&b, "Total distance: %s km   Estimated time: %s min   Stops: %d",
			formatNumber(v.Summary.TotalDistanceKm), formatNumber(v.Summary.EstimatedTimeMin), v.Summary.StopCount)
		if v.Summary.TotalStudents != nil {
			fmt.Fprintf(&b, "   Students: %d", *v.Summary.TotalStudents)
		}
		b.WriteString("\n")
	}
	if v.Reason != "" {
		b.WriteString(v.Reason + "\n")
	}
	if v.Placeholder != "" {
		b.WriteString(v.Placeholder + "\n")
	}
	if v.Hint != "" {
		b.WriteString(v.Hint + "\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write itinerary: %w", err)
	}
	if len(v.Rows) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if v.Summary != nil {
		fmt.Fprintln(tw, "#\tSTOP\tTIME\tCOORDINATES\tSTUDENTS")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.Order, r.Name, r.ArrivalTime, r.Coordinates, formatCount(r.Students))
		}
	} else {
		fmt.Fprintln(tw, "STOP\tSTUDENTS")
		for _, r := range v.Rows {
			fmt.Fprintf(tw, "%s\t%s\n", r.Name, formatCount(r.Students))
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write itinerary: %w", err)
	}
	return nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatCount(c *int) string {
	if c == nil {
		return "-"
	}
	return strconv.Itoa(*c)
}
