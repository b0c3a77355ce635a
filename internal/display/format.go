// Package display renders boards, columns and rankings as plain text tables
// for the terminal.
package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/pkg/board"
)

// DueLayout is the display format of due dates, e.g. "Mar 9, 02:30 PM".
const DueLayout = "Jan 2, 03:04 PM"

// ProgressBarWidth is the number of cells in a progress bar.
const ProgressBarWidth = 10

// Options control rendering.
type Options struct {
	Palette board.Palette
	Now     time.Time
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// FormatBoard writes every visible column followed by the top-ranked view
// when it is enabled.
func FormatBoard(w io.Writer, b board.Board, opts Options) {
	filter := "All Projects"
	if b.SelectedProjectID != nil {
		filter = b.ProjectName(b.SelectedProjectID)
	}
	fmt.Fprintf(w, "Board (%s)", filter)
	if b.ShowArchived {
		fmt.Fprint(w, ", showing archived")
	}
	fmt.Fprint(w, "\n\n")

	columns := b.VisibleColumns()
	if len(columns) == 0 {
		fmt.Fprintln(w, "No columns")
	}
	for _, col := range columns {
		FormatColumn(w, b, col, opts)
		fmt.Fprintln(w)
	}

	if b.ShowTop10 {
		FormatTop(w, b, b.Top(opts.Palette), opts)
	}
}

// FormatColumn writes one column header and its cards in display order.
// Expanded cards show their notes on the following lines.
func FormatColumn(w io.Writer, b board.Board, col board.Column, opts Options) {
	cards := b.CardsInView(col, opts.Palette)

	fmt.Fprintf(w, "== %s [%s] %s ==\n", col.Title, b.ProjectName(col.ProjectID), ShortID(col.ID))
	if len(cards) == 0 {
		fmt.Fprintln(w, "   (no cards)")
		return
	}

	now := opts.now()
	for _, card := range cards {
		fmt.Fprintf(w, "%s %-8s %-40s %-7s %s\n",
			printer.Swatch(card.Color),
			ShortID(card.ID),
			formatTitle(card),
			formatColor(card.Color),
			formatDueCell(card.DueDate, now),
		)
		if bar := ProgressBar(card.Progress); bar != "" {
			fmt.Fprintf(w, "   %-8s %s\n", "", bar)
		}
		if b.IsExpanded(card.ID) {
			formatDetails(w, card)
		}
	}
}

// FormatTop writes the cross-column ranking as a numbered table.
func FormatTop(w io.Writer, b board.Board, ranked []board.RankedCard, opts Options) {
	fmt.Fprintf(w, "Top %d\n", board.TopRankLimit)
	if len(ranked) == 0 {
		fmt.Fprintln(w, "   (no cards)")
		return
	}

	fmt.Fprintf(w, "%-3s %-8s %-40s %-16s %-16s %s\n",
		"#", "ID", "TITLE", "COLUMN", "PROJECT", "DUE")
	fmt.Fprintf(w, "%-3s %-8s %-40s %-16s %-16s %s\n",
		"---", "--------", strings.Repeat("-", 40), strings.Repeat("-", 16), strings.Repeat("-", 16), "------------------------")

	now := opts.now()
	for i, rc := range ranked {
		fmt.Fprintf(w, "%-3d %-8s %-40s %-16s %-16s %s\n",
			i+1,
			ShortID(rc.ID),
			formatTitle(rc.Card),
			truncate(rc.ColumnTitle, 16),
			truncate(b.ProjectName(rc.ProjectID), 16),
			formatDueCell(rc.DueDate, now),
		)
	}
}

// FormatCards writes an unnumbered card table, used for search results.
// Returns the number of cards formatted.
func FormatCards(w io.Writer, b board.Board, cards []board.RankedCard, opts Options) int {
	if len(cards) == 0 {
		fmt.Fprintln(w, "No cards found")
		return 0
	}

	now := opts.now()
	for _, rc := range cards {
		fmt.Fprintf(w, "%s %-8s %-40s %-16s %s\n",
			printer.Swatch(rc.Color),
			ShortID(rc.ID),
			formatTitle(rc.Card),
			truncate(rc.ColumnTitle, 16),
			formatDueCell(rc.DueDate, now),
		)
	}

	countMsg := "card"
	if len(cards) != 1 {
		countMsg = "cards"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(cards), countMsg)
	return len(cards)
}

// FormatCard writes every field of one card.
func FormatCard(w io.Writer, b board.Board, card board.Card, columnID board.ID, opts Options) {
	col, _ := b.Column(columnID)
	fmt.Fprintf(w, "%s %s\n", printer.Swatch(card.Color), card.Title)
	fmt.Fprintf(w, "  ID:       %s\n", card.ID)
	fmt.Fprintf(w, "  Column:   %s (%s)\n", col.Title, b.ProjectName(col.ProjectID))
	fmt.Fprintf(w, "  Color:    %s\n", formatColor(card.Color))
	fmt.Fprintf(w, "  Due:      %s\n", formatDueCell(card.DueDate, opts.now()))
	fmt.Fprintf(w, "  Progress: %d%%\n", card.Progress)
	if card.Archived {
		fmt.Fprintln(w, "  Archived: yes")
	}
	if card.Notes != "" {
		fmt.Fprintln(w, "  Notes:")
		for _, line := range strings.Split(card.Notes, "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// FormatProjects writes the project list with the number of columns
// assigned to each.
func FormatProjects(w io.Writer, b board.Board) {
	if len(b.Projects) == 0 {
		fmt.Fprintln(w, "No projects")
		return
	}

	fmt.Fprintf(w, "%-8s %-30s %s\n", "ID", "NAME", "COLUMNS")
	fmt.Fprintf(w, "%-8s %-30s %s\n", "--------", strings.Repeat("-", 30), "-------")
	for _, p := range b.Projects {
		count := 0
		for _, col := range b.Columns {
			if col.HasProject(p.ID) {
				count++
			}
		}
		marker := ""
		if b.SelectedProjectID != nil && *b.SelectedProjectID == p.ID {
			marker = " *"
		}
		fmt.Fprintf(w, "%-8s %-30s %d%s\n", ShortID(p.ID), truncate(p.Name, 30), count, marker)
	}
}

// FormatJSON writes v as pretty-printed JSON followed by a newline.
func FormatJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// TimeRemaining describes how long until due: "Expired", "3d 4h remaining",
// "5h remaining" or "Less than 1h remaining".
func TimeRemaining(due, now time.Time) string {
	diff := due.Sub(now)
	if diff < 0 {
		return "Expired"
	}

	days := int(diff / (24 * time.Hour))
	hours := int((diff % (24 * time.Hour)) / time.Hour)

	if days > 0 {
		return fmt.Sprintf("%dd %dh remaining", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh remaining", hours)
	}
	return "Less than 1h remaining"
}

// FormatDue formats a due date in local time using DueLayout.
func FormatDue(t time.Time) string {
	return t.Local().Format(DueLayout)
}

// ProgressBar renders progress as "[#####-----] 50%". Progress of zero or
// less renders as the empty string.
func ProgressBar(progress int) string {
	if progress <= 0 {
		return ""
	}
	if progress > 100 {
		progress = 100
	}
	filled := int(math.Round(float64(progress) * ProgressBarWidth / 100))
	return fmt.Sprintf("[%s%s] %d%%",
		strings.Repeat("#", filled),
		strings.Repeat("-", ProgressBarWidth-filled),
		progress)
}

// ShortID truncates an id to its first 8 characters for compact display.
func ShortID(id board.ID) string {
	s := string(id)
	if len(s) > 8 {
		return s[:8]
	}
	return s
}

func formatDetails(w io.Writer, card board.Card) {
	if card.Notes == "" {
		fmt.Fprintf(w, "   %-8s (no notes)\n", "")
		return
	}
	for _, line := range strings.Split(card.Notes, "\n") {
		fmt.Fprintf(w, "   %-8s | %s\n", "", line)
	}
}

// formatTitle shows the first line of the title, marked when archived.
func formatTitle(card board.Card) string {
	title := card.Title
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	if title == "" {
		title = "-"
	}
	if card.Archived {
		title = "[archived] " + title
	}
	return truncate(title, 40)
}

func formatColor(color string) string {
	if color == "" {
		return "-"
	}
	return board.ColorName(color)
}

func formatDueCell(due *time.Time, now time.Time) string {
	if due == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", FormatDue(*due), TimeRemaining(*due, now))
}

// truncate shortens s to max runes, ending with "..." when cut.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}
