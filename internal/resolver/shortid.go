package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dyluth/tack/pkg/board"
)

// MinShortIDLength is the minimum required length for short ID prefixes.
const MinShortIDLength = 4

// Kind names what a reference points at.
type Kind string

const (
	KindProject Kind = "project"
	KindColumn  Kind = "column"
	KindCard    Kind = "card"
)

// candidate is one resolvable entity.
type candidate struct {
	id    board.ID
	title string
}

// resolve turns ref into exactly one id. It tries, in order:
// 1. an exact id match
// 2. a case-insensitive exact title match
// 3. an id prefix of at least MinShortIDLength characters
func resolve(kind Kind, candidates []candidate, ref string) (board.ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("%s reference cannot be empty", kind)
	}

	for _, c := range candidates {
		if string(c.id) == ref {
			return c.id, nil
		}
	}

	var byTitle []candidate
	for _, c := range candidates {
		if strings.EqualFold(c.title, ref) {
			byTitle = append(byTitle, c)
		}
	}
	switch len(byTitle) {
	case 0:
	case 1:
		return byTitle[0].id, nil
	default:
		return "", newAmbiguous(kind, ref, byTitle)
	}

	if len(ref) < MinShortIDLength {
		return "", &NotFoundError{Kind: kind, Ref: ref, TooShort: true}
	}

	var byPrefix []candidate
	for _, c := range candidates {
		if strings.HasPrefix(string(c.id), ref) {
			byPrefix = append(byPrefix, c)
		}
	}
	switch len(byPrefix) {
	case 0:
		return "", &NotFoundError{Kind: kind, Ref: ref}
	case 1:
		return byPrefix[0].id, nil
	default:
		return "", newAmbiguous(kind, ref, byPrefix)
	}
}

func newAmbiguous(kind Kind, ref string, matches []candidate) *AmbiguousError {
	out := make([]string, 0, len(matches))
	for _, c := range matches {
		out = append(out, fmt.Sprintf("%s (%s)", c.id, c.title))
	}
	sort.Strings(out)
	return &AmbiguousError{Kind: kind, Ref: ref, Matches: out}
}

// Project resolves a project by id, name or id prefix.
func Project(b board.Board, ref string) (board.Project, error) {
	candidates := make([]candidate, 0, len(b.Projects))
	for _, p := range b.Projects {
		candidates = append(candidates, candidate{id: p.ID, title: p.Name})
	}
	id, err := resolve(KindProject, candidates, ref)
	if err != nil {
		return board.Project{}, err
	}
	p, _ := b.Project(id)
	return p, nil
}

// Column resolves a column by id, title or id prefix.
func Column(b board.Board, ref string) (board.Column, error) {
	candidates := make([]candidate, 0, len(b.Columns))
	for _, col := range b.Columns {
		candidates = append(candidates, candidate{id: col.ID, title: col.Title})
	}
	id, err := resolve(KindColumn, candidates, ref)
	if err != nil {
		return board.Column{}, err
	}
	col, _ := b.Column(id)
	return col, nil
}

// Card resolves a card anywhere on the board by id, title or id prefix and
// returns it together with the id of its column.
func Card(b board.Board, ref string) (board.Card, board.ID, error) {
	candidates := make([]candidate, 0, b.CardCount())
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			candidates = append(candidates, candidate{id: card.ID, title: card.Title})
		}
	}
	id, err := resolve(KindCard, candidates, ref)
	if err != nil {
		return board.Card{}, "", err
	}
	card, columnID, _ := b.FindCard(id)
	return card, columnID, nil
}

// NotFoundError indicates nothing matched the reference.
type NotFoundError struct {
	Kind     Kind
	Ref      string
	TooShort bool // ref was shorter than MinShortIDLength and matched no title
}

func (e *NotFoundError) Error() string {
	if e.TooShort {
		return fmt.Sprintf("no %s named '%s' (short IDs must be at least %d characters)", e.Kind, e.Ref, MinShortIDLength)
	}
	return fmt.Sprintf("no %ss found matching '%s'", e.Kind, e.Ref)
}

// AmbiguousError indicates several entities matched the reference.
type AmbiguousError struct {
	Kind    Kind
	Ref     string
	Matches []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous %s reference '%s' matches %d %ss", e.Kind, e.Ref, len(e.Matches), e.Kind)
}

// FormatAmbiguousError creates a user-friendly error message for ambiguous references.
// Lists all matches (up to 10, then "...and N more").
func FormatAmbiguousError(err *AmbiguousError) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: ambiguous %s reference '%s' matches %d %ss:\n", err.Kind, err.Ref, len(err.Matches), err.Kind)

	displayCount := len(err.Matches)
	if displayCount > 10 {
		displayCount = 10
	}
	for _, m := range err.Matches[:displayCount] {
		fmt.Fprintf(&sb, "  %s\n", m)
	}
	if len(err.Matches) > 10 {
		fmt.Fprintf(&sb, "  ...and %d more\n", len(err.Matches)-10)
	}

	fmt.Fprintf(&sb, "\nUse the full ID or a longer prefix to identify the %s.", err.Kind)
	return sb.String()
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	_, ok := err.(*NotFoundError)
	return ok
}

// IsAmbiguousError checks if an error is an AmbiguousError.
func IsAmbiguousError(err error) bool {
	_, ok := err.(*AmbiguousError)
	return ok
}
