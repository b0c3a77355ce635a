package board

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleBoard returns a board with two columns and three cards.
func sampleBoard(t *testing.T) (Board, ID, ID) {
	t.Helper()
	b := New()
	b, todo := b.AddColumn("To Do")
	b, done := b.AddColumn("Done")
	b, _ = b.AddCard(todo, "one", "")
	b, _ = b.AddCard(todo, "two", DefaultPalette[2])
	b, _ = b.AddCard(done, "three", DefaultPalette[4])
	require.NoError(t, b.Validate())
	return b, todo, done
}

func TestProjects(t *testing.T) {
	t.Run("add and rename", func(t *testing.T) {
		b, id := New().AddProject("Website")
		require.NotEmpty(t, id)
		assert.Equal(t, "Website", b.ProjectName(&id))

		renamed := b.RenameProject(id, "Web")
		assert.Equal(t, "Web", renamed.ProjectName(&id))
		assert.Equal(t, "Website", b.ProjectName(&id), "receiver must not change")
	})

	t.Run("blank names are ignored", func(t *testing.T) {
		b, id := New().AddProject("   ")
		assert.Empty(t, id)
		assert.Empty(t, b.Projects)

		b, id = b.AddProject("Real")
		assert.Equal(t, "Real", b.RenameProject(id, " ").ProjectName(&id))
	})

	t.Run("unknown project name", func(t *testing.T) {
		missing := ID("missing")
		assert.Equal(t, NoProjectName, New().ProjectName(&missing))
		assert.Equal(t, NoProjectName, New().ProjectName(nil))
	})
}

func TestColumns(t *testing.T) {
	t.Run("add uses defaults", func(t *testing.T) {
		b, id := New().AddColumn("")
		col, ok := b.Column(id)
		require.True(t, ok)
		assert.Equal(t, DefaultColumnTitle, col.Title)
		assert.Nil(t, col.ProjectID)
		assert.Empty(t, col.Cards)
	})

	t.Run("rename", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		col, _ := b.RenameColumn(todo, "Backlog").Column(todo)
		assert.Equal(t, "Backlog", col.Title)
	})

	t.Run("assign and unassign project", func(t *testing.T) {
		b, todo, done := sampleBoard(t)
		b, pid := b.AddProject("Ops")

		b = b.AssignColumnProject(todo, &pid)
		col, _ := b.Column(todo)
		require.NotNil(t, col.ProjectID)
		assert.Equal(t, pid, *col.ProjectID)
		other, _ := b.Column(done)
		assert.Nil(t, other.ProjectID)

		col, _ = b.AssignColumnProject(todo, nil).Column(todo)
		assert.Nil(t, col.ProjectID)
	})

	t.Run("delete removes the column and exactly its cards", func(t *testing.T) {
		b, todo, done := sampleBoard(t)
		b = b.ExpandAll()
		before := b

		b = b.DeleteColumn(todo, Confirmed)
		assert.Len(t, b.Columns, 1)
		assert.Equal(t, done, b.Columns[0].ID)
		assert.Equal(t, 1, b.CardCount())

		for _, card := range before.Columns[0].Cards {
			_, _, found := b.FindCard(card.ID)
			assert.False(t, found)
			assert.NotContains(t, b.ExpandedCards, card.ID)
		}
		assert.True(t, b.IsExpanded(before.Columns[1].Cards[0].ID))

		assert.Len(t, before.Columns, 2, "receiver must not change")
	})

	t.Run("delete requires confirmation", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		assert.Len(t, b.DeleteColumn(todo, NotConfirmed).Columns, 2)
	})

	t.Run("unknown column is a no-op", func(t *testing.T) {
		b, _, _ := sampleBoard(t)
		assert.Equal(t, b, b.DeleteColumn("nope", Confirmed))
		assert.Equal(t, b, b.RenameColumn("nope", "x"))
	})
}

func TestCards(t *testing.T) {
	t.Run("add uses defaults", func(t *testing.T) {
		b, todo := New().AddColumn("To Do")
		b, id := b.AddCard(todo, "", "")
		card, colID, ok := b.FindCard(id)
		require.True(t, ok)
		assert.Equal(t, todo, colID)
		assert.Equal(t, DefaultCardTitle, card.Title)
		assert.Equal(t, DefaultPalette[0], card.Color)
		assert.Nil(t, card.DueDate)
		assert.Empty(t, card.Notes)
		assert.False(t, card.Archived)
		assert.Zero(t, card.Progress)
	})

	t.Run("add to unknown column", func(t *testing.T) {
		b, id := New().AddCard("nope", "x", "")
		assert.Empty(t, id)
		assert.Zero(t, b.CardCount())
	})

	t.Run("field updates", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		cardID := b.Columns[0].Cards[0].ID
		when := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)

		b = b.UpdateCardTitle(todo, cardID, "renamed")
		b = b.UpdateCardColor(todo, cardID, "#010203")
		b = b.UpdateCardDueDate(todo, cardID, &when)
		b = b.UpdateCardNotes(todo, cardID, "some notes")

		card, _, _ := b.FindCard(cardID)
		assert.Equal(t, "renamed", card.Title)
		assert.Equal(t, "#010203", card.Color)
		require.NotNil(t, card.DueDate)
		assert.True(t, when.Equal(*card.DueDate))
		assert.Equal(t, "some notes", card.Notes)

		card, _, _ = b.UpdateCardDueDate(todo, cardID, nil).FindCard(cardID)
		assert.Nil(t, card.DueDate)
	})

	t.Run("update with wrong column leaves board unchanged", func(t *testing.T) {
		b, _, done := sampleBoard(t)
		cardID := b.Columns[0].Cards[0].ID
		assert.Equal(t, b, b.UpdateCardTitle(done, cardID, "x"))
	})

	t.Run("update does not touch other columns", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		next := b.UpdateCardNotes(todo, b.Columns[0].Cards[1].ID, "n")
		assert.Equal(t, b.Columns[1], next.Columns[1])
		assert.Equal(t, b.Columns[0].Cards[0], next.Columns[0].Cards[0])
		assert.Empty(t, b.Columns[0].Cards[1].Notes)
	})

	t.Run("archive toggling", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		cardID := b.Columns[0].Cards[0].ID

		b = b.ToggleCardArchive(todo, cardID)
		card, _, _ := b.FindCard(cardID)
		assert.True(t, card.Archived)

		b = b.ArchiveCard(todo, cardID)
		card, _, _ = b.FindCard(cardID)
		assert.True(t, card.Archived)

		b = b.ToggleCardArchive(todo, cardID)
		card, _, _ = b.FindCard(cardID)
		assert.False(t, card.Archived)
	})

	t.Run("permanent delete", func(t *testing.T) {
		b, todo, _ := sampleBoard(t)
		cardID := b.Columns[0].Cards[0].ID
		b = b.ToggleExpanded(cardID)

		assert.Equal(t, 3, b.DeleteCard(todo, cardID, NotConfirmed).CardCount())

		after := b.DeleteCard(todo, cardID, Confirmed)
		assert.Equal(t, 2, after.CardCount())
		_, _, found := after.FindCard(cardID)
		assert.False(t, found)
		assert.False(t, after.IsExpanded(cardID))
		assert.Equal(t, 3, b.CardCount())
	})
}

func TestUpdateCardProgress(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{150, 100},
		{-5, 0},
		{42, 42},
		{42.9, 42},
		{100, 100},
		{0, 0},
		{math.NaN(), 0},
		{math.Inf(1), 100},
	}

	b, todo, _ := sampleBoard(t)
	cardID := b.Columns[0].Cards[0].ID
	for _, tt := range tests {
		card, _, _ := b.UpdateCardProgress(todo, cardID, tt.in).FindCard(cardID)
		assert.Equal(t, tt.want, card.Progress, "input %v", tt.in)
		assert.Equal(t, tt.want, ClampProgress(float64(ClampProgress(tt.in))), "clamping is idempotent")
	}
}

func TestUIState(t *testing.T) {
	b, _, _ := sampleBoard(t)
	first := b.Columns[0].Cards[0].ID
	second := b.Columns[0].Cards[1].ID

	t.Run("toggle expanded", func(t *testing.T) {
		next := b.ToggleExpanded(first)
		assert.True(t, next.IsExpanded(first))
		assert.False(t, b.IsExpanded(first))
		assert.False(t, next.ToggleExpanded(first).IsExpanded(first))
	})

	t.Run("expand and collapse all", func(t *testing.T) {
		all := b.ExpandAll()
		assert.Len(t, all.ExpandedCards, 3)
		assert.Empty(t, all.CollapseAll().ExpandedCards)
	})

	t.Run("locate expands only the target", func(t *testing.T) {
		located := b.ExpandAll().LocateCard(second)
		assert.Equal(t, map[ID]bool{second: true}, located.ExpandedCards)
	})

	t.Run("display flags", func(t *testing.T) {
		assert.True(t, b.SetShowArchived(true).ShowArchived)
		assert.False(t, b.SetShowTop10(false).ShowTop10)

		pid := ID("p")
		selected := b.SelectProject(&pid)
		require.NotNil(t, selected.SelectedProjectID)
		pid = "changed"
		assert.Equal(t, ID("p"), *selected.SelectedProjectID)
		assert.Nil(t, selected.SelectProject(nil).SelectedProjectID)
	})
}

func TestDefault(t *testing.T) {
	b := Default(DefaultPalette)
	require.NoError(t, b.Validate())
	require.Len(t, b.Projects, 1)
	require.Len(t, b.Columns, 1)
	assert.Equal(t, "Default Project", b.Projects[0].Name)
	assert.Equal(t, "To Do", b.Columns[0].Title)
	assert.True(t, b.Columns[0].HasProject(b.Projects[0].ID))
	require.Len(t, b.Columns[0].Cards, 1)
	assert.Equal(t, "Task 1", b.Columns[0].Cards[0].Title)
	assert.Equal(t, DefaultPalette[0], b.Columns[0].Cards[0].Color)
	assert.True(t, b.ShowTop10)
}
