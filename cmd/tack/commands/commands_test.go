package commands

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/tack/internal/persist"
	"github.com/dyluth/tack/internal/printer"
	"github.com/dyluth/tack/pkg/board"
)

func init() {
	color.NoColor = true
}

// testEnv is a throwaway board with its own config file.
type testEnv struct {
	dir       string
	config    string
	boardPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		config:    filepath.Join(dir, "tack.yml"),
		boardPath: filepath.Join(dir, "board.json"),
	}
	content := fmt.Sprintf(`version: "1.0"
instance: cli-test
storage:
  backend: file
  path: %s
export_dir: %s
log_level: error
`, env.boardPath, filepath.Join(dir, "exports"))
	require.NoError(t, os.WriteFile(env.config, []byte(content), 0644))
	return env
}

// run executes tack with the env's config and captures printer output.
func (env *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	restore := printer.SetOutput(&stdout, &stderr)
	defer restore()

	resetFlags(rootCmd)
	err := execute(append([]string{"--config", env.config}, args...))
	return stdout.String(), stderr.String(), err
}

// mustRun is run that fails the test on error.
func (env *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, err := env.run(t, args...)
	require.NoError(t, err, "tack %s\nstderr: %s", strings.Join(args, " "), stderr)
	return stdout
}

// saved decodes the board file written by the last command.
func (env *testEnv) saved(t *testing.T) board.Board {
	t.Helper()
	data, err := os.ReadFile(env.boardPath)
	require.NoError(t, err)
	b, err := persist.Decode(data)
	require.NoError(t, err)
	return b
}

// withInput feeds the shared input reader for prompts and the shell.
func withInput(t *testing.T, input string) {
	t.Helper()
	prev := stdin
	stdin = bufio.NewReader(strings.NewReader(input))
	t.Cleanup(func() { stdin = prev })
}

func findColumn(t *testing.T, b board.Board, title string) board.Column {
	t.Helper()
	for _, col := range b.Columns {
		if col.Title == title {
			return col
		}
	}
	require.Failf(t, "column not found", "no column titled %q", title)
	return board.Column{}
}

func findCard(t *testing.T, b board.Board, title string) board.Card {
	t.Helper()
	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if card.Title == title {
				return card
			}
		}
	}
	require.Failf(t, "card not found", "no card titled %q", title)
	return board.Card{}
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	env := newTestEnv(t)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	_, _, err := env.run(t)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Usage:")
	assert.Contains(t, buf.String(), "tack")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	env := newTestEnv(t)
	_, stderr, err := env.run(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.True(t, printer.IsReported(err))
	assert.Contains(t, stderr, "unknown flag")
}

func TestBoard_FirstRunPersistsDefaultBoard(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "board")
	assert.Contains(t, out, "Board (All Projects)")
	assert.Contains(t, out, "== To Do [Default Project]")
	assert.Contains(t, out, "Task 1")
	assert.Contains(t, out, "Top 10")

	first := env.saved(t)
	env.mustRun(t, "board")
	second := env.saved(t)
	assert.Equal(t, first.Columns[0].Cards[0].ID, second.Columns[0].Cards[0].ID, "ids are stable across runs")
}

func TestProjectCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "project", "add", "Work")
	assert.Contains(t, out, "Created project 'Work'")

	out = env.mustRun(t, "project", "list")
	assert.Contains(t, out, "Default Project")
	assert.Contains(t, out, "Work")

	env.mustRun(t, "project", "rename", "work", "Home")
	b := env.saved(t)
	require.Len(t, b.Projects, 2)
	assert.Equal(t, "Home", b.Projects[1].Name)

	out = env.mustRun(t, "project", "list", "-o", "json")
	var projects []board.Project
	require.NoError(t, json.Unmarshal([]byte(out), &projects))
	assert.Len(t, projects, 2)

	_, stderr, err := env.run(t, "project", "add", "  ")
	require.Error(t, err)
	assert.Contains(t, stderr, "project name is empty")

	_, stderr, err = env.run(t, "project", "rename", "nope", "X")
	require.Error(t, err)
	assert.Contains(t, stderr, "project 'nope' not found")
}

func TestColumnCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "project", "add", "Work")

	t.Run("add with project", func(t *testing.T) {
		out := env.mustRun(t, "column", "add", "Doing", "--project", "Work")
		assert.Contains(t, out, "Added column 'Doing'")
		assert.Contains(t, out, "to Work")

		b := env.saved(t)
		doing := findColumn(t, b, "Doing")
		assert.Equal(t, "Work", b.ProjectName(doing.ProjectID))
	})

	t.Run("add without title", func(t *testing.T) {
		env.mustRun(t, "column", "add")
		findColumn(t, env.saved(t), board.DefaultColumnTitle)
	})

	t.Run("rename and unassign", func(t *testing.T) {
		env.mustRun(t, "column", "rename", "doing", "In Progress")
		env.mustRun(t, "column", "assign", "In Progress", "none")
		col := findColumn(t, env.saved(t), "In Progress")
		assert.Nil(t, col.ProjectID)
	})

	t.Run("move", func(t *testing.T) {
		env.mustRun(t, "column", "move", "In Progress", "1")
		b := env.saved(t)
		assert.Equal(t, "In Progress", b.Columns[0].Title)
		assert.Equal(t, "To Do", b.Columns[1].Title)

		_, stderr, err := env.run(t, "column", "move", "In Progress", "9")
		require.Error(t, err)
		assert.Contains(t, stderr, "Position 9 is outside the board.")
		assert.Equal(t, "In Progress", env.saved(t).Columns[0].Title)
	})

	t.Run("show", func(t *testing.T) {
		out := env.mustRun(t, "column", "show", "to do")
		assert.Contains(t, out, "== To Do [Default Project]")
		assert.Contains(t, out, "Task 1")
	})

	t.Run("delete declined keeps the column", func(t *testing.T) {
		withInput(t, "n\n")
		out := env.mustRun(t, "column", "delete", "To Do")
		assert.Contains(t, out, "Delete column 'To Do' and its 1 card(s)? [y/N]")
		assert.Contains(t, out, "Column kept")
		findColumn(t, env.saved(t), "To Do")
	})

	t.Run("delete with end of input keeps the column", func(t *testing.T) {
		withInput(t, "")
		env.mustRun(t, "column", "delete", "To Do")
		findColumn(t, env.saved(t), "To Do")
	})

	t.Run("delete confirmed removes the column and its cards", func(t *testing.T) {
		withInput(t, "yes\n")
		env.mustRun(t, "column", "delete", "To Do")
		b := env.saved(t)
		assert.Len(t, b.Columns, 2)
		assert.Equal(t, 0, b.CardCount())
	})

	t.Run("delete with --yes", func(t *testing.T) {
		env.mustRun(t, "column", "delete", "--yes", board.DefaultColumnTitle)
		assert.Len(t, env.saved(t).Columns, 1)
	})
}

func TestCardCommands(t *testing.T) {
	env := newTestEnv(t)

	t.Run("add with fields", func(t *testing.T) {
		out := env.mustRun(t, "card", "add", "To Do", "Write report",
			"--color", "amber", "--due", "2030-01-02", "--notes", "two pages", "--progress", "40")
		assert.Contains(t, out, "Added card 'Write report'")

		card := findCard(t, env.saved(t), "Write report")
		assert.Equal(t, "#FFD740", card.Color)
		require.NotNil(t, card.DueDate)
		assert.Equal(t, 2030, card.DueDate.Year())
		assert.Equal(t, "two pages", card.Notes)
		assert.Equal(t, 40, card.Progress)
	})

	t.Run("add with defaults", func(t *testing.T) {
		env.mustRun(t, "card", "add", "To Do")
		card := findCard(t, env.saved(t), board.DefaultCardTitle)
		assert.Equal(t, board.DefaultPalette[0], card.Color)
		assert.Nil(t, card.DueDate)
	})

	t.Run("update fields", func(t *testing.T) {
		env.mustRun(t, "card", "title", "write report", "Write summary")
		env.mustRun(t, "card", "color", "Write summary", "#448aff")
		env.mustRun(t, "card", "notes", "Write summary", "one page")
		env.mustRun(t, "card", "due", "Write summary", "none")

		card := findCard(t, env.saved(t), "Write summary")
		assert.Equal(t, "#448AFF", card.Color)
		assert.Equal(t, "one page", card.Notes)
		assert.Nil(t, card.DueDate)
	})

	t.Run("progress is clamped", func(t *testing.T) {
		tests := []struct {
			value string
			want  int
		}{
			{"150", 100},
			{"-5", 0},
			{"42.9", 42},
			{"75%", 75},
		}
		for _, tt := range tests {
			t.Run(tt.value, func(t *testing.T) {
				env.mustRun(t, "card", "progress", "Write summary", "--", tt.value)
				assert.Equal(t, tt.want, findCard(t, env.saved(t), "Write summary").Progress)
			})
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		_, stderr, err := env.run(t, "card", "color", "Write summary", "octarine")
		require.Error(t, err)
		assert.Contains(t, stderr, "unknown color 'octarine'")
		assert.Contains(t, stderr, "Valid colors: red, pink, purple, blue, teal, amber")

		_, stderr, err = env.run(t, "card", "due", "Write summary", "someday")
		require.Error(t, err)
		assert.Contains(t, stderr, "invalid due date")

		_, stderr, err = env.run(t, "card", "progress", "Write summary", "lots")
		require.Error(t, err)
		assert.Contains(t, stderr, "invalid progress")

		assert.Equal(t, "#448AFF", findCard(t, env.saved(t), "Write summary").Color)
	})

	t.Run("archive toggles", func(t *testing.T) {
		out := env.mustRun(t, "card", "archive", "Write summary")
		assert.Contains(t, out, "Archived card 'Write summary'")
		assert.True(t, findCard(t, env.saved(t), "Write summary").Archived)

		out = env.mustRun(t, "board")
		assert.NotContains(t, out, "Write summary", "archived cards are hidden by default")

		out = env.mustRun(t, "card", "archive", "Write summary")
		assert.Contains(t, out, "Restored card 'Write summary'")
		assert.False(t, findCard(t, env.saved(t), "Write summary").Archived)
	})

	t.Run("show and locate", func(t *testing.T) {
		out := env.mustRun(t, "card", "show", "Write summary")
		assert.Contains(t, out, "Column:   To Do (Default Project)")
		assert.Contains(t, out, "one page")

		out = env.mustRun(t, "card", "locate", "Write summary")
		assert.Contains(t, out, "| one page")
		b := env.saved(t)
		card := findCard(t, b, "Write summary")
		assert.Equal(t, map[board.ID]bool{card.ID: true}, b.ExpandedCards)
	})

	t.Run("delete", func(t *testing.T) {
		withInput(t, "y\n")
		env.mustRun(t, "card", "delete", board.DefaultCardTitle)
		b := env.saved(t)
		for _, col := range b.Columns {
			for _, card := range col.Cards {
				assert.NotEqual(t, board.DefaultCardTitle, card.Title)
			}
		}
	})

	t.Run("unknown card", func(t *testing.T) {
		_, stderr, err := env.run(t, "card", "show", "zz")
		require.Error(t, err)
		assert.Contains(t, stderr, "card 'zz' not found")
		assert.Contains(t, stderr, "short IDs must be at least 4 characters")
	})
}

func TestTopAndFind(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "card", "add", "To Do", "Later", "--color", "amber")
	env.mustRun(t, "card", "add", "To Do", "Urgent", "--color", "red", "--due", "+1d")
	env.mustRun(t, "card", "add", "To Do", "Old", "--color", "red")
	env.mustRun(t, "card", "archive", "Old")

	t.Run("top ranks by color then due date", func(t *testing.T) {
		out := env.mustRun(t, "top", "-o", "json")
		var ranked []board.RankedCard
		require.NoError(t, json.Unmarshal([]byte(out), &ranked))

		titles := make([]string, 0, len(ranked))
		for _, rc := range ranked {
			titles = append(titles, rc.Title)
		}
		assert.Equal(t, []string{"Urgent", "Task 1", "Later"}, titles)
	})

	t.Run("top table", func(t *testing.T) {
		out := env.mustRun(t, "top")
		assert.Less(t, strings.Index(out, "Urgent"), strings.Index(out, "Later"))
		assert.NotContains(t, out, "Old")
	})

	t.Run("find by color", func(t *testing.T) {
		out := env.mustRun(t, "find", "--color", "amber")
		assert.Contains(t, out, "Later")
		assert.Contains(t, out, "1 card found")
	})

	t.Run("find includes archived on request", func(t *testing.T) {
		out := env.mustRun(t, "find", "--title", "o*")
		assert.Contains(t, out, "No cards found")

		out = env.mustRun(t, "find", "--title", "o*", "--archived")
		assert.Contains(t, out, "[archived] Old")
	})

	t.Run("find by due range", func(t *testing.T) {
		out := env.mustRun(t, "find", "--due-before", "+2d", "-o", "json")
		var cards []board.RankedCard
		require.NoError(t, json.Unmarshal([]byte(out), &cards))
		require.Len(t, cards, 1)
		assert.Equal(t, "Urgent", cards[0].Title)
		assert.Equal(t, "To Do", cards[0].ColumnTitle)

		_, stderr, err := env.run(t, "find", "--due-after", "+3d", "--due-before", "+1d")
		require.Error(t, err)
		assert.Contains(t, stderr, "--due-after must be before --due-before")
	})
}

func TestViewCommands(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "project", "add", "Work")
	env.mustRun(t, "column", "add", "Work Items", "--project", "Work")
	env.mustRun(t, "card", "add", "Work Items", "Deploy", "--notes", "after lunch")

	t.Run("toggles", func(t *testing.T) {
		env.mustRun(t, "view", "archived", "on")
		env.mustRun(t, "view", "top10", "off")
		b := env.saved(t)
		assert.True(t, b.ShowArchived)
		assert.False(t, b.ShowTop10)

		out := env.mustRun(t, "board")
		assert.Contains(t, out, "showing archived")
		assert.NotContains(t, out, "Top 10")

		_, _, err := env.run(t, "view", "archived", "maybe")
		require.Error(t, err)
	})

	t.Run("project filter", func(t *testing.T) {
		env.mustRun(t, "view", "project", "Work")
		out := env.mustRun(t, "board")
		assert.Contains(t, out, "Board (Work)")
		assert.Contains(t, out, "Work Items")
		assert.NotContains(t, out, "To Do")

		env.mustRun(t, "view", "project", "all")
		assert.Nil(t, env.saved(t).SelectedProjectID)
	})

	t.Run("expand and collapse", func(t *testing.T) {
		env.mustRun(t, "view", "expand", "Deploy")
		out := env.mustRun(t, "board")
		assert.Contains(t, out, "| after lunch")

		env.mustRun(t, "view", "expand", "Deploy")
		b := env.saved(t)
		assert.True(t, b.IsExpanded(findCard(t, b, "Deploy").ID), "expand is idempotent")

		env.mustRun(t, "view", "collapse", "Deploy")
		b = env.saved(t)
		assert.False(t, b.IsExpanded(findCard(t, b, "Deploy").ID))

		env.mustRun(t, "view", "expand", "all")
		b = env.saved(t)
		assert.Len(t, b.ExpandedCards, b.CardCount())

		env.mustRun(t, "view", "collapse")
		assert.Empty(t, env.saved(t).ExpandedCards)
	})
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "card", "add", "To Do", "Exported")

	out := env.mustRun(t, "export")
	assert.Contains(t, out, "Board exported to")
	matches, err := filepath.Glob(filepath.Join(env.dir, "exports", "management-board-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	exported := matches[0]

	stdout := env.mustRun(t, "export", "--stdout")
	fromStdout, err := persist.Decode([]byte(stdout))
	require.NoError(t, err)
	findCard(t, fromStdout, "Exported")

	env.mustRun(t, "card", "add", "To Do", "After export")

	t.Run("invalid file keeps the board", func(t *testing.T) {
		bad := filepath.Join(env.dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))

		_, stderr, err := env.run(t, "import", "--yes", bad)
		require.Error(t, err)
		assert.Contains(t, stderr, "Invalid file format")
		findCard(t, env.saved(t), "After export")
	})

	t.Run("missing file", func(t *testing.T) {
		_, stderr, err := env.run(t, "import", "--yes", filepath.Join(env.dir, "missing.json"))
		require.Error(t, err)
		assert.Contains(t, stderr, "import failed")
	})

	t.Run("declined import keeps the board", func(t *testing.T) {
		withInput(t, "n\n")
		out := env.mustRun(t, "import", exported)
		assert.Contains(t, out, "Board kept")
		findCard(t, env.saved(t), "After export")
	})

	t.Run("import replaces the board", func(t *testing.T) {
		out := env.mustRun(t, "import", "--yes", exported)
		assert.Contains(t, out, "Imported 1 column(s) and 2 card(s)")

		b := env.saved(t)
		findCard(t, b, "Exported")
		assert.Equal(t, 2, b.CardCount())
	})

	t.Run("empty board", func(t *testing.T) {
		empty := filepath.Join(env.dir, "empty.json")
		require.NoError(t, os.WriteFile(empty, []byte(`{"projects":[],"columns":[]}`), 0644))
		env.mustRun(t, "import", "--yes", empty)

		b := env.saved(t)
		assert.Empty(t, b.Projects)
		assert.Empty(t, b.Columns)
		assert.Contains(t, env.mustRun(t, "board"), "No columns")
	})
}

func TestCorruptBoardIsNotOverwritten(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.boardPath, []byte(`{"columns":`), 0644))

	_, stderr, err := env.run(t, "card", "add", "To Do", "X")
	require.Error(t, err)
	assert.Contains(t, stderr, "Invalid file format")

	data, err := os.ReadFile(env.boardPath)
	require.NoError(t, err)
	assert.Equal(t, `{"columns":`, string(data))
}

func TestSaveAndStatus(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "save")
	assert.Contains(t, out, "Board saved to "+env.boardPath)

	out = env.mustRun(t, "status")
	assert.Contains(t, out, "Instance:   cli-test")
	assert.Contains(t, out, "Backend:    file (local)")
	assert.Contains(t, out, "Healthy")

	out = env.mustRun(t, "status", "-o", "json")
	var health map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &health))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, false, health["dirty"])
}

func TestStatusDoesNotWrite(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "status")
	_, err := os.Stat(env.boardPath)
	assert.True(t, os.IsNotExist(err), "status never creates the board file")
}

func TestInstanceFlag(t *testing.T) {
	env := newTestEnv(t)
	out := env.mustRun(t, "--instance", "other", "status")
	assert.Contains(t, out, "Instance:   other")

	_, stderr, err := env.run(t, "--instance", "Not Valid", "status")
	require.Error(t, err)
	assert.Contains(t, stderr, "invalid configuration")
}

func TestShell(t *testing.T) {
	env := newTestEnv(t)
	withInput(t, strings.Join([]string{
		"# set up a board",
		"project add Shell",
		`column add "Two Words" --project Shell`,
		`tack card add "two words" 'Quoted title' --color teal`,
		"card show nope",
		`card add "unterminated`,
		"column delete 'Two Words'",
		"n",
		"exit",
		"project add Ignored",
	}, "\n")+"\n")

	stdout, stderr, err := env.run(t, "shell")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created project 'Shell'")
	assert.Contains(t, stdout, "Column kept")
	assert.Contains(t, stderr, "card 'nope' not found")
	assert.Contains(t, stderr, "invalid input")
	assert.Nil(t, session, "session is cleared on exit")

	b := env.saved(t)
	col := findColumn(t, b, "Two Words")
	assert.Equal(t, "Shell", b.ProjectName(col.ProjectID))
	card := findCard(t, b, "Quoted title")
	assert.Equal(t, "#64FFDA", card.Color)
	for _, p := range b.Projects {
		assert.NotEqual(t, "Ignored", p.Name, "lines after exit are not run")
	}
}

func TestShell_EndOfInputSaves(t *testing.T) {
	env := newTestEnv(t)
	withInput(t, "project add Last")

	_, _, err := env.run(t, "shell")
	require.NoError(t, err)

	b := env.saved(t)
	require.Len(t, b.Projects, 2)
	assert.Equal(t, "Last", b.Projects[1].Name)
}

func TestShell_CannotNest(t *testing.T) {
	env := newTestEnv(t)
	withInput(t, "shell\nexit\n")

	_, stderr, err := env.run(t, "shell")
	require.NoError(t, err)
	assert.Contains(t, stderr, "already in a shell")
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)
	t.Setenv("HOME", t.TempDir())
	dir := filepath.Join(env.dir, "project")

	out := env.mustRun(t, "init", "--dir", dir, "--format", "toml")
	assert.Contains(t, out, "Created "+filepath.Join(dir, "tack.toml"))

	_, stderr, err := env.run(t, "init", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, stderr, "already initialized")

	env.mustRun(t, "init", "--dir", dir, "--force")
	_, err = os.Stat(filepath.Join(dir, "tack.yml"))
	assert.NoError(t, err)
}
