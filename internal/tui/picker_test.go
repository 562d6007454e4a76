package tui

import (
	"testing"

	"github.com/andy/kihopunch/internal/recurring"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tasks = []string{
	"B | three",
	"A | one",
	"A | two",
	"loose task",
}

func typeAndEnter(t *testing.T, m *PickerModel, s string) tea.Cmd {
	t.Helper()
	_, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	require.Equal(t, s, m.input.Value())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestPicker_SelectsGroupedTask(t *testing.T) {
	m, err := NewPicker(tasks)
	require.NoError(t, err)

	cmd := typeAndEnter(t, m, "a")
	assert.Nil(t, cmd)
	assert.Equal(t, "A", m.session.Group())
	assert.Empty(t, m.input.Value())
	assert.Contains(t, m.View(), "Recurring tasks in A:")

	cmd = typeAndEnter(t, m, "2")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Done())
	assert.Equal(t, "A: two", m.Result())
	assert.NoError(t, m.Err())
}

func TestPicker_SelectsUnclassifiedTask(t *testing.T) {
	m, err := NewPicker(tasks)
	require.NoError(t, err)

	typeAndEnter(t, m, "1")
	assert.Equal(t, "loose task", m.Result())
}

func TestPicker_InvalidChoiceStays(t *testing.T) {
	m, err := NewPicker(tasks)
	require.NoError(t, err)

	cmd := typeAndEnter(t, m, "9")
	assert.Nil(t, cmd)
	assert.Equal(t, "Invalid choice!", m.status)
	assert.Contains(t, m.View(), "Invalid choice!")
	assert.Empty(t, m.Result())

	typeAndEnter(t, m, "B")
	assert.Empty(t, m.status)
}

func TestPicker_Cancel(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m, err := NewPicker(tasks)
		require.NoError(t, err)

		_, cmd := m.Update(tea.KeyMsg{Type: k})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.ErrorIs(t, m.Err(), ErrCancelled)
	}
}

func TestPicker_ViewListsTopLevel(t *testing.T) {
	m, err := NewPicker(tasks)
	require.NoError(t, err)

	view := m.View()
	assert.Contains(t, view, "A: A")
	assert.Contains(t, view, "B: B")
	assert.Contains(t, view, "1: loose task")
	assert.Contains(t, view, "Select group [A-B] or description [1-1]")
}

func TestNewPicker_NoTasks(t *testing.T) {
	_, err := NewPicker(nil)
	assert.ErrorIs(t, err, recurring.ErrNoTasks)
}

func TestPicker_EmptyTaskTextCompletes(t *testing.T) {
	m, err := NewPicker([]string{"A |", "loose task"})
	require.NoError(t, err)

	typeAndEnter(t, m, "A")
	cmd := typeAndEnter(t, m, "1")
	require.NotNil(t, cmd)
	assert.True(t, m.Done())
	assert.Equal(t, "A: ", m.Result())
	assert.Contains(t, m.View(), "Selected:")
	assert.NotContains(t, m.View(), "Recurring tasks in A:")
}
