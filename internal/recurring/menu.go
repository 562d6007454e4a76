package recurring

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

var (
	ErrTooManyGroups = errors.New("too many task groups: only letters A-Z are supported")
	ErrEmptyMenu     = errors.New("menu has neither group nor description keys")
	ErrUnknownGroup  = errors.New("unknown task group")
)

// maxGroups is the number of letter keys available for groups
const maxGroups = 'Z' - 'A' + 1

// EntryKind tells whether a menu entry opens a group or selects a task
type EntryKind int

const (
	EntryGroup EntryKind = iota
	EntryTask
)

// Entry is one selectable line of a menu level
type Entry struct {
	Key   string
	Kind  EntryKind
	Group string // group to descend into, or the enclosing group of a task
	Task  string

	// Grouped is set on tasks listed inside a group level. Group names may
	// be empty, so Group alone cannot tell.
	Grouped bool
}

// Label returns the text shown next to the key
func (e Entry) Label() string {
	if e.Kind == EntryGroup {
		return e.Group
	}
	return e.Task
}

// Selection returns the final description for a task entry.
func (e Entry) Selection() string {
	if !e.Grouped {
		return e.Task
	}
	return fmt.Sprintf("%s: %s", e.Group, e.Task)
}

// Menu is one level of the selection menu. Entries are kept in display order.
type Menu struct {
	entries []Entry
}

// BuildTopLevel lays out the groups as lettered entries followed by the
// unclassified tasks as numbered entries.
func BuildTopLevel(g Grouping) (Menu, error) {
	if len(g.Groups) > maxGroups {
		return Menu{}, fmt.Errorf("%w (got %d groups)", ErrTooManyGroups, len(g.Groups))
	}

	entries := make([]Entry, 0, len(g.Groups)+len(g.Unclassified))
	for i, group := range g.Groups {
		entries = append(entries, Entry{
			Key:   string(rune('A' + i)),
			Kind:  EntryGroup,
			Group: group.Name,
		})
	}
	for i, task := range g.Unclassified {
		entries = append(entries, Entry{
			Key:  strconv.Itoa(i + 1),
			Kind: EntryTask,
			Task: task,
		})
	}
	return Menu{entries: entries}, nil
}

// BuildGroupLevel numbers the items of the named group from 1.
func BuildGroupLevel(g Grouping, name string) (Menu, error) {
	group, ok := g.Lookup(name)
	if !ok {
		return Menu{}, fmt.Errorf("%w: %q", ErrUnknownGroup, name)
	}

	entries := make([]Entry, 0, len(group.Items))
	for i, item := range group.Items {
		entries = append(entries, Entry{
			Key:     strconv.Itoa(i + 1),
			Kind:    EntryTask,
			Group:   group.Name,
			Task:    item,
			Grouped: true,
		})
	}
	return Menu{entries: entries}, nil
}

// Entries returns a copy of the menu entries in display order
func (m Menu) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Lookup finds the entry with the given key
func (m Menu) Lookup(key string) (Entry, bool) {
	for _, e := range m.entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// KeyRange returns the last letter key and the highest numeric key. Zero
// values mean the level has no key of that kind.
func (m Menu) KeyRange() (lastLetter string, lastNumber int, err error) {
	for _, e := range m.entries {
		if e.Kind == EntryGroup {
			lastLetter = e.Key
			continue
		}
		if n, convErr := strconv.Atoi(e.Key); convErr == nil && n > lastNumber {
			lastNumber = n
		}
	}
	if lastLetter == "" && lastNumber == 0 {
		return "", 0, ErrEmptyMenu
	}
	return lastLetter, lastNumber, nil
}

// Prompt returns the selection prompt for this level
func (m Menu) Prompt() (string, error) {
	letter, number, err := m.KeyRange()
	if err != nil {
		return "", err
	}

	var choices string
	switch {
	case letter != "" && number > 0:
		choices = fmt.Sprintf("group [A-%s] or description [1-%d]", letter, number)
	case letter != "":
		choices = fmt.Sprintf("group [A-%s]", letter)
	default:
		choices = fmt.Sprintf("description [1-%d]", number)
	}
	return fmt.Sprintf("==> Select %s (ctrl+c to cancel): ", choices), nil
}

// Render writes one line per entry in display order
func (m Menu) Render(w io.Writer) error {
	for _, e := range m.entries {
		if _, err := fmt.Fprintf(w, "%4s: %s\n", e.Key, e.Label()); err != nil {
			return err
		}
	}
	return nil
}
