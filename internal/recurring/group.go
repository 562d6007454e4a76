package recurring

import (
	"slices"
	"strings"
)

// Delimiter separates a group name from the task text in a recurring task.
const Delimiter = "|"

// UnclassifiedName is the display name of the bucket holding tasks without a group.
const UnclassifiedName = "unclassified"

// Group is a named set of recurring task descriptions
type Group struct {
	Name  string
	Items []string
}

// Grouping is the result of splitting recurring tasks by their group prefix.
// Unclassified is kept apart from the named groups so that no configured
// group name can ever collide with it.
type Grouping struct {
	Groups       []Group // sorted by name
	Unclassified []string
}

// GroupTasks partitions task descriptions using the "Group | Description"
// convention. Item order inside a group follows the input order.
func GroupTasks(tasks []string) Grouping {
	var g Grouping
	index := make(map[string]int)

	for _, task := range tasks {
		name, item, found := strings.Cut(task, Delimiter)
		if !found {
			g.Unclassified = append(g.Unclassified, strings.TrimSpace(task))
			continue
		}

		name = strings.TrimSpace(name)
		item = strings.TrimSpace(item)
		if i, ok := index[name]; ok {
			g.Groups[i].Items = append(g.Groups[i].Items, item)
			continue
		}
		index[name] = len(g.Groups)
		g.Groups = append(g.Groups, Group{Name: name, Items: []string{item}})
	}

	slices.SortStableFunc(g.Groups, func(a, b Group) int {
		return strings.Compare(a.Name, b.Name)
	})
	return g
}

// Ordered returns every group in menu order: named groups first, then the
// unclassified bucket if it has items.
func (g Grouping) Ordered() []Group {
	out := make([]Group, 0, len(g.Groups)+1)
	out = append(out, g.Groups...)
	if len(g.Unclassified) > 0 {
		out = append(out, Group{Name: UnclassifiedName, Items: g.Unclassified})
	}
	return out
}

// Lookup finds a named group
func (g Grouping) Lookup(name string) (Group, bool) {
	for _, group := range g.Groups {
		if group.Name == name {
			return group, true
		}
	}
	return Group{}, false
}

// Len returns the total number of task descriptions in the grouping.
func (g Grouping) Len() int {
	n := len(g.Unclassified)
	for _, group := range g.Groups {
		n += len(group.Items)
	}
	return n
}
