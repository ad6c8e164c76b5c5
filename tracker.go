package cradle

import (
	"fmt"

	"github.com/cradle-di/cradle/set"
)

type (
	// Tracker records the chain of bean names currently being created so
	// that a constructor dependency cycle is reported as a readable chain
	// instead of a stack overflow.
	Tracker struct {
		visited set.Set[string]
		stack   []string
	}
)

func NewTracker() *Tracker {
	return &Tracker{
		visited: set.New[string](),
		stack:   make([]string, 0),
	}
}

func (tracker *Tracker) Push(name string) error {
	if tracker.visited.Contains(name) {
		cycle := []string{name}
		for i := len(tracker.stack) - 1; i >= 0; i-- {
			cycle = append(cycle, tracker.stack[i])
			if tracker.stack[i] == name {
				break
			}
		}

		return fmt.Errorf("cycle found:\n%s", formatCycle(cycle))
	}
	tracker.visited.Add(name)
	tracker.stack = append(tracker.stack, name)

	return nil
}

func (tracker *Tracker) Pop() string {
	if len(tracker.stack) == 0 {
		panic("tracker: pop from empty stack")
	}
	name := tracker.stack[len(tracker.stack)-1]
	tracker.stack = tracker.stack[:len(tracker.stack)-1]
	tracker.visited.Remove(name)

	return name
}

func formatCycle(cycle []string) string {
	str := ""
	tabs := 0
	for i := len(cycle) - 1; i >= 0; i-- {
		prefix := ""
		if i != len(cycle)-1 {
			prefix = " -> "
		}
		str += fmt.Sprintf("%s%s%s\n", generateTabs(tabs), prefix, cycle[i])
		tabs++
	}
	return str
}

func generateTabs(n int) string {
	str := ""
	for i := 0; i < n; i++ {
		str += "\t"
	}
	return str
}
