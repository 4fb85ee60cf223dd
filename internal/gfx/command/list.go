package command

import (
	"fmt"
	"iter"
	"strings"
)

// List is an ordered, append-only sequence of commands from one recording
// pass. Order is draw order and state-change order; executors replay it
// exactly.
type List struct {
	cmds []Command
}

// NewList returns an empty list with room for n commands.
func NewList(n int) *List {
	return &List{cmds: make([]Command, 0, n)}
}

// Append adds c to the end of the list.
func (l *List) Append(c Command) {
	l.cmds = append(l.cmds, c)
}

// Len returns the number of commands.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.cmds)
}

// At returns the i-th command.
func (l *List) At(i int) Command {
	return l.cmds[i]
}

// All iterates the commands in order.
func (l *List) All() iter.Seq2[int, Command] {
	return func(yield func(int, Command) bool) {
		if l == nil {
			return
		}
		for i, c := range l.cmds {
			if !yield(i, c) {
				return
			}
		}
	}
}

// Kinds returns the kind of every command, in order.
func (l *List) Kinds() []Kind {
	kinds := make([]Kind, 0, l.Len())
	for _, c := range l.All() {
		kinds = append(kinds, c.Kind())
	}
	return kinds
}

// Count returns how many commands of kind k the list holds.
func (l *List) Count(k Kind) int {
	n := 0
	for _, c := range l.All() {
		if c.Kind() == k {
			n++
		}
	}
	return n
}

// String dumps one command per line.
func (l *List) String() string {
	var b strings.Builder
	for i, c := range l.All() {
		fmt.Fprintf(&b, "%3d %-20s %+v\n", i, c.Kind(), c)
	}
	return b.String()
}
