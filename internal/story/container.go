package story

import "strings"

// Container flag bits.
const (
	FlagVisits         = 0x1
	FlagTurns          = 0x2
	FlagCountStartOnly = 0x4
)

// Container is a named or anonymous block of content.
type Container struct {
	Name    string
	Content []Instruction
	// Named holds every named child, both those that appear in Content
	// and the named-only children.
	Named map[string]*Container
	// NamedOnly lists the named-only children in document order.
	NamedOnly []string
	Flags     int
	Parent    *Container
	Path      Path
}

// NamedOnlyContainers returns the named-only children in document order.
func (c *Container) NamedOnlyContainers() []*Container {
	out := make([]*Container, 0, len(c.NamedOnly))
	for _, name := range c.NamedOnly {
		out = append(out, c.Named[name])
	}
	return out
}

// IsDone reports whether the first instruction is the "done" command.
func (c *Container) IsDone() bool {
	return len(c.Content) > 0 && IsCommand(c.Content[0], CmdDone)
}

// HasChoiceBranches reports whether any named child is a choice's inner
// content container ("c-N"). Such a container is the home of a weave.
func (c *Container) HasChoiceBranches() bool {
	for name := range c.Named {
		if strings.HasPrefix(name, "c-") {
			return true
		}
	}
	return false
}

// IsAncestorOf reports whether c encloses other (or is other).
func (c *Container) IsAncestorOf(other *Container) bool {
	for n := other; n != nil; n = n.Parent {
		if n == c {
			return true
		}
	}
	return false
}

// ContentIndex returns the position of child in c.Content, or -1.
func (c *Container) ContentIndex(child Instruction) int {
	for i, in := range c.Content {
		if in == child {
			return i
		}
	}
	return -1
}

// LeadingParams returns the names of the leading temp declarations that
// bind a flow's parameters, in declaration order. The compiler emits them
// in reverse.
func (c *Container) LeadingParams() []string {
	var names []string
	for _, in := range c.Content {
		a, ok := in.(*VarAssign)
		if !ok || a.Global || !a.Declaration {
			break
		}
		names = append(names, a.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return names
}
