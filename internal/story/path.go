package story

import (
	"strconv"
	"strings"
)

// Path is an absolute, dot-separated address into the story graph.
// Components are either child names or content indices; the root
// container has the empty path.
type Path string

// Components splits the path into its components.
func (p Path) Components() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// Append returns the path extended by one component.
func (p Path) Append(component string) Path {
	if p == "" {
		return Path(component)
	}
	return p + "." + Path(component)
}

// AppendIndex returns the path extended by a content index.
func (p Path) AppendIndex(i int) Path {
	return p.Append(strconv.Itoa(i))
}

// Parent returns the path without its last component.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '.')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Last returns the final component.
func (p Path) Last() string {
	i := strings.LastIndexByte(string(p), '.')
	return string(p[i+1:])
}

// LastIndex returns the final component as a content index.
func (p Path) LastIndex() (int, bool) {
	return componentIndex(p.Last())
}

// Display renders the path the way an author writes it: named components
// only, joined by dots.
func (p Path) Display() string {
	var names []string
	for _, c := range p.Components() {
		if _, ok := componentIndex(c); ok {
			continue
		}
		names = append(names, c)
	}
	return strings.Join(names, ".")
}

func componentIndex(c string) (int, bool) {
	if c == "" || c[0] < '0' || c[0] > '9' {
		return 0, false
	}
	n, err := strconv.Atoi(c)
	if err != nil {
		return 0, false
	}
	return n, true
}
