package story

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Supported compiled format versions.
const (
	MinVersion = 19
	MaxVersion = 21
)

// Story is a loaded compiled story.
type Story struct {
	Version  int
	Root     *Container
	ListDefs []string // names of LIST definitions, in document order

	functions map[*Container]bool
}

// LoadFile reads and loads a compiled story from disk.
func LoadFile(path string) (*Story, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read story: %w", err)
	}
	return Load(data)
}

// Load parses a compiled story document and builds its container graph.
// The header is checked against the story schema before the graph is built.
func Load(data []byte) (*Story, error) {
	if err := ValidateHeader(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	doc, err := readValue(dec)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: "malformed story document", Err: err}
	}
	top, ok := doc.(*object)
	if !ok {
		return nil, &LoadError{Code: ErrCodeSyntax, Message: "story document must be an object"}
	}

	s := &Story{functions: make(map[*Container]bool)}

	version, err := intValue(top.values["inkVersion"])
	if err != nil {
		return nil, &LoadError{Code: ErrCodeVersion, Message: "invalid inkVersion", Err: err}
	}
	if version < MinVersion || version > MaxVersion {
		return nil, &LoadError{Code: ErrCodeVersion, Message: fmt.Sprintf("unsupported inkVersion %d", version)}
	}
	s.Version = version

	if defs, ok := top.values["listDefs"].(*object); ok {
		s.ListDefs = append(s.ListDefs, defs.keys...)
	}

	rootArr, ok := top.values["root"].([]any)
	if !ok {
		return nil, &LoadError{Code: ErrCodeHeader, Message: "root must be a container"}
	}

	l := &loader{}
	root, err := l.container(rootArr, nil, "", 0)
	if err != nil {
		return nil, err
	}
	s.Root = root

	for _, fix := range l.fixups {
		if err := l.resolve(fix); err != nil {
			return nil, err
		}
	}
	for _, j := range l.calls {
		if target := s.TargetContainer(j.Target); target != nil {
			s.functions[target] = true
		}
	}
	return s, nil
}

// Resolve returns the instruction at an absolute path, or nil.
func (s *Story) Resolve(p Path) Instruction {
	in, _, _ := walk(s.Root, p.Components())
	return in
}

// TargetContainer returns the container a path addresses. A path ending
// in a content index addresses a position inside its parent container, so
// the parent is returned.
func (s *Story) TargetContainer(p Path) *Container {
	if _, ok := p.LastIndex(); ok {
		p = p.Parent()
	}
	c, _ := s.Resolve(p).(*Container)
	return c
}

// IsFunction reports whether c is the target of a function call.
func (s *Story) IsFunction(c *Container) bool {
	return s.functions[c]
}

// GlobalDecl returns the container holding global variable declarations,
// or nil when the story declares none.
func (s *Story) GlobalDecl() *Container {
	return s.Root.Named[GlobalDeclName]
}

// GlobalDeclName is the name of the root child holding VAR declarations.
const GlobalDeclName = "global decl"

// object is a JSON object that remembers its key order.
type object struct {
	keys   []string
	values map[string]any
}

func readValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	case '{':
		obj := &object{values: make(map[string]any)}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, _ := kt.(string)
			v, err := readValue(dec)
			if err != nil {
				return nil, err
			}
			if _, dup := obj.values[key]; !dup {
				obj.keys = append(obj.keys, key)
			}
			obj.values[key] = v
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	}
	return nil, fmt.Errorf("unexpected delimiter %q", delim)
}

func intValue(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, err
	}
	return int(i), nil
}

// fixup records a relative path to be resolved once the whole graph exists.
type fixup struct {
	from    *Container
	raw     string
	pointer bool // resolve like a divert (zero offset) rather than to a container
	set     func(Path)
}

type loader struct {
	fixups []fixup
	calls  []*Jump
}

func (l *loader) container(arr []any, parent *Container, key string, index int) (*Container, error) {
	if len(arr) == 0 {
		return nil, &LoadError{Code: ErrCodeStructure, Message: "container without terminator"}
	}
	items, last := arr[:len(arr)-1], arr[len(arr)-1]

	var term *object
	if last != nil {
		var ok bool
		if term, ok = last.(*object); !ok {
			return nil, &LoadError{Code: ErrCodeStructure, Message: fmt.Sprintf("invalid container terminator %T", last)}
		}
	}

	c := &Container{Name: key, Named: make(map[string]*Container), Parent: parent}
	if term != nil {
		if n, ok := term.values["#n"].(string); ok && c.Name == "" {
			c.Name = n
		}
		if f, ok := term.values["#f"]; ok {
			flags, err := intValue(f)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeStructure, Message: "invalid container flags", Err: err}
			}
			c.Flags = flags
		}
	}
	switch {
	case parent == nil:
		c.Path = ""
	case c.Name != "":
		c.Path = parent.Path.Append(c.Name)
	default:
		c.Path = parent.Path.AppendIndex(index)
	}

	for i, item := range items {
		in, err := l.instruction(item, c, i)
		if err != nil {
			var le *LoadError
			if errors.As(err, &le) && le.Path == "" {
				le.Path = c.Path
			}
			return nil, err
		}
		if child, ok := in.(*Container); ok && child.Name != "" {
			c.Named[child.Name] = child
		}
		c.Content = append(c.Content, in)
	}

	if term != nil {
		for _, k := range term.keys {
			if k == "#f" || k == "#n" {
				continue
			}
			childArr, ok := term.values[k].([]any)
			if !ok {
				continue
			}
			child, err := l.container(childArr, c, k, 0)
			if err != nil {
				return nil, err
			}
			c.Named[k] = child
			c.NamedOnly = append(c.NamedOnly, k)
		}
	}
	return c, nil
}

func (l *loader) instruction(v any, c *Container, index int) (Instruction, error) {
	switch t := v.(type) {
	case string:
		return token(t)
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, ".eE") {
			f, err := t.Float64()
			if err != nil {
				return nil, &LoadError{Code: ErrCodeToken, Message: "invalid float " + s, Err: err}
			}
			return &Literal{Kind: LitFloat, Float: f}, nil
		}
		i, err := t.Int64()
		if err != nil {
			return nil, &LoadError{Code: ErrCodeToken, Message: "invalid int " + s, Err: err}
		}
		return &Literal{Kind: LitInt, Int: i}, nil
	case bool:
		return &Literal{Kind: LitBool, Bool: t}, nil
	case []any:
		return l.container(t, c, "", index)
	case *object:
		return l.objectInstruction(t, c)
	case nil:
		return nil, &LoadError{Code: ErrCodeToken, Message: "null inside container content"}
	}
	return nil, &LoadError{Code: ErrCodeToken, Message: fmt.Sprintf("unexpected value %T", v)}
}

func token(s string) (Instruction, error) {
	if strings.HasPrefix(s, "^") {
		return &Text{Value: s[1:]}, nil
	}
	switch s {
	case "\n":
		return &Text{Value: "\n"}, nil
	case "<>":
		return &Glue{}, nil
	case "void":
		return &Literal{Kind: LitVoid}, nil
	}
	if k, ok := commandNames[s]; ok {
		return &Command{Kind: k}, nil
	}
	if nativeNames[s] {
		return &NativeCall{Name: s}, nil
	}
	return nil, &LoadError{Code: ErrCodeToken, Message: fmt.Sprintf("unknown token %q", s)}
}

func (l *loader) objectInstruction(o *object, c *Container) (Instruction, error) {
	str := func(key string) string {
		s, _ := o.values[key].(string)
		return s
	}
	flag := func(key string) bool {
		b, _ := o.values[key].(bool)
		return b
	}

	if _, ok := o.values["^->"]; ok {
		lit := &Literal{Kind: LitDivertTarget}
		l.queue(c, str("^->"), true, func(p Path) { lit.Target = p })
		return lit, nil
	}
	if _, ok := o.values["^var"]; ok {
		lit := &Literal{Kind: LitVariablePointer, Name: str("^var"), Index: -1}
		if ci, ok := o.values["ci"]; ok {
			n, err := intValue(ci)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeObject, Message: "invalid variable pointer context", Err: err}
			}
			lit.Index = n
		}
		return lit, nil
	}

	for key, kind := range map[string]JumpKind{"->": JumpDivert, "f()": JumpFunction, "->t->": JumpTunnel, "x()": JumpExternal} {
		if _, ok := o.values[key]; !ok {
			continue
		}
		j := &Jump{Kind: kind, Raw: str(key), Variable: flag("var"), Conditional: flag("c"), Parent: c}
		if kind == JumpExternal {
			if n, ok := o.values["exArgs"]; ok {
				args, err := intValue(n)
				if err != nil {
					return nil, &LoadError{Code: ErrCodeObject, Message: "invalid exArgs", Err: err}
				}
				j.ExternalArgs = args
			}
			j.Target = Path(j.Raw)
			return j, nil
		}
		if !j.Variable {
			l.queue(c, j.Raw, true, func(p Path) { j.Target = p })
		}
		if kind == JumpFunction {
			l.calls = append(l.calls, j)
		}
		return j, nil
	}

	if _, ok := o.values["*"]; ok {
		cp := &ChoicePoint{Raw: str("*"), Parent: c}
		if f, ok := o.values["flg"]; ok {
			n, err := intValue(f)
			if err != nil {
				return nil, &LoadError{Code: ErrCodeObject, Message: "invalid choice flags", Err: err}
			}
			cp.Flags = ChoiceFlags(n)
		}
		l.queue(c, cp.Raw, false, func(p Path) { cp.Target = p })
		return cp, nil
	}
	if _, ok := o.values["VAR?"]; ok {
		return &VarRef{Name: str("VAR?")}, nil
	}
	if _, ok := o.values["CNT?"]; ok {
		ref := &VarRef{}
		l.queue(c, str("CNT?"), false, func(p Path) { ref.CountPath = p })
		return ref, nil
	}
	if _, ok := o.values["VAR="]; ok {
		return &VarAssign{Name: str("VAR="), Global: true, Declaration: !flag("re")}, nil
	}
	if _, ok := o.values["temp="]; ok {
		return &VarAssign{Name: str("temp="), Declaration: !flag("re")}, nil
	}
	if _, ok := o.values["#"]; ok {
		return &Tag{Text: str("#")}, nil
	}
	if _, ok := o.values["list"]; ok {
		return &Literal{Kind: LitList}, nil
	}
	return nil, &LoadError{Code: ErrCodeObject, Message: fmt.Sprintf("unknown object with keys %v", o.keys)}
}

// queue records path resolution. Absolute paths are kept as written.
func (l *loader) queue(c *Container, raw string, pointer bool, set func(Path)) {
	if !strings.HasPrefix(raw, ".") {
		set(Path(raw))
		return
	}
	l.fixups = append(l.fixups, fixup{from: c, raw: raw, pointer: pointer, set: set})
}

// resolve turns a relative path into an absolute one. The path is relative
// to the instruction holding it, so its first "^" steps out of that
// instruction into the enclosing container.
func (l *loader) resolve(fix fixup) error {
	comps := strings.Split(strings.TrimPrefix(fix.raw, "."), ".")
	if len(comps) > 0 && comps[0] == "^" {
		comps = comps[1:]
	}
	in, parent, idx := walk(fix.from, comps)
	if in == nil {
		return &LoadError{Code: ErrCodeUnresolved, Message: fmt.Sprintf("relative path %q does not resolve", fix.raw), Path: fix.from.Path}
	}

	target, isContainer := in.(*Container)
	switch {
	case parent != nil && fix.pointer:
		fix.set(elementPath(parent, idx))
	case isContainer && fix.pointer:
		if len(target.Content) == 0 {
			fix.set(target.Path)
		} else {
			fix.set(elementPath(target, 0))
		}
	case isContainer:
		fix.set(target.Path)
	default:
		fix.set(elementPath(parent, idx))
	}
	return nil
}

// elementPath is the absolute path of c.Content[i].
func elementPath(c *Container, i int) Path {
	if child, ok := c.Content[i].(*Container); ok && child.Name != "" {
		return child.Path
	}
	return c.Path.AppendIndex(i)
}

// walk follows path components from start. When the last component is a
// content index, the enclosing container and index are returned as well.
func walk(start *Container, comps []string) (Instruction, *Container, int) {
	var cur Instruction = start
	var parent *Container
	idx := -1
	for _, comp := range comps {
		c, ok := cur.(*Container)
		if !ok || c == nil {
			return nil, nil, -1
		}
		parent, idx = nil, -1
		if comp == "^" {
			if c.Parent == nil {
				return nil, nil, -1
			}
			cur = c.Parent
			continue
		}
		if n, ok := componentIndex(comp); ok {
			if n >= len(c.Content) {
				return nil, nil, -1
			}
			parent, idx = c, n
			cur = c.Content[n]
			continue
		}
		child, ok := c.Named[comp]
		if !ok {
			return nil, nil, -1
		}
		cur = child
	}
	return cur, parent, idx
}
