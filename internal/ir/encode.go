package ir

import (
	"fmt"
	"strconv"
)

// EncodeStory converts a story tree into an encoded Object.
func EncodeStory(s *Story) Object {
	globals := make(Array, 0, len(s.Globals))
	for _, g := range s.Globals {
		globals = append(globals, EncodeNode(g))
	}
	flows := make(Array, 0, len(s.Flows))
	for _, f := range s.Flows {
		flows = append(flows, encodeFlow(f))
	}
	return Object{
		"ir_version": String(IRVersion),
		"globals":    globals,
		"root":       encodeBlock(s.Root),
		"flows":      flows,
	}
}

func encodeFlow(f *Flow) Object {
	params := make(Array, 0, len(f.Params))
	for _, p := range f.Params {
		params = append(params, String(p))
	}
	stitches := make(Array, 0, len(f.Stitches))
	for _, st := range f.Stitches {
		stitches = append(stitches, encodeFlow(st))
	}
	return Object{
		"name":     String(f.Name),
		"params":   params,
		"function": Bool(f.Function),
		"body":     encodeBlock(f.Body),
		"stitches": stitches,
	}
}

func encodeBlock(b *Block) Array {
	out := Array{}
	if b == nil {
		return out
	}
	for _, n := range b.Nodes {
		out = append(out, EncodeNode(n))
	}
	return out
}

// EncodeNode converts one node into an encoded Object.
func EncodeNode(n Node) Object {
	switch v := n.(type) {
	case *Leaf:
		obj := Object{"type": String(leafKinds[v.Kind])}
		if v.Text != "" {
			obj["text"] = String(v.Text)
		}
		if v.Target != "" {
			obj["target"] = String(v.Target)
		}
		return obj
	case *Block:
		return Object{"type": String("block"), "nodes": encodeBlock(v)}
	case *Choice:
		obj := Object{
			"type":      String("choice"),
			"once_only": Bool(v.OnceOnly),
			"inner":     encodeBlock(v.InnerContent),
		}
		if v.Label != "" {
			obj["label"] = String(v.Label)
		}
		if v.Condition != nil {
			obj["condition"] = EncodeExpr(v.Condition)
		}
		if v.StartContent != nil {
			obj["start"] = encodeBlock(v.StartContent)
		}
		if v.ChoiceOnlyContent != nil {
			obj["choice_only"] = encodeBlock(v.ChoiceOnlyContent)
		}
		return obj
	case *Weave:
		choices := make(Array, 0, len(v.Choices))
		for _, c := range v.Choices {
			choices = append(choices, EncodeNode(c))
		}
		obj := Object{"type": String("weave"), "choices": choices}
		if v.Gather != nil {
			obj["gather"] = EncodeNode(v.Gather)
		}
		return obj
	case *Gather:
		obj := Object{"type": String("gather"), "body": encodeBlock(v.Body), "elided": Bool(v.Elided)}
		if v.Label != "" {
			obj["label"] = String(v.Label)
		}
		return obj
	case *Sequence:
		branches := make(Array, 0, len(v.Branches))
		for _, b := range v.Branches {
			branches = append(branches, encodeBlock(b))
		}
		return Object{"type": String("sequence"), "mode": String(v.Mode.String()), "branches": branches}
	case *Conditional:
		conds := make(Array, 0, len(v.Conditions))
		for _, c := range v.Conditions {
			conds = append(conds, EncodeExpr(c))
		}
		branches := make(Array, 0, len(v.Branches))
		for _, b := range v.Branches {
			branches = append(branches, encodeBlock(b))
		}
		obj := Object{
			"type":       String("conditional"),
			"conditions": conds,
			"branches":   branches,
			"multiline":  Bool(v.Multiline),
		}
		if v.Else != nil {
			obj["else"] = encodeBlock(v.Else)
		}
		if v.Discriminator != nil {
			obj["discriminator"] = EncodeExpr(v.Discriminator)
		}
		return obj
	case *VarAssignment:
		return Object{
			"type":        String("assignment"),
			"name":        String(v.Name),
			"global":      Bool(v.Global),
			"declaration": Bool(v.Declaration),
			"value":       EncodeExpr(v.Initializer),
		}
	case *EmbeddedExpr:
		return Object{"type": String("embedded"), "expr": EncodeExpr(v.Expr)}
	case *StatementExpr:
		return Object{"type": String("statement"), "expr": EncodeExpr(v.Expr)}
	case *Return:
		obj := Object{"type": String("return")}
		if v.Value != nil {
			obj["value"] = EncodeExpr(v.Value)
		}
		return obj
	}
	return Object{"type": String(fmt.Sprintf("unknown %T", n))}
}

var leafKinds = map[LeafKind]string{
	LeafText:   "text",
	LeafGlue:   "glue",
	LeafDivert: "divert",
	LeafDone:   "done",
	LeafEnd:    "end",
	LeafTag:    "tag",
}

var literalKinds = map[LiteralKind]string{
	LitInt:             "int",
	LitFloat:           "float",
	LitBool:            "bool",
	LitString:          "string",
	LitDivertTarget:    "divert_target",
	LitVariablePointer: "variable_pointer",
}

// EncodeExpr converts an expression into an encoded Object.
func EncodeExpr(e Expr) Object {
	switch v := e.(type) {
	case *VarRef:
		return Object{"type": String("var"), "name": String(v.Name), "read_count": Bool(v.ReadCount)}
	case *Literal:
		obj := Object{"type": String("literal"), "kind": String(literalKinds[v.Kind])}
		switch v.Kind {
		case LitInt:
			obj["value"] = Int(v.Int)
		case LitFloat:
			obj["value"] = String(strconv.FormatFloat(v.Float, 'g', -1, 64))
		case LitBool:
			obj["value"] = Bool(v.Bool)
		default:
			obj["value"] = String(v.Str)
		}
		return obj
	case *Unary:
		return Object{"type": String("unary"), "op": String(v.Op.Name), "operand": EncodeExpr(v.Operand)}
	case *Binary:
		return Object{
			"type":  String("binary"),
			"op":    String(v.Op.Name),
			"left":  EncodeExpr(v.Left),
			"right": EncodeExpr(v.Right),
		}
	case *Call:
		args := make(Array, 0, len(v.Args))
		for _, a := range v.Args {
			args = append(args, EncodeExpr(a))
		}
		return Object{"type": String("call"), "name": String(v.Name), "args": args}
	}
	return Object{"type": String(fmt.Sprintf("unknown %T", e))}
}
