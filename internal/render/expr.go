package render

import (
	"strconv"
	"strings"

	"github.com/roach88/inkdc/internal/ir"
)

// Expr renders an expression in infix form. Operands that are themselves
// operator applications are parenthesized, so the tree's grouping survives
// without precedence analysis.
func Expr(e ir.Expr) string {
	switch v := e.(type) {
	case *ir.VarRef:
		return v.Name
	case *ir.Literal:
		return literal(v)
	case *ir.Unary:
		sep := ""
		if v.Op.Symbol == "not" {
			sep = " "
		}
		return v.Op.Symbol + sep + operand(v.Operand)
	case *ir.Binary:
		return operand(v.Left) + " " + v.Op.Symbol + " " + operand(v.Right)
	case *ir.Call:
		args := make([]string, len(v.Args))
		for i, a := range v.Args {
			args[i] = Expr(a)
		}
		return v.Name + "(" + strings.Join(args, ", ") + ")"
	}
	return ""
}

func operand(e ir.Expr) string {
	switch e.(type) {
	case *ir.Unary, *ir.Binary:
		return "(" + Expr(e) + ")"
	}
	return Expr(e)
}

func literal(l *ir.Literal) string {
	switch l.Kind {
	case ir.LitInt:
		return strconv.FormatInt(l.Int, 10)
	case ir.LitFloat:
		s := strconv.FormatFloat(l.Float, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case ir.LitBool:
		return strconv.FormatBool(l.Bool)
	case ir.LitString:
		return `"` + l.Str + `"`
	case ir.LitDivertTarget:
		return "-> " + l.Str
	}
	return l.Str
}
