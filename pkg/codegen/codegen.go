// Package codegen turns a parsed script tree into host-language source
// text. Executing that text against the runtime contract reconstructs
// an equivalent command sequence, with every value that cannot be known
// at compile time replaced by a runtime computation. Subtrees that are
// fully static emit nothing and are reused by reference.
package codegen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
	"github.com/TheNuclearNexus/mecha/pkg/dispatch"
)

// ErrMalformedImport reports a from-import chain missing an expected
// imported name.
var ErrMalformedImport = errors.New("malformed import")

// ErrUnknownParser reports an interpolated command argument referencing
// an argument parser with no registered conversion.
var ErrUnknownParser = errors.New("unknown argument parser")

// Result is the outcome of one compilation. A fully static tree leaves
// Source and Output empty: there is nothing to execute and the original
// tree is reused as-is.
type Result struct {
	Source string // generated text, "" when the tree is static
	Output string // variable holding the compiled result, "" when static
	Refs   []any  // reference table, registration order
}

// Codegen is the transpiler rule set. One Codegen is reusable across
// compilations; all per-compilation state lives in the Accumulator.
type Codegen struct {
	visitor *dispatch.Visitor[*Accumulator]
	parsers map[string]bool
}

// Option configures a Codegen.
type Option func(*Codegen)

// WithArgumentParsers registers additional command-argument parsers
// accepted in argument interpolations.
func WithArgumentParsers(names ...string) Option {
	return func(cg *Codegen) {
		for _, name := range names {
			cg.parsers[name] = true
		}
	}
}

// New builds the transpiler with one rule per node kind.
func New(opts ...Option) *Codegen {
	cg := &Codegen{
		parsers: map[string]bool{
			"brigadier:bool":    true,
			"brigadier:double":  true,
			"brigadier:float":   true,
			"brigadier:integer": true,
			"brigadier:long":    true,
			"brigadier:string":  true,
		},
	}
	for _, opt := range opts {
		opt(cg)
	}

	command := func(identifier string) dispatch.Constraint {
		return dispatch.Constraint{Field: "identifier", Value: identifier}
	}

	v := dispatch.New[*Accumulator]()
	v.Add(
		dispatch.Fallback(cg.fallback),
		dispatch.NewRule(ast.KindRoot, cg.root),
		dispatch.NewRule(ast.KindCommand, cg.statement, command("statement")),
		dispatch.NewRule(ast.KindCommand, cg.function, command("def:function:body")),
		dispatch.NewRule(ast.KindCommand, cg.returnStatement, command("return")),
		dispatch.NewRule(ast.KindCommand, cg.returnStatement, command("return:value")),
		dispatch.NewRule(ast.KindCommand, cg.yieldStatement, command("yield")),
		dispatch.NewRule(ast.KindCommand, cg.yieldStatement, command("yield:value")),
		dispatch.NewRule(ast.KindCommand, cg.yieldStatement, command("yield:from:value")),
		dispatch.NewRule(ast.KindCommand, cg.ifStatement, command("if:condition:body")),
		dispatch.NewRule(ast.KindCommand, cg.elifStatement, command("elif:condition:body")),
		dispatch.NewRule(ast.KindCommand, cg.elseStatement, command("else:body")),
		dispatch.NewRule(ast.KindCommand, cg.whileStatement, command("while:condition:body")),
		dispatch.NewRule(ast.KindCommand, cg.forStatement, command("for:target:in:iterable:body")),
		dispatch.NewRule(ast.KindCommand, cg.breakStatement, command("break")),
		dispatch.NewRule(ast.KindCommand, cg.continueStatement, command("continue")),
		dispatch.NewRule(ast.KindCommand, cg.passStatement, command("pass")),
		dispatch.NewRule(ast.KindCommand, cg.importStatement, command("import:module")),
		dispatch.NewRule(ast.KindCommand, cg.importStatement, command("import:module:as:alias")),
		dispatch.NewRule(ast.KindCommand, cg.importStatement, command("from:module:import:subcommand")),
		dispatch.NewRule(ast.KindInterpolation, cg.interpolation),
		dispatch.NewRule(ast.KindArgumentInterpolation, cg.argumentInterpolation),
		dispatch.NewRule(ast.KindBinary, cg.binary),
		dispatch.NewRule(ast.KindUnary, cg.unary),
		dispatch.NewRule(ast.KindValue, cg.value),
		dispatch.NewRule(ast.KindIdentifier, cg.identifier),
		dispatch.NewRule(ast.KindFormatString, cg.formatString),
		dispatch.NewRule(ast.KindTuple, cg.tuple),
		dispatch.NewRule(ast.KindList, cg.list),
		dispatch.NewRule(ast.KindDict, cg.dict),
		dispatch.NewRule(ast.KindAttribute, cg.attribute),
		dispatch.NewRule(ast.KindLookup, cg.lookup),
		dispatch.NewRule(ast.KindCall, cg.call),
		dispatch.NewRule(ast.KindAssignment, cg.assignment),
		dispatch.NewRule(ast.KindTargetIdentifier, cg.targetIdentifier),
	)
	cg.visitor = v
	return cg
}

// Visitor exposes the underlying rule registry so callers can compose
// additional rule sets over the same traversal.
func (cg *Codegen) Visitor() *dispatch.Visitor[*Accumulator] {
	return cg.visitor
}

// Generate compiles a root node. A static tree yields empty Source and
// Output; otherwise the compiled result is bound to a fresh variable
// whose name is returned alongside the rendered text.
func (cg *Codegen) Generate(root *ast.Node) (*Result, error) {
	acc := NewAccumulator()

	result, err := cg.visitor.Invoke(root, acc)
	if err != nil {
		return nil, err
	}
	fragments, changed, err := fragmentsOf(root, result)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Result{Refs: acc.Refs()}, nil
	}
	if len(fragments) != 1 {
		return nil, fmt.Errorf("%w: expected single result for %s node, got %d", ErrArity, root.Kind, len(fragments))
	}

	output := acc.MakeVariable()
	acc.Statement(output + " = " + fragments[0])
	return &Result{Source: acc.Source(), Output: output, Refs: acc.Refs()}, nil
}

func (cg *Codegen) fallback(node *ast.Node, inv *Inv) (any, error) {
	expr, changed, err := visitGeneric(inv, inv.Context, node, NewChildrenCollector)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	return []string{expr}, nil
}

func (cg *Codegen) root(node *ast.Node, inv *Inv) (any, error) {
	expr, changed, err := visitGeneric(inv, inv.Context, node, NewRootCommandCollector)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	return []string{expr}, nil
}

func (cg *Codegen) statement(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	if expr := node.Argument(0); expr != nil {
		value, changed, err := visitSingle(inv, expr, false)
		if err != nil {
			return nil, err
		}
		if changed {
			acc.Statement(value)
		}
	}
	return []string{}, nil
}

func (cg *Codegen) function(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	signature := node.Argument(0)
	arguments := signature.Children("arguments")

	params := make([]string, 0, len(arguments))
	for _, arg := range arguments {
		name := arg.Text("name")
		if arg.Child("default") != nil {
			params = append(params, name+"="+acc.Missing())
		} else {
			params = append(params, name)
		}
	}

	acc.Statement(fmt.Sprintf("def %s(%s):", signature.Text("name"), strings.Join(params, ", ")))

	err := acc.InBlock(func() error {
		for _, arg := range arguments {
			def := arg.Child("default")
			if def == nil {
				continue
			}
			name := arg.Text("name")
			acc.Statement(fmt.Sprintf("if %s is %s:", name, acc.Missing()))
			if err := acc.InBlock(func() error {
				value, _, err := visitSingle(inv, def, true)
				if err != nil {
					return err
				}
				acc.Statement(name + " = " + value)
				return nil
			}); err != nil {
				return err
			}
		}
		return visitBody(inv, acc, node.Argument(1))
	})
	if err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (cg *Codegen) returnStatement(node *ast.Node, inv *Inv) (any, error) {
	return cg.valueStatement("return", node, inv)
}

func (cg *Codegen) yieldStatement(node *ast.Node, inv *Inv) (any, error) {
	keyword := "yield"
	if node.Identifier() == "yield:from:value" {
		keyword = "yield from"
	}
	return cg.valueStatement(keyword, node, inv)
}

// valueStatement emits a control statement with an optional operand.
func (cg *Codegen) valueStatement(keyword string, node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	statement := keyword
	if operand := node.Argument(0); operand != nil {
		value, _, err := visitSingle(inv, operand, true)
		if err != nil {
			return nil, err
		}
		statement += " " + value
	}
	acc.Statement(statement)
	return []string{}, nil
}

func (cg *Codegen) ifStatement(node *ast.Node, inv *Inv) (any, error) {
	return cg.conditionalBlock("if", node, inv)
}

func (cg *Codegen) elifStatement(node *ast.Node, inv *Inv) (any, error) {
	return cg.conditionalBlock("elif", node, inv)
}

func (cg *Codegen) whileStatement(node *ast.Node, inv *Inv) (any, error) {
	return cg.conditionalBlock("while", node, inv)
}

// conditionalBlock emits a header with a compiled condition followed by
// the nested command sequence one level deeper.
func (cg *Codegen) conditionalBlock(keyword string, node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	condition, _, err := visitSingle(inv, node.Argument(0), true)
	if err != nil {
		return nil, err
	}
	acc.Statement(keyword + " " + condition + ":")
	if err := acc.InBlock(func() error {
		return visitBody(inv, acc, node.Argument(1))
	}); err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (cg *Codegen) elseStatement(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	acc.Statement("else:")
	if err := acc.InBlock(func() error {
		return visitBody(inv, acc, node.Argument(0))
	}); err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (cg *Codegen) forStatement(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	target, _, err := visitSingle(inv, node.Argument(0), true)
	if err != nil {
		return nil, err
	}
	iterable, _, err := visitSingle(inv, node.Argument(1), true)
	if err != nil {
		return nil, err
	}
	acc.Statement(fmt.Sprintf("for %s in %s:", target, iterable))
	if err := acc.InBlock(func() error {
		return visitBody(inv, acc, node.Argument(2))
	}); err != nil {
		return nil, err
	}
	return []string{}, nil
}

func (cg *Codegen) breakStatement(node *ast.Node, inv *Inv) (any, error) {
	inv.Context.Statement("break")
	return []string{}, nil
}

func (cg *Codegen) continueStatement(node *ast.Node, inv *Inv) (any, error) {
	inv.Context.Statement("continue")
	return []string{}, nil
}

func (cg *Codegen) passStatement(node *ast.Node, inv *Inv) (any, error) {
	inv.Context.Statement("pass")
	return []string{}, nil
}

func (cg *Codegen) importStatement(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	acc.Statement(acc.Lineno(node))

	module := node.Argument(0)

	switch node.Identifier() {
	case "from:module:import:subcommand":
		var names []string
		subcommand := node.Argument(1)
		for {
			if subcommand == nil {
				return nil, fmt.Errorf("%w: truncated from-import chain", ErrMalformedImport)
			}
			name := subcommand.Argument(0)
			if name == nil || name.Kind != ast.KindImportedIdentifier {
				return nil, fmt.Errorf("%w: expected imported name in %q", ErrMalformedImport, subcommand.Identifier())
			}
			names = append(names, name.Text("value"))
			if subcommand.Identifier() != "from:module:import:name:subcommand" {
				break
			}
			subcommand = subcommand.Argument(1)
		}

		if module.Text("namespace") != "" {
			quoted := make([]string, len(names))
			for i, name := range names {
				quoted[i] = pyStr(name)
			}
			acc.Statement(fmt.Sprintf(
				"%s = %s.%s(%s, %s)",
				strings.Join(names, ", "), runtimeVar, helperFromModuleImport,
				pyStr(resourceValue(module)), strings.Join(quoted, ", "),
			))
		} else {
			acc.Statement(fmt.Sprintf("from %s import %s", module.Text("path"), strings.Join(names, ", ")))
		}

	case "import:module:as:alias":
		alias := node.Argument(1).Text("value")
		if module.Text("namespace") != "" {
			acc.Statement(fmt.Sprintf(
				"%s = %s.%s(%s).namespace",
				alias, runtimeVar, helperImportModule, pyStr(resourceValue(module)),
			))
		} else {
			acc.Statement(fmt.Sprintf("import %s as %s", module.Text("path"), alias))
		}

	default:
		acc.Statement("import " + module.Text("path"))
	}

	return []string{}, nil
}

// resourceValue renders a resource location as "namespace:path", or the
// bare path when no namespace is set.
func resourceValue(module *ast.Node) string {
	if ns := module.Text("namespace"); ns != "" {
		return ns + ":" + module.Text("path")
	}
	return module.Text("path")
}

func (cg *Codegen) interpolation(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	result := acc.Helper("interpolate_"+node.Text("converter"), value, acc.MakeRef(node))
	return []string{"(" + acc.Lineno(node) + result + ")"}, nil
}

func (cg *Codegen) argumentInterpolation(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	parser := node.Text("parser")
	if !cg.parsers[parser] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParser, parser)
	}
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	result := acc.Helper("convert:"+parser, value)
	result = acc.Helper(helperSetLocation, result, acc.MakeRef(node))
	return []string{"(" + acc.Lineno(node) + result + ")"}, nil
}

func (cg *Codegen) binary(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	op := strings.ReplaceAll(node.Text("operator"), "_", " ")
	left, _, err := visitSingle(inv, node.Child("left"), true)
	if err != nil {
		return nil, err
	}
	right, _, err := visitSingle(inv, node.Child("right"), true)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("(%s%s %s %s)", acc.Lineno(node), left, op, right)}, nil
}

func (cg *Codegen) unary(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	op := strings.ReplaceAll(node.Text("operator"), "_", " ")
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf("(%s%s %s)", acc.Lineno(node), op, value)}, nil
}

func (cg *Codegen) value(node *ast.Node, inv *Inv) (any, error) {
	return []string{pyLiteral(node.Value("value"))}, nil
}

func (cg *Codegen) identifier(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	return []string{"(" + acc.Lineno(node) + node.Text("value") + ")"}, nil
}

func (cg *Codegen) formatString(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var values []string
	for _, value := range node.Children("values") {
		result, _, err := visitSingle(inv, value, true)
		if err != nil {
			return nil, err
		}
		values = append(values, result)
	}
	return []string{fmt.Sprintf(
		"(%s%s.format(%s))",
		acc.Lineno(node), pyStr(node.Text("fmt")), strings.Join(values, ", "),
	)}, nil
}

func (cg *Codegen) tuple(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var items strings.Builder
	for _, item := range node.Children("items") {
		value, _, err := visitSingle(inv, item, true)
		if err != nil {
			return nil, err
		}
		// Trailing separator keeps a single item a grouping, not a
		// parenthesized scalar.
		items.WriteString(value)
		items.WriteString(",")
	}
	return []string{"(" + acc.Lineno(node) + "(" + items.String() + "))"}, nil
}

func (cg *Codegen) list(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var items []string
	for _, item := range node.Children("items") {
		value, _, err := visitSingle(inv, item, true)
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
	return []string{"(" + acc.Lineno(node) + "[" + strings.Join(items, ", ") + "])"}, nil
}

func (cg *Codegen) dict(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var items []string
	for _, item := range node.Children("items") {
		key, _, err := visitSingle(inv, item.Child("key"), true)
		if err != nil {
			return nil, err
		}
		value, _, err := visitSingle(inv, item.Child("value"), true)
		if err != nil {
			return nil, err
		}
		items = append(items, key+": "+value)
	}
	return []string{"(" + acc.Lineno(node) + "{" + strings.Join(items, ", ") + "})"}, nil
}

func (cg *Codegen) attribute(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	result := acc.Helper(helperGetAttribute, value, pyStr(node.Text("name")))
	return []string{"(" + acc.Lineno(node) + result + ")"}, nil
}

func (cg *Codegen) lookup(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var arguments []string
	for _, arg := range node.Children("arguments") {
		value, _, err := visitSingle(inv, arg, true)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, value)
	}
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf(
		"(%s%s[%s])",
		acc.Lineno(node), value, strings.Join(arguments, ", "),
	)}, nil
}

func (cg *Codegen) call(node *ast.Node, inv *Inv) (any, error) {
	acc := inv.Context
	var arguments []string
	for _, arg := range node.Children("arguments") {
		value, _, err := visitSingle(inv, arg, true)
		if err != nil {
			return nil, err
		}
		arguments = append(arguments, value)
	}
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	return []string{fmt.Sprintf(
		"(%s%s(%s))",
		acc.Lineno(node), value, strings.Join(arguments, ", "),
	)}, nil
}

func (cg *Codegen) assignment(node *ast.Node, inv *Inv) (any, error) {
	target, _, err := visitSingle(inv, node.Child("target"), true)
	if err != nil {
		return nil, err
	}
	value, _, err := visitSingle(inv, node.Child("value"), true)
	if err != nil {
		return nil, err
	}
	return []string{target + " " + node.Text("operator") + " " + value}, nil
}

func (cg *Codegen) targetIdentifier(node *ast.Node, inv *Inv) (any, error) {
	return []string{node.Text("value")}, nil
}
