package codegen

import (
	"errors"
	"fmt"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
	"github.com/TheNuclearNexus/mecha/pkg/dispatch"
)

// ErrArity reports a single-child position that received the wrong
// number of fragments, or a required position left unchanged. Always a
// defect in the rule set, never an input condition.
var ErrArity = errors.New("arity violation")

// Inv is the dispatch invocation type threaded through every rule.
type Inv = dispatch.Invocation[*Accumulator]

// fragmentsOf coerces a handler result: nil means unchanged, []string
// carries fragments (possibly none for statement-level rules).
func fragmentsOf(node *ast.Node, result any) ([]string, bool, error) {
	if result == nil {
		return nil, false, nil
	}
	fragments, ok := result.([]string)
	if !ok {
		return nil, false, fmt.Errorf("unexpected handler result %T for %s node", result, node.Kind)
	}
	if fragments == nil {
		return nil, false, nil
	}
	return fragments, true, nil
}

// visitSingle compiles one child node and enforces that it produces at
// most one fragment. With required set, "unchanged" is also an arity
// violation: the syntactic position cannot be elided.
func visitSingle(inv *Inv, node *ast.Node, required bool) (string, bool, error) {
	result, err := inv.Visit(node)
	if err != nil {
		return "", false, err
	}

	fragments, changed, err := fragmentsOf(node, result)
	if err != nil {
		return "", false, err
	}
	if !changed {
		if required {
			return "", false, fmt.Errorf("%w: result required for %s node", ErrArity, node.Kind)
		}
		return "", false, nil
	}
	if len(fragments) != 1 {
		return "", false, fmt.Errorf("%w: expected single result for %s node, got %d", ErrArity, node.Kind, len(fragments))
	}
	return fragments[0], true, nil
}

// visitMultiple compiles an ordered child sequence with the splicing
// algorithm: children are processed left to right, no collector exists
// until the first changed child, static runs merge into bulk operations
// placed just before the code computing the next dynamic child, and
// each dynamic child's own statements stay contiguous ahead of the
// statement splicing its result. Returns unchanged if no child changed.
func visitMultiple(inv *Inv, acc *Accumulator, children []*ast.Node, factory CollectorFactory) (string, bool, error) {
	currentCount := 0
	var collector ChildrenCollector
	index := len(acc.lines)

	for i, child := range children {
		result, err := inv.Visit(child)
		if err != nil {
			return "", false, err
		}
		fragments, changed, err := fragmentsOf(child, result)
		if err != nil {
			return "", false, err
		}
		if !changed {
			continue
		}
		if collector == nil {
			collector = factory(acc, index)
		}

		// Set aside the code emitted for this child so the static run
		// before it registers first.
		moved := append([]string(nil), acc.lines[index:]...)
		acc.lines = acc.lines[:index]
		collector.AddStatic(children[currentCount:i]...)
		acc.lines = append(acc.lines, moved...)
		collector.AddDynamic(fragments...)

		currentCount = i + 1
		index = len(acc.lines)
	}

	if collector != nil {
		collector.AddStatic(children[currentCount:]...)
		return collector.Flush(), true, nil
	}
	return "", false, nil
}

// visitGeneric recursively compiles every field of the node. If nothing
// changed the node is reported unchanged, preserving full structural
// sharing; otherwise the result rebuilds it with only the changed
// fields overridden.
func visitGeneric(inv *Inv, acc *Accumulator, node *ast.Node, factory CollectorFactory) (string, bool, error) {
	var replaced []FieldExpr

	for i := range node.Fields {
		f := &node.Fields[i]
		var (
			expr    string
			changed bool
			err     error
		)

		switch f.Kind {
		case ast.FieldNodes:
			expr, changed, err = visitMultiple(inv, acc, f.Nodes, factory)
		case ast.FieldNode:
			if f.Node == nil {
				continue
			}
			expr, changed, err = visitSingle(inv, f.Node, false)
		default:
			continue
		}
		if err != nil {
			return "", false, err
		}
		if changed {
			replaced = append(replaced, FieldExpr{Name: f.Name, Expr: expr})
		}
	}

	if len(replaced) == 0 {
		return "", false, nil
	}
	return acc.Replace(acc.MakeRef(node), replaced...), true, nil
}

// visitBody splices a node's command sequence into the ambient runtime
// buffer. An unchanged body extends the buffer with the entire original
// sequence by reference, one statement, no per-command calls.
func visitBody(inv *Inv, acc *Accumulator, node *ast.Node) error {
	_, changed, err := visitMultiple(inv, acc, node.Children("commands"), NewCommandCollector)
	if err != nil {
		return err
	}
	if !changed {
		acc.Statement(runtimeVar + ".commands.extend(" + acc.MakeRef(node) + ".commands)")
	}
	return nil
}
