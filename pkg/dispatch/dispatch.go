// Package dispatch implements the rule registry and traversal engine
// that drives every tree-rewriting stage.
//
// A Visitor holds an ordered set of rules. Each rule names a node kind
// (or matches every kind), an optional list of leaf-field constraints,
// and a handler. Invoking a node runs the single most specific matching
// rule; the handler recurses into children through the Invocation it
// receives, so nested processing is plain LIFO call/return.
package dispatch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
)

// ErrNoRule reports a node kind with no matching rule. With the built-in
// fallback installed by New this is unreachable; hitting it means the
// visitor was assembled without a fallback, which is a configuration
// defect rather than an input condition.
var ErrNoRule = errors.New("no matching rule")

// Handler processes a matched node. Returning an error aborts the whole
// traversal immediately. The result is handler-defined; by convention a
// nil result means "unchanged".
type Handler[C any] func(node *ast.Node, inv *Invocation[C]) (any, error)

// Constraint restricts a rule to nodes whose named leaf field equals
// Value. The comparison uses ==, so the constraint value must carry the
// same dynamic type as the field.
type Constraint struct {
	Field string
	Value any
}

func (c Constraint) matches(n *ast.Node) bool {
	f := n.Field(c.Field)
	return f != nil && f.Kind == ast.FieldValue && f.Value == c.Value
}

// Rule pairs a match pattern with a handler.
type Rule[C any] struct {
	Kind        ast.Kind
	Wildcard    bool // match every kind; Kind and Constraints are ignored
	Constraints []Constraint
	Handler     Handler[C]

	seq int
}

// NewRule builds a rule for one node kind, optionally constrained on
// leaf field values.
func NewRule[C any](kind ast.Kind, handler Handler[C], constraints ...Constraint) Rule[C] {
	return Rule[C]{Kind: kind, Constraints: constraints, Handler: handler}
}

// Fallback builds a rule matching every node kind. Fallbacks rank below
// any kind-specific rule.
func Fallback[C any](handler Handler[C]) Rule[C] {
	return Rule[C]{Wildcard: true, Handler: handler}
}

// rank orders rules by specificity: wildcard < kind-only < constrained.
func (r *Rule[C]) rank() int {
	if r.Wildcard {
		return -1
	}
	return len(r.Constraints)
}

func (r *Rule[C]) matches(n *ast.Node) bool {
	if !r.Wildcard && r.Kind != n.Kind {
		return false
	}
	for _, c := range r.Constraints {
		if !c.matches(n) {
			return false
		}
	}
	return true
}

// Visitor is an ordered, composable rule registry. The zero value is an
// empty registry with no fallback; New returns one that traverses
// generically through unmatched nodes.
type Visitor[C any] struct {
	rules  []Rule[C]
	seq    int
	sorted bool
}

// New returns a visitor with the generic fallback installed, so rule
// sets not specialized for a given kind still traverse through it.
func New[C any]() *Visitor[C] {
	v := &Visitor[C]{}
	v.Add(Fallback(func(node *ast.Node, inv *Invocation[C]) (any, error) {
		return nil, Traverse(node, inv)
	}))
	return v
}

// Add registers rules. Among rules of equal specificity the one
// registered last wins.
func (v *Visitor[C]) Add(rules ...Rule[C]) {
	for _, r := range rules {
		v.seq++
		r.seq = v.seq
		v.rules = append(v.rules, r)
	}
	v.sorted = false
}

// Extend composes other visitors into this one. The extension's rules
// are re-registered after the receiver's, so they take precedence over
// equally specific existing rules.
func (v *Visitor[C]) Extend(others ...*Visitor[C]) {
	for _, other := range others {
		for _, r := range other.rules {
			v.Add(r)
		}
	}
}

func (v *Visitor[C]) sortRules() {
	sort.SliceStable(v.rules, func(i, j int) bool {
		ri, rj := &v.rules[i], &v.rules[j]
		if a, b := ri.rank(), rj.rank(); a != b {
			return a > b
		}
		return ri.seq > rj.seq
	})
	v.sorted = true
}

// Invoke runs the best matching rule for the node and returns the
// handler's result.
func (v *Visitor[C]) Invoke(node *ast.Node, ctx C) (any, error) {
	if !v.sorted {
		v.sortRules()
	}
	for i := range v.rules {
		r := &v.rules[i]
		if r.matches(node) {
			inv := &Invocation[C]{Context: ctx, visitor: v}
			return r.Handler(node, inv)
		}
	}
	return nil, fmt.Errorf("%w for %s node", ErrNoRule, node.Kind)
}

// Invocation is the handler's view of an in-flight traversal. Visiting
// a child parks the handler until the child's own rule returns.
type Invocation[C any] struct {
	Context C
	visitor *Visitor[C]
}

// Visit recursively invokes the engine on a child node and returns that
// child's result.
func (inv *Invocation[C]) Visit(child *ast.Node) (any, error) {
	return inv.visitor.Invoke(child, inv.Context)
}

// Traverse invokes the engine on every child of the node in field
// order, discarding results. It is the body of the built-in fallback
// and a convenience for user-defined default rules.
func Traverse[C any](node *ast.Node, inv *Invocation[C]) error {
	for i := range node.Fields {
		f := &node.Fields[i]
		switch f.Kind {
		case ast.FieldNode:
			if f.Node == nil {
				continue
			}
			if _, err := inv.Visit(f.Node); err != nil {
				return err
			}
		case ast.FieldNodes:
			for _, child := range f.Nodes {
				if _, err := inv.Visit(child); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
