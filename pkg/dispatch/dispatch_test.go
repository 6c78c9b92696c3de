package dispatch_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
	"github.com/TheNuclearNexus/mecha/pkg/dispatch"
)

func say(text string) *ast.Node {
	return ast.Command("say:message", ast.Message(ast.MessageText(text)))
}

func TestVisitorCollectsMatchingNodes(t *testing.T) {
	tree := ast.Command("particle:dust",
		ast.Number(1),
		ast.Number(0.5),
		ast.Number(0.5),
		ast.Number(1),
		ast.Vector3(ast.Coordinate("7"), ast.Coordinate("7"), ast.Coordinate("7")),
	)

	var numbers []any
	v := dispatch.New[any]()
	v.Add(dispatch.NewRule(ast.KindNumber, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
		numbers = append(numbers, node.Value("value"))
		return nil, nil
	}))

	_, err := v.Invoke(tree, nil)
	require.NoError(t, err)
	require.Equal(t, []any{1, 0.5, 0.5, 1}, numbers)
}

func TestVisitorExtend(t *testing.T) {
	tree := ast.Command("particle:dust",
		ast.Number(1),
		ast.Number(0.5),
		ast.Number(7),
		ast.Vector3(ast.Coordinate("7"), ast.Coordinate("7"), ast.Coordinate("7")),
	)

	var kinds []ast.Kind
	var numbers []any
	var sevens []any

	v := dispatch.New[any]()
	v.Add(dispatch.NewRule(ast.KindNumber, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
		numbers = append(numbers, node.Value("value"))
		return nil, nil
	}))

	extension := &dispatch.Visitor[any]{}
	extension.Add(
		dispatch.Fallback(func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			kinds = append(kinds, node.Kind)
			return nil, dispatch.Traverse(node, inv)
		}),
		dispatch.NewRule(ast.KindNumber, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			sevens = append(sevens, node.Value("value"))
			return nil, nil
		}, dispatch.Constraint{Field: "value", Value: 7}),
	)
	v.Extend(extension)

	_, err := v.Invoke(tree, nil)
	require.NoError(t, err)

	// The extension's default rule walks everything without a more
	// specific match; the kind-exact number rules intercept numbers.
	require.Equal(t, []ast.Kind{
		ast.KindCommand,
		ast.KindVector3,
		ast.KindCoordinate,
		ast.KindCoordinate,
		ast.KindCoordinate,
	}, kinds)
	require.Equal(t, []any{1, 0.5}, numbers)
	require.Equal(t, []any{7}, sevens)
}

func TestVisitorResult(t *testing.T) {
	v := dispatch.New[any]()
	v.Add(
		dispatch.NewRule(ast.KindRoot, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			var commands []string
			for _, command := range node.Children("commands") {
				value, err := inv.Visit(command)
				if err != nil {
					return nil, err
				}
				commands = append(commands, value.(string))
			}
			return commands, nil
		}),
		dispatch.NewRule(ast.KindCommand, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			var arguments []string
			for _, argument := range node.Children("arguments") {
				value, err := inv.Visit(argument)
				if err != nil {
					return nil, err
				}
				arguments = append(arguments, fmt.Sprintf("%q", value))
			}
			return node.Identifier() + "(" + strings.Join(arguments, ", ") + ")", nil
		}),
		dispatch.NewRule(ast.KindMessage, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			var b strings.Builder
			for _, fragment := range node.Children("fragments") {
				if fragment.Kind == ast.KindMessageText {
					b.WriteString(fragment.Text("value"))
				}
			}
			return b.String(), nil
		}),
	)

	result, err := v.Invoke(ast.Root(say("hello"), say("world")), nil)
	require.NoError(t, err)
	require.Equal(t, []string{
		`say:message("hello")`,
		`say:message("world")`,
	}, result)
}

func TestRuleSpecificity(t *testing.T) {
	var handled []string

	v := dispatch.New[any]()
	v.Add(
		dispatch.NewRule(ast.KindValue, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			handled = append(handled, "generic")
			return nil, nil
		}),
		dispatch.NewRule(ast.KindValue, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
			handled = append(handled, "constrained")
			return nil, nil
		}, dispatch.Constraint{Field: "value", Value: "special"}),
	)

	_, err := v.Invoke(ast.Value("special"), nil)
	require.NoError(t, err)
	_, err = v.Invoke(ast.Value("plain"), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"constrained", "generic"}, handled)
}

func TestLaterRegistrationWinsTies(t *testing.T) {
	var handled []string

	v := dispatch.New[any]()
	v.Add(dispatch.NewRule(ast.KindValue, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
		handled = append(handled, "first")
		return nil, nil
	}))
	v.Add(dispatch.NewRule(ast.KindValue, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
		handled = append(handled, "second")
		return nil, nil
	}))

	_, err := v.Invoke(ast.Value(1), nil)
	require.NoError(t, err)
	require.Equal(t, []string{"second"}, handled)
}

func TestNoMatchingRule(t *testing.T) {
	var v dispatch.Visitor[any]
	_, err := v.Invoke(ast.Value(1), nil)
	require.ErrorIs(t, err, dispatch.ErrNoRule)
}

func TestTraverseStopsOnError(t *testing.T) {
	boom := fmt.Errorf("boom")

	v := dispatch.New[any]()
	v.Add(dispatch.NewRule(ast.KindNumber, func(node *ast.Node, inv *dispatch.Invocation[any]) (any, error) {
		return nil, boom
	}))

	_, err := v.Invoke(ast.Command("particle:dust", ast.Number(1), ast.Number(2)), nil)
	require.ErrorIs(t, err, boom)
}
