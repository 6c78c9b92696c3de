package codegen_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
	"github.com/TheNuclearNexus/mecha/pkg/codegen"
	"github.com/TheNuclearNexus/mecha/pkg/dispatch"
)

func say(text string) *ast.Node {
	return ast.Command("say:message", ast.Message(ast.MessageText(text)))
}

func TestGenerateStaticTree(t *testing.T) {
	root := ast.Root(say("one"), say("two"), say("three"))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)
	require.Empty(t, result.Source)
	require.Empty(t, result.Output)
	require.Empty(t, result.Refs)
}

func TestGenerateScopedConditional(t *testing.T) {
	body := ast.Root(say("hi"))
	root := ast.Root(ast.Command("if:condition:body", ast.Identifier("flag"), body))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1], [1]",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    if (flag):",
		"        _mecha_runtime.commands.extend(_mecha_refs[0].commands)",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[1], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
	require.Equal(t, "_mecha_var1", result.Output)

	require.Len(t, result.Refs, 2)
	require.Same(t, body, result.Refs[0])
	require.Same(t, root, result.Refs[1])
}

func TestGenerateDynamicArgument(t *testing.T) {
	static := ast.MessageText("hello ")
	interpolated := ast.Interpolation("word", ast.Identifier("name"))
	message := ast.Message(static, interpolated)
	dynamic := ast.Command("say:message", message)
	before1, before2 := say("one"), say("two")
	after1, after2 := say("three"), say("four")
	root := ast.Root(before1, before2, dynamic, after1, after2)

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1], [1]",
		"_mecha_helper_interpolate_word = _mecha_runtime.helpers['interpolate_word']",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    _mecha_runtime.commands.extend(_mecha_refs[4:6])",
		"    _mecha_runtime.commands.append(_mecha_helper_replace(_mecha_refs[3], arguments=_mecha_helper_children([_mecha_helper_replace(_mecha_refs[2], fragments=_mecha_helper_children([_mecha_refs[1], (_mecha_helper_interpolate_word((name), _mecha_refs[0]))]))])))",
		"    _mecha_runtime.commands.extend(_mecha_refs[6:8])",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[8], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
	require.Equal(t, "_mecha_var1", result.Output)

	// Every unchanged subtree is shared by reference, never copied.
	require.Len(t, result.Refs, 9)
	require.Same(t, interpolated, result.Refs[0])
	require.Same(t, static, result.Refs[1])
	require.Same(t, message, result.Refs[2])
	require.Same(t, dynamic, result.Refs[3])
	require.Same(t, before1, result.Refs[4])
	require.Same(t, before2, result.Refs[5])
	require.Same(t, after1, result.Refs[6])
	require.Same(t, after2, result.Refs[7])
	require.Same(t, root, result.Refs[8])
}

func TestGenerateFunctionDefaults(t *testing.T) {
	root := ast.Root(ast.Command("def:function:body",
		ast.FunctionSignature("greet", ast.SignatureArgument("x", ast.Value(42))),
		ast.Root(say("hi")),
	))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1], [1]",
		"_mecha_helper_missing = _mecha_runtime.helpers['missing']",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    def greet(x=_mecha_helper_missing):",
		"        if x is _mecha_helper_missing:",
		"            x = 42",
		"        _mecha_runtime.commands.extend(_mecha_refs[0].commands)",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[1], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
}

func TestGenerateConditionalChain(t *testing.T) {
	root := ast.Root(
		ast.Command("if:condition:body", ast.Identifier("a"), ast.Root(say("x"))),
		ast.Command("elif:condition:body", ast.Identifier("b"), ast.Root(say("y"))),
		ast.Command("else:body", ast.Root(say("z"))),
	)

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1], [1]",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    if (a):",
		"        _mecha_runtime.commands.extend(_mecha_refs[0].commands)",
		"    elif (b):",
		"        _mecha_runtime.commands.extend(_mecha_refs[1].commands)",
		"    else:",
		"        _mecha_runtime.commands.extend(_mecha_refs[2].commands)",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[3], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
}

func TestGenerateSingleStaticSibling(t *testing.T) {
	root := ast.Root(
		say("first"),
		ast.Command("if:condition:body", ast.Identifier("a"), ast.Root(say("x"))),
	)

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	// A single static sibling is appended, not range-extended.
	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1], [1]",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    _mecha_runtime.commands.append(_mecha_refs[1])",
		"    if (a):",
		"        _mecha_runtime.commands.extend(_mecha_refs[0].commands)",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[2], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
}

func TestGenerateImports(t *testing.T) {
	root := ast.Root(
		ast.Command("import:module", ast.ResourceLocation("", "math")).At(2),
		ast.Command("import:module:as:alias",
			ast.ResourceLocation("demo", "utils"),
			ast.ImportedIdentifier("utils"),
		).At(3),
		ast.Command("from:module:import:subcommand",
			ast.ResourceLocation("demo", "tools"),
			ast.Command("from:module:import:name:subcommand",
				ast.ImportedIdentifier("hammer"),
				ast.Command("from:module:import:name", ast.ImportedIdentifier("wrench")),
			),
		).At(4),
	)

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1, 5, 8, 11], [1, 2, 3, 4]",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    ",
		"",
		"    import math",
		"    ",
		"",
		"    utils = _mecha_runtime.import_module('demo:utils').namespace",
		"    ",
		"",
		"    hammer, wrench = _mecha_runtime.from_module_import('demo:tools', 'hammer', 'wrench')",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[0], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
}

func TestGenerateNativeFromImport(t *testing.T) {
	root := ast.Root(
		ast.Command("from:module:import:subcommand",
			ast.ResourceLocation("", "tools"),
			ast.Command("from:module:import:name:subcommand",
				ast.ImportedIdentifier("hammer"),
				ast.Command("from:module:import:name", ast.ImportedIdentifier("wrench")),
			),
		),
	)

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)
	require.Contains(t, result.Source, "from tools import hammer, wrench")
	require.NotContains(t, result.Source, "from_module_import")
}

func TestGenerateNativeImportAlias(t *testing.T) {
	root := ast.Root(ast.Command("import:module:as:alias",
		ast.ResourceLocation("", "collections"),
		ast.ImportedIdentifier("col"),
	))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)
	require.Contains(t, result.Source, "import collections as col")
}

func TestGenerateMalformedImport(t *testing.T) {
	root := ast.Root(
		ast.Command("from:module:import:subcommand",
			ast.ResourceLocation("demo", "tools"),
			ast.Command("from:module:import:name", ast.Identifier("oops")),
		),
	)

	_, err := codegen.New().Generate(root)
	require.ErrorIs(t, err, codegen.ErrMalformedImport)
}

func TestGenerateSourceMap(t *testing.T) {
	root := ast.Root(ast.Command("statement", ast.Identifier("alpha").At(7)))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)

	require.Equal(t, strings.Join([]string{
		"_mecha_lineno = [1, 5], [1, 7]",
		"_mecha_helper_children = _mecha_runtime.helpers['children']",
		"_mecha_helper_replace = _mecha_runtime.helpers['replace']",
		"with _mecha_runtime.scope() as _mecha_var0:",
		"    (",
		"alpha)",
		"_mecha_var1 = _mecha_helper_replace(_mecha_refs[0], commands=_mecha_helper_children(_mecha_var0))",
	}, "\n"), result.Source)
}

func TestGenerateArgumentInterpolation(t *testing.T) {
	root := ast.Root(ast.Command("statement",
		ast.ArgumentInterpolation("brigadier:integer", ast.Identifier("count")),
	))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)
	require.Contains(t, result.Source, "_mecha_helper_convert_brigadier_integer((count))")
	require.Contains(t, result.Source, "_mecha_helper_set_location(_mecha_helper_convert_brigadier_integer((count)), _mecha_refs[0])")
}

func TestGenerateUnknownParser(t *testing.T) {
	root := ast.Root(ast.Command("statement",
		ast.ArgumentInterpolation("minecraft:item_stack", ast.Identifier("item")),
	))

	_, err := codegen.New().Generate(root)
	require.ErrorIs(t, err, codegen.ErrUnknownParser)

	cg := codegen.New(codegen.WithArgumentParsers("minecraft:item_stack"))
	result, err := cg.Generate(root)
	require.NoError(t, err)
	require.Contains(t, result.Source, "_mecha_helper_convert_minecraft_item_stack((item))")
}

func TestGenerateAssignment(t *testing.T) {
	root := ast.Root(ast.Command("statement",
		ast.Assignment("+=", ast.TargetIdentifier("total"), ast.Identifier("delta")),
	))

	result, err := codegen.New().Generate(root)
	require.NoError(t, err)
	require.Contains(t, result.Source, "    total += (delta)")
}

func TestExpressionRules(t *testing.T) {
	cases := []struct {
		name string
		node *ast.Node
		want string
	}{
		{"value_string", ast.Value("hi"), "'hi'"},
		{"value_bool", ast.Value(true), "True"},
		{"value_none", ast.Value(nil), "None"},
		{"value_float", ast.Value(2.0), "2.0"},
		{"identifier", ast.Identifier("a"), "(a)"},
		{"binary", ast.Binary("not_in", ast.Identifier("a"), ast.Identifier("b")), "((a) not in (b))"},
		{"unary", ast.Unary("not", ast.Identifier("a")), "(not (a))"},
		{
			"format_string",
			ast.FormatString("({}, {})", ast.Identifier("a"), ast.Identifier("b")),
			"('({}, {})'.format((a), (b)))",
		},
		{"tuple_single", ast.Tuple(ast.Identifier("a")), "(((a),))"},
		{"tuple_pair", ast.Tuple(ast.Identifier("a"), ast.Identifier("b")), "(((a),(b),))"},
		{"list", ast.List(ast.Identifier("a"), ast.Identifier("b")), "([(a), (b)])"},
		{
			"dict",
			ast.Dict(ast.DictItem(ast.Value("k"), ast.Identifier("v"))),
			"({'k': (v)})",
		},
		{"lookup", ast.Lookup(ast.Identifier("a"), ast.Identifier("b")), "((a)[(b)])"},
		{"call", ast.Call(ast.Identifier("f"), ast.Identifier("a"), ast.Identifier("b")), "((f)((a), (b)))"},
		{
			"attribute",
			ast.Attribute(ast.Identifier("a"), "name"),
			"(_mecha_helper_get_attribute((a), 'name'))",
		},
	}

	cg := codegen.New()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			result, err := cg.Visitor().Invoke(c.node, codegen.NewAccumulator())
			require.NoError(t, err)
			require.Equal(t, []string{c.want}, result)
		})
	}
}

func TestGenerateArityViolation(t *testing.T) {
	tree := func() *ast.Node {
		return ast.Root(ast.Command("if:condition:body",
			ast.Identifier("flag"),
			ast.Root(say("hi")),
		))
	}

	// A rule producing several fragments where a single expression is
	// required must fail, not silently join them.
	cg := codegen.New()
	cg.Visitor().Add(dispatch.NewRule(ast.KindIdentifier,
		func(node *ast.Node, inv *dispatch.Invocation[*codegen.Accumulator]) (any, error) {
			return []string{"a", "b"}, nil
		}))
	_, err := cg.Generate(tree())
	require.ErrorIs(t, err, codegen.ErrArity)

	// Leaving a required position unchanged is just as wrong.
	cg = codegen.New()
	cg.Visitor().Add(dispatch.NewRule(ast.KindIdentifier,
		func(node *ast.Node, inv *dispatch.Invocation[*codegen.Accumulator]) (any, error) {
			return nil, nil
		}))
	_, err = cg.Generate(tree())
	require.ErrorIs(t, err, codegen.ErrArity)
}

func TestGenerateReusable(t *testing.T) {
	cg := codegen.New()

	for i := 0; i < 2; i++ {
		result, err := cg.Generate(ast.Root(ast.Command("statement", ast.Identifier("tick"))))
		require.NoError(t, err)
		require.Equal(t, "_mecha_var1", result.Output)
	}
}

func TestCodegenAcceptance(t *testing.T) {
	testdataDir := "../../testdata"
	entries, err := os.ReadDir(testdataDir)
	require.NoError(t, err)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		t.Run(entry.Name(), func(t *testing.T) {
			testDir := filepath.Join(testdataDir, entry.Name())

			inputData, err := os.ReadFile(filepath.Join(testDir, "input.json"))
			require.NoError(t, err)

			root, err := ast.ParseBytes(inputData)
			require.NoError(t, err)

			result, err := codegen.New().Generate(root)
			require.NoError(t, err)

			expectedData, err := os.ReadFile(filepath.Join(testDir, "expected.py"))
			require.NoError(t, err)

			require.Equal(t,
				normalizeWhitespace(string(expectedData)),
				normalizeWhitespace(result.Source),
			)
		})
	}
}

func normalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
