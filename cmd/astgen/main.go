// Astgen emits the node-kind metadata tables for pkg/ast. The table
// below is the single authority on node shapes; run it through
// go:generate whenever a kind or field changes.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dave/jennifer/jen"
)

var outDir = flag.String("o", ".", "output directory for schema.go")

type fieldDef struct {
	name string
	kind string // FieldValue, FieldNode, FieldNodes
}

type kindDef struct {
	ident  string // Kind constant suffix
	name   string // canonical name
	fields []fieldDef
}

var kinds = []kindDef{
	{"Root", "root", []fieldDef{{"commands", "FieldNodes"}}},
	{"Command", "command", []fieldDef{{"identifier", "FieldValue"}, {"arguments", "FieldNodes"}}},
	{"ResourceLocation", "resource_location", []fieldDef{{"namespace", "FieldValue"}, {"path", "FieldValue"}}},
	{"Assignment", "assignment", []fieldDef{{"operator", "FieldValue"}, {"target", "FieldNode"}, {"value", "FieldNode"}}},
	{"TargetIdentifier", "target_identifier", []fieldDef{{"value", "FieldValue"}}},
	{"Attribute", "attribute", []fieldDef{{"value", "FieldNode"}, {"name", "FieldValue"}}},
	{"Call", "call", []fieldDef{{"value", "FieldNode"}, {"arguments", "FieldNodes"}}},
	{"Dict", "dict", []fieldDef{{"items", "FieldNodes"}}},
	{"DictItem", "dict_item", []fieldDef{{"key", "FieldNode"}, {"value", "FieldNode"}}},
	{"Binary", "binary", []fieldDef{{"operator", "FieldValue"}, {"left", "FieldNode"}, {"right", "FieldNode"}}},
	{"Unary", "unary", []fieldDef{{"operator", "FieldValue"}, {"value", "FieldNode"}}},
	{"FormatString", "format_string", []fieldDef{{"fmt", "FieldValue"}, {"values", "FieldNodes"}}},
	{"FunctionSignature", "function_signature", []fieldDef{{"name", "FieldValue"}, {"arguments", "FieldNodes"}}},
	{"SignatureArgument", "signature_argument", []fieldDef{{"name", "FieldValue"}, {"default", "FieldNode"}}},
	{"Identifier", "identifier", []fieldDef{{"value", "FieldValue"}}},
	{"ImportedIdentifier", "imported_identifier", []fieldDef{{"value", "FieldValue"}}},
	{"Interpolation", "interpolation", []fieldDef{{"converter", "FieldValue"}, {"value", "FieldNode"}}},
	{"ArgumentInterpolation", "argument_interpolation", []fieldDef{{"parser", "FieldValue"}, {"value", "FieldNode"}}},
	{"List", "list", []fieldDef{{"items", "FieldNodes"}}},
	{"Lookup", "lookup", []fieldDef{{"value", "FieldNode"}, {"arguments", "FieldNodes"}}},
	{"Tuple", "tuple", []fieldDef{{"items", "FieldNodes"}}},
	{"Value", "value", []fieldDef{{"value", "FieldValue"}}},
	{"Message", "message", []fieldDef{{"fragments", "FieldNodes"}}},
	{"MessageText", "message_text", []fieldDef{{"value", "FieldValue"}}},
	{"Number", "number", []fieldDef{{"value", "FieldValue"}}},
	{"Vector3", "vector3", []fieldDef{{"x", "FieldNode"}, {"y", "FieldNode"}, {"z", "FieldNode"}}},
	{"Coordinate", "coordinate", []fieldDef{{"value", "FieldValue"}}},
}

// entries renders ordered "key: value" composite-literal entries; the
// built-in jen.Dict would sort them and shuffle the iota order away.
func entries(items ...jen.Code) *jen.Statement {
	return jen.CustomFunc(jen.Options{Open: "{", Close: "}", Separator: ",", Multi: true}, func(g *jen.Group) {
		for _, item := range items {
			g.Add(item)
		}
	})
}

func generate() *jen.File {
	f := jen.NewFile("ast")
	f.HeaderComment("Code generated by astgen. DO NOT EDIT.")

	constants := []jen.Code{jen.Id("KindInvalid").Id("Kind").Op("=").Iota()}
	for _, k := range kinds {
		constants = append(constants, jen.Id("Kind"+k.ident))
	}
	f.Comment("Node kinds.")
	f.Const().Defs(constants...)

	names := []jen.Code{jen.Id("KindInvalid").Op(":").Lit("invalid")}
	for _, k := range kinds {
		names = append(names, jen.Id("Kind"+k.ident).Op(":").Lit(k.name))
	}
	f.Var().Id("kindNames").Op("=").Index(jen.Op("...")).String().Add(entries(names...))

	f.Comment("String returns the kind's canonical name.")
	f.Func().Params(jen.Id("k").Id("Kind")).Id("String").Params().String().Block(
		jen.If(jen.Int().Call(jen.Id("k")).Op("<").Len(jen.Id("kindNames"))).Block(
			jen.Return(jen.Id("kindNames").Index(jen.Id("k"))),
		),
		jen.Return(jen.Lit("Kind(").Op("+").Qual("strconv", "Itoa").Call(jen.Int().Call(jen.Id("k"))).Op("+").Lit(")")),
	)

	index := []jen.Code{jen.Lit("invalid").Op(":").Id("KindInvalid")}
	for _, k := range kinds {
		index = append(index, jen.Lit(k.name).Op(":").Id("Kind"+k.ident))
	}
	f.Var().Id("kindIndex").Op("=").Map(jen.String()).Id("Kind").Add(entries(index...))

	f.Comment("KindByName resolves a canonical kind name.")
	f.Func().Id("KindByName").Params(jen.Id("name").String()).Params(jen.Id("Kind"), jen.Bool()).Block(
		jen.List(jen.Id("k"), jen.Id("ok")).Op(":=").Id("kindIndex").Index(jen.Id("name")),
		jen.Return(jen.Id("k"), jen.Id("ok")),
	)

	var fields []jen.Code
	for _, k := range kinds {
		var specs []jen.Code
		for _, fd := range k.fields {
			specs = append(specs, jen.Values(jen.Dict{
				jen.Id("Name"): jen.Lit(fd.name),
				jen.Id("Kind"): jen.Id(fd.kind),
			}))
		}
		fields = append(fields, jen.Id("Kind"+k.ident).Op(":").Values(specs...))
	}
	f.Var().Id("nodeFields").Op("=").Index(jen.Op("...")).Index().Id("FieldSpec").Add(entries(fields...))

	return f
}

func main() {
	flag.Parse()

	buf := &bytes.Buffer{}
	if err := generate().Render(buf); err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering schema: %v\n", err)
		os.Exit(1)
	}

	target := filepath.Join(*outDir, "schema.go")
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", target, err)
		os.Exit(1)
	}
}
