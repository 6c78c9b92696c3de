// Package ast defines the generic tree node model handed to the code
// generator by the upstream parsing pipeline.
//
// Nodes are immutable once built: a node is tagged by a closed Kind and
// owns an ordered set of named fields, each holding either a leaf value,
// a single child node, or an ordered child sequence. The per-kind field
// layout is described by the generated schema tables (see cmd/astgen).
package ast

//go:generate go run github.com/TheNuclearNexus/mecha/cmd/astgen -o .

// Kind identifies a node's syntactic category.
type Kind uint8

// FieldKind identifies what a field slot holds.
type FieldKind uint8

const (
	FieldValue FieldKind = iota // leaf value
	FieldNode                   // single child, possibly absent
	FieldNodes                  // ordered child sequence
)

// FieldSpec describes one field slot of a node kind.
type FieldSpec struct {
	Name string
	Kind FieldKind
}

// Field is one named slot of a node. Exactly one of Value, Node, or
// Nodes is meaningful, according to Kind.
type Field struct {
	Name  string
	Kind  FieldKind
	Value any
	Node  *Node
	Nodes []*Node
}

// Node is a tree node. Treat nodes as read-only after construction;
// the generator never mutates one, it only reads fields and asks the
// execution runtime to allocate replacements.
type Node struct {
	Kind   Kind
	Line   int // 1-based source line, 0 when unknown
	Fields []Field
}

// Fields returns the field layout for a kind, nil for unknown kinds.
func Fields(k Kind) []FieldSpec {
	if int(k) < len(nodeFields) {
		return nodeFields[k]
	}
	return nil
}

// New builds a node of the given kind from explicit fields.
func New(kind Kind, fields ...Field) *Node {
	return &Node{Kind: kind, Fields: fields}
}

// Leaf builds a leaf-value field.
func Leaf(name string, v any) Field {
	return Field{Name: name, Kind: FieldValue, Value: v}
}

// Single builds a single-child field. A nil node marks the field absent.
func Single(name string, n *Node) Field {
	return Field{Name: name, Kind: FieldNode, Node: n}
}

// Many builds a child-sequence field.
func Many(name string, nodes ...*Node) Field {
	return Field{Name: name, Kind: FieldNodes, Nodes: nodes}
}

// At records the node's source line and returns the node.
func (n *Node) At(line int) *Node {
	n.Line = line
	return n
}

// Field looks up a field slot by name, nil if the kind has no such slot.
func (n *Node) Field(name string) *Field {
	for i := range n.Fields {
		if n.Fields[i].Name == name {
			return &n.Fields[i]
		}
	}
	return nil
}

// Value returns the named leaf value, nil when absent.
func (n *Node) Value(name string) any {
	if f := n.Field(name); f != nil && f.Kind == FieldValue {
		return f.Value
	}
	return nil
}

// Text returns the named leaf value as a string, "" when absent.
func (n *Node) Text(name string) string {
	s, _ := n.Value(name).(string)
	return s
}

// Child returns the named single child, nil when absent.
func (n *Node) Child(name string) *Node {
	if f := n.Field(name); f != nil && f.Kind == FieldNode {
		return f.Node
	}
	return nil
}

// Children returns the named child sequence, nil when absent.
func (n *Node) Children(name string) []*Node {
	if f := n.Field(name); f != nil && f.Kind == FieldNodes {
		return f.Nodes
	}
	return nil
}

// Identifier returns a command node's identifier.
func (n *Node) Identifier() string {
	return n.Text("identifier")
}

// Argument returns the i-th entry of the "arguments" sequence, nil when
// out of range.
func (n *Node) Argument(i int) *Node {
	args := n.Children("arguments")
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// Root builds a command-sequence root node.
func Root(commands ...*Node) *Node {
	return New(KindRoot, Many("commands", commands...))
}

// Command builds a command node with the given identifier and arguments.
func Command(identifier string, arguments ...*Node) *Node {
	return New(KindCommand, Leaf("identifier", identifier), Many("arguments", arguments...))
}

// ResourceLocation builds a namespaced location. An empty namespace
// denotes a plain (non-virtual) module path.
func ResourceLocation(namespace, path string) *Node {
	return New(KindResourceLocation, Leaf("namespace", namespace), Leaf("path", path))
}

// Assignment builds a (possibly compound) assignment statement.
func Assignment(operator string, target, value *Node) *Node {
	return New(KindAssignment, Leaf("operator", operator), Single("target", target), Single("value", value))
}

// TargetIdentifier builds an assignment-target identifier.
func TargetIdentifier(name string) *Node {
	return New(KindTargetIdentifier, Leaf("value", name))
}

// Attribute builds an attribute access on a base expression.
func Attribute(value *Node, name string) *Node {
	return New(KindAttribute, Single("value", value), Leaf("name", name))
}

// Call builds a call expression.
func Call(value *Node, arguments ...*Node) *Node {
	return New(KindCall, Single("value", value), Many("arguments", arguments...))
}

// Dict builds a mapping literal from key/value items.
func Dict(items ...*Node) *Node {
	return New(KindDict, Many("items", items...))
}

// DictItem builds one mapping entry.
func DictItem(key, value *Node) *Node {
	return New(KindDictItem, Single("key", key), Single("value", value))
}

// Binary builds a binary expression. Multi-word operators use
// underscores internally ("not_in").
func Binary(operator string, left, right *Node) *Node {
	return New(KindBinary, Leaf("operator", operator), Single("left", left), Single("right", right))
}

// Unary builds a unary expression.
func Unary(operator string, value *Node) *Node {
	return New(KindUnary, Leaf("operator", operator), Single("value", value))
}

// FormatString builds a format-string expression applying the literal
// template to the embedded values in order.
func FormatString(format string, values ...*Node) *Node {
	return New(KindFormatString, Leaf("fmt", format), Many("values", values...))
}

// FunctionSignature builds a function signature node.
func FunctionSignature(name string, arguments ...*Node) *Node {
	return New(KindFunctionSignature, Leaf("name", name), Many("arguments", arguments...))
}

// SignatureArgument builds one declared parameter. A nil defaultValue
// declares a required parameter.
func SignatureArgument(name string, defaultValue *Node) *Node {
	return New(KindSignatureArgument, Leaf("name", name), Single("default", defaultValue))
}

// Identifier builds a free variable reference.
func Identifier(name string) *Node {
	return New(KindIdentifier, Leaf("value", name))
}

// ImportedIdentifier builds a name bound by an import statement.
func ImportedIdentifier(name string) *Node {
	return New(KindImportedIdentifier, Leaf("value", name))
}

// Interpolation builds an interpolated value with a named converter.
func Interpolation(converter string, value *Node) *Node {
	return New(KindInterpolation, Leaf("converter", converter), Single("value", value))
}

// ArgumentInterpolation builds an interpolated command argument parsed
// by the named argument parser.
func ArgumentInterpolation(parser string, value *Node) *Node {
	return New(KindArgumentInterpolation, Leaf("parser", parser), Single("value", value))
}

// List builds a sequence literal.
func List(items ...*Node) *Node {
	return New(KindList, Many("items", items...))
}

// Lookup builds an indexed lookup on a base expression.
func Lookup(value *Node, arguments ...*Node) *Node {
	return New(KindLookup, Single("value", value), Many("arguments", arguments...))
}

// Tuple builds a fixed-arity grouping literal.
func Tuple(items ...*Node) *Node {
	return New(KindTuple, Many("items", items...))
}

// Value builds a literal value node.
func Value(v any) *Node {
	return New(KindValue, Leaf("value", v))
}

// Message builds a plain command message.
func Message(fragments ...*Node) *Node {
	return New(KindMessage, Many("fragments", fragments...))
}

// MessageText builds a literal message fragment.
func MessageText(text string) *Node {
	return New(KindMessageText, Leaf("value", text))
}

// Number builds a plain numeric command argument.
func Number(v any) *Node {
	return New(KindNumber, Leaf("value", v))
}

// Vector3 builds a three-coordinate command argument.
func Vector3(x, y, z *Node) *Node {
	return New(KindVector3, Single("x", x), Single("y", y), Single("z", z))
}

// Coordinate builds one coordinate component.
func Coordinate(v any) *Node {
	return New(KindCoordinate, Leaf("value", v))
}
