package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/TheNuclearNexus/mecha/pkg/ast"
)

// Well-known names the generated text shares with the execution runtime.
const (
	runtimeVar   = "_mecha_runtime"
	refsVar      = "_mecha_refs"
	linenoVar    = "_mecha_lineno"
	helperPrefix = "_mecha_helper_"
	varPrefix    = "_mecha_var"
)

// Helper names understood by the execution runtime's lookup table.
const (
	helperReplace          = "replace"
	helperChildren         = "children"
	helperMissing          = "missing"
	helperGetAttribute     = "get_attribute"
	helperSetLocation      = "set_location"
	helperImportModule     = "import_module"
	helperFromModuleImport = "from_module_import"
)

// Accumulator holds the mutable state of one compilation: the output
// line buffer, current indentation, reference table, fresh-name counter,
// and the deduplicated helper header. One accumulator per top-level
// compilation, never shared.
type Accumulator struct {
	indentation string
	refs        []any
	lines       []string
	counter     int
	header      map[string]string
	headerOrder []string
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{header: map[string]string{}}
}

// Refs returns the reference table in registration order.
func (a *Accumulator) Refs() []any {
	return a.refs
}

// Statement appends one line of code at the current indentation.
func (a *Accumulator) Statement(code string) {
	a.lines = append(a.lines, a.indentation+code+"\n")
}

// InBlock runs fn with the indentation increased by one level. The
// previous indentation is restored on every exit path.
func (a *Accumulator) InBlock(fn func() error) error {
	previous := a.indentation
	a.indentation += "    "
	defer func() { a.indentation = previous }()
	return fn()
}

// MakeRef registers an object in the reference table and returns the
// expression indexing it.
func (a *Accumulator) MakeRef(obj any) string {
	index := len(a.refs)
	a.refs = append(a.refs, obj)
	return fmt.Sprintf("%s[%d]", refsVar, index)
}

// MakeRefSlice registers a contiguous run of nodes and returns the
// range-indexing expression covering it.
func (a *Accumulator) MakeRefSlice(nodes []*ast.Node) string {
	start := len(a.refs)
	for _, node := range nodes {
		a.refs = append(a.refs, node)
	}
	return fmt.Sprintf("%s[%d:%d]", refsVar, start, len(a.refs))
}

// MakeVariable returns a fresh identifier.
func (a *Accumulator) MakeVariable() string {
	name := varPrefix + strconv.Itoa(a.counter)
	a.counter++
	return name
}

// bind registers a deduplicated header binding for a helper and returns
// its local name.
func (a *Accumulator) bind(name string) string {
	key := runtimeVar + ".helpers[" + pyStr(name) + "]"
	local, ok := a.header[key]
	if !ok {
		local = helperPrefix + normalizeName(name)
		a.header[key] = local
		a.headerOrder = append(a.headerOrder, key)
	}
	return local
}

// Helper returns a call expression invoking a named runtime helper. The
// first use of a name binds it in the header; later uses reuse the
// binding.
func (a *Accumulator) Helper(name string, args ...string) string {
	return a.bind(name) + "(" + strings.Join(args, ", ") + ")"
}

// FieldExpr names one overridden field in a Replace expression.
type FieldExpr struct {
	Name string
	Expr string
}

// Replace returns an expression allocating a shallow copy of the
// referenced node with the given fields overridden.
func (a *Accumulator) Replace(node string, fields ...FieldExpr) string {
	args := make([]string, 0, len(fields)+1)
	args = append(args, node)
	for _, f := range fields {
		args = append(args, f.Name+"="+f.Expr)
	}
	return a.Helper(helperReplace, args...)
}

// Missing returns the shared sentinel expression denoting "argument not
// supplied".
func (a *Accumulator) Missing() string {
	return a.bind(helperMissing)
}

// Children returns an expression rebuilding a child sequence from the
// given item expressions.
func (a *Accumulator) Children(items []string) string {
	return a.Helper(helperChildren, "["+strings.Join(items, ", ")+"]")
}

// Lineno returns an inline marker carrying the node's source line, or
// "" when the location is unknown. Markers are folded into the line
// table by Source and stripped from the final text.
func (a *Accumulator) Lineno(node *ast.Node) string {
	if node != nil && node.Line > 0 {
		return fmt.Sprintf("\n#%d\n", node.Line)
	}
	return ""
}

// Source renders the final text: helper bindings, then the buffered
// statements with line markers resolved into the two-array table bound
// to the first line.
func (a *Accumulator) Source() string {
	var b strings.Builder
	for _, key := range a.headerOrder {
		b.WriteString(a.header[key])
		b.WriteString(" = ")
		b.WriteString(key)
		b.WriteString("\n")
	}
	for _, line := range a.lines {
		b.WriteString(line)
	}

	out := []string{linenoVar + " = "}
	generated := []int{1}
	original := []int{1}

	for _, line := range splitLines(b.String()) {
		if strings.HasPrefix(line, "#") {
			if n, err := strconv.Atoi(line[1:]); err == nil {
				if original[len(original)-1] != n {
					generated = append(generated, len(out))
					original = append(original, n)
				}
				continue
			}
		}
		out = append(out, line)
	}

	out[0] += intList(generated) + ", " + intList(original)
	return strings.Join(out, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func intList(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// normalizeName lowers a helper name into identifier form.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// pyStr renders a host-language string literal, repr style: single
// quotes unless the string contains one and no double quote.
func pyStr(s string) string {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}

	var b strings.Builder
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == quote:
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(&b, `\x%02x`, r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune(quote)
	return b.String()
}

// pyLiteral renders a leaf value as a host-language literal.
func pyLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case string:
		return pyStr(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	default:
		return fmt.Sprintf("%v", x)
	}
}
