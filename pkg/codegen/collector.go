package codegen

import (
	"github.com/TheNuclearNexus/mecha/pkg/ast"
)

// ChildrenCollector batches the children of one list-valued field into
// static runs (reused by reference) and dynamic fragments (recomputed at
// run time). A collector is created lazily by the splicing algorithm the
// first time a child changes, and discarded after Flush.
type ChildrenCollector interface {
	AddStatic(nodes ...*ast.Node)
	AddDynamic(fragments ...string)
	Flush() string
}

// CollectorFactory creates a collector anchored at the buffer index
// where the enclosing field's code begins.
type CollectorFactory func(acc *Accumulator, start int) ChildrenCollector

// childrenCollector rebuilds a generic field list as a single build-
// sequence helper call, mixing references to unchanged nodes with
// inline dynamic fragments. No mutation statements are emitted.
type childrenCollector struct {
	acc      *Accumulator
	start    int
	children []string
}

// NewChildrenCollector returns the generic collector.
func NewChildrenCollector(acc *Accumulator, start int) ChildrenCollector {
	return &childrenCollector{acc: acc, start: start}
}

func (c *childrenCollector) AddStatic(nodes ...*ast.Node) {
	for _, node := range nodes {
		c.children = append(c.children, c.acc.MakeRef(node))
	}
}

func (c *childrenCollector) AddDynamic(fragments ...string) {
	c.children = append(c.children, fragments...)
}

func (c *childrenCollector) Flush() string {
	return c.acc.Children(c.children)
}

// commandCollector splices a nested command sequence into the ambient
// runtime command buffer: static runs collapse into one bulk extend,
// dynamic entries are appended individually in source order.
type commandCollector struct {
	acc   *Accumulator
	start int
}

// NewCommandCollector returns the nested command-sequence collector.
func NewCommandCollector(acc *Accumulator, start int) ChildrenCollector {
	return &commandCollector{acc: acc, start: start}
}

func (c *commandCollector) AddStatic(nodes ...*ast.Node) {
	if len(nodes) > 1 {
		c.acc.Statement(runtimeVar + ".commands.extend(" + c.acc.MakeRefSlice(nodes) + ")")
	} else if len(nodes) == 1 {
		c.acc.Statement(runtimeVar + ".commands.append(" + c.acc.MakeRef(nodes[0]) + ")")
	}
}

func (c *commandCollector) AddDynamic(fragments ...string) {
	for _, fragment := range fragments {
		c.acc.Statement(runtimeVar + ".commands.append(" + fragment + ")")
	}
}

// Flush returns no expression: the commands were already spliced into
// the ambient buffer as side effects.
func (c *commandCollector) Flush() string {
	return ""
}

// rootCommandCollector handles a standalone root that needs a result
// value of its own. Flush retroactively wraps everything emitted since
// the collector was created in a fresh runtime scope and returns an
// expression rebuilding the sequence from that scope's buffer.
type rootCommandCollector struct {
	commandCollector
}

// NewRootCommandCollector returns the top-level command collector.
func NewRootCommandCollector(acc *Accumulator, start int) ChildrenCollector {
	return &rootCommandCollector{commandCollector{acc: acc, start: start}}
}

func (c *rootCommandCollector) Flush() string {
	commands := c.acc.MakeVariable()
	for i := c.start; i < len(c.acc.lines); i++ {
		c.acc.lines[i] = "    " + c.acc.lines[i]
	}
	scoped := c.acc.indentation + "with " + runtimeVar + ".scope() as " + commands + ":\n"
	c.acc.lines = append(c.acc.lines[:c.start], append([]string{scoped}, c.acc.lines[c.start:]...)...)
	return c.acc.Helper(helperChildren, commands)
}
