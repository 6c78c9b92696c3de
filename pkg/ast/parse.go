package ast

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Parse reads AST JSON from a reader and returns the root node.
func Parse(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read AST: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses AST JSON from a byte slice.
//
// The interchange form is produced by the upstream parsing pipeline:
//
//	{"kind": "command", "line": 3, "fields": {"identifier": ..., "arguments": [...]}}
//
// Field names are validated against the kind's schema; single-child
// fields may be absent or null, unknown fields are rejected.
func ParseBytes(data []byte) (*Node, error) {
	node, err := decodeNode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AST: %w", err)
	}
	return node, nil
}

type jsonNode struct {
	Kind   string                     `json:"kind"`
	Line   int                        `json:"line"`
	Fields map[string]json.RawMessage `json:"fields"`
}

func decodeNode(data []byte) (*Node, error) {
	var jn jsonNode
	if err := json.Unmarshal(data, &jn); err != nil {
		return nil, err
	}

	kind, ok := KindByName(jn.Kind)
	if !ok || kind == KindInvalid {
		return nil, fmt.Errorf("unknown node kind %q", jn.Kind)
	}

	specs := Fields(kind)
	node := &Node{Kind: kind, Line: jn.Line}

	seen := 0
	for _, spec := range specs {
		raw, ok := jn.Fields[spec.Name]
		if !ok {
			if spec.Kind == FieldNode {
				node.Fields = append(node.Fields, Single(spec.Name, nil))
				continue
			}
			return nil, fmt.Errorf("%s node is missing field %q", kind, spec.Name)
		}
		seen++

		switch spec.Kind {
		case FieldValue:
			v, err := decodeValue(raw)
			if err != nil {
				return nil, fmt.Errorf("field %q of %s node: %w", spec.Name, kind, err)
			}
			node.Fields = append(node.Fields, Leaf(spec.Name, v))

		case FieldNode:
			if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
				node.Fields = append(node.Fields, Single(spec.Name, nil))
				continue
			}
			child, err := decodeNode(raw)
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, Single(spec.Name, child))

		case FieldNodes:
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("field %q of %s node: %w", spec.Name, kind, err)
			}
			children := make([]*Node, 0, len(items))
			for _, item := range items {
				child, err := decodeNode(item)
				if err != nil {
					return nil, err
				}
				children = append(children, child)
			}
			node.Fields = append(node.Fields, Many(spec.Name, children...))
		}
	}

	if seen != len(jn.Fields) {
		for name := range jn.Fields {
			if node.Field(name) == nil {
				return nil, fmt.Errorf("unknown field %q for %s node", name, kind)
			}
		}
	}

	return node, nil
}

// decodeValue decodes a leaf value, keeping whole numbers as int so the
// generator can render host-language literals faithfully.
func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	if num, ok := v.(json.Number); ok {
		if i, err := num.Int64(); err == nil {
			return int(i), nil
		}
		f, err := num.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return v, nil
}
