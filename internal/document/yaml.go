package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// mergeKey is the YAML merge key, whose entries never override explicit keys.
const mergeKey = "<<"

// parseYAML decodes the first YAML document in data into a generic tree.
// An empty document yields an empty mapping.
func parseYAML(data []byte) (*Node, error) {
	var root yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return newMapping(1, 1), nil
		}
		return nil, err
	}
	c := &converter{aliases: make(map[*yaml.Node]expansion)}
	return c.convert(&root, 0)
}

const (
	// maxAliasDepth bounds alias nesting.
	maxAliasDepth = 64
	// maxExpandedNodes bounds the size of the tree as seen through aliases.
	maxExpandedNodes = 100_000
)

type expansion struct {
	node *Node
	size int
}

// converter turns a yaml.Node tree into a Node tree. Each anchored node is
// converted once and shared by its aliases, and the expanded size is counted
// so that nested aliases cannot blow up the tree.
type converter struct {
	aliases  map[*yaml.Node]expansion
	expanded int
}

func (c *converter) count(n int, line int) error {
	c.expanded += n
	if c.expanded > maxExpandedNodes {
		return fmt.Errorf("line %d: document expands to more than %d nodes through aliases", line, maxExpandedNodes)
	}
	return nil
}

func (c *converter) convert(y *yaml.Node, depth int) (*Node, error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("line %d: alias nesting too deep", y.Line)
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return newMapping(y.Line, y.Column), nil
		}
		return c.convert(y.Content[0], depth)

	case yaml.AliasNode:
		if y.Alias == nil {
			return nil, fmt.Errorf("line %d: unresolved alias %q", y.Line, y.Value)
		}
		if e, ok := c.aliases[y.Alias]; ok {
			if err := c.count(e.size, y.Line); err != nil {
				return nil, err
			}
			return e.node, nil
		}
		before := c.expanded
		n, err := c.convert(y.Alias, depth+1)
		if err != nil {
			return nil, err
		}
		c.aliases[y.Alias] = expansion{node: n, size: c.expanded - before}
		return n, nil
	}

	if err := c.count(1, y.Line); err != nil {
		return nil, err
	}

	switch y.Kind {
	case yaml.ScalarNode:
		if y.Tag == "!!null" {
			return &Node{Kind: NullNode, Line: y.Line, Column: y.Column}, nil
		}
		return &Node{Kind: ScalarNode, Value: y.Value, Line: y.Line, Column: y.Column}, nil

	case yaml.SequenceNode:
		seq := &Node{Kind: SequenceNode, Line: y.Line, Column: y.Column}
		for _, item := range y.Content {
			child, err := c.convert(item, depth)
			if err != nil {
				return nil, err
			}
			seq.items = append(seq.items, child)
		}
		return seq, nil

	case yaml.MappingNode:
		m := newMapping(y.Line, y.Column)
		var merged []*Node
		for i := 0; i+1 < len(y.Content); i += 2 {
			keyNode, valueNode := y.Content[i], y.Content[i+1]
			value, err := c.convert(valueNode, depth)
			if err != nil {
				return nil, err
			}
			if keyNode.Value == mergeKey && keyNode.Tag == "!!merge" {
				merged = append(merged, value)
				continue
			}
			m.set(keyNode.Value, value)
		}
		for _, src := range merged {
			mergeInto(m, src)
		}
		return m, nil
	}

	return &Node{Kind: NullNode, Line: y.Line, Column: y.Column}, nil
}

// mergeInto copies entries from src (a mapping, or a sequence of mappings)
// that m does not already define.
func mergeInto(m, src *Node) {
	switch src.Kind {
	case MappingNode:
		for _, key := range src.keys {
			if _, exists := m.fields[key]; !exists {
				m.set(key, src.fields[key])
			}
		}
	case SequenceNode:
		for _, item := range src.items {
			mergeInto(m, item)
		}
	}
}
