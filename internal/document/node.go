package document

// NodeKind is the shape of a generic tree node.
type NodeKind int

const (
	NullNode NodeKind = iota
	ScalarNode
	MappingNode
	SequenceNode
)

// Node is an ordered, parser-independent tree node. Mapping keys preserve
// declaration order because that order encodes execution order.
type Node struct {
	Kind   NodeKind
	Value  string
	Line   int
	Column int

	keys   []string
	fields map[string]*Node
	items  []*Node
}

func newMapping(line, column int) *Node {
	return &Node{Kind: MappingNode, Line: line, Column: column, fields: make(map[string]*Node)}
}

// set adds or replaces a mapping entry, keeping the first declaration position.
func (n *Node) set(key string, value *Node) {
	if _, exists := n.fields[key]; !exists {
		n.keys = append(n.keys, key)
	}
	n.fields[key] = value
}

// Get returns the child at key, or nil when n is not a mapping or the key is
// absent. It is safe to call on a nil node.
func (n *Node) Get(key string) *Node {
	if n == nil || n.Kind != MappingNode {
		return nil
	}
	return n.fields[key]
}

// Lookup follows a chain of mapping keys.
func (n *Node) Lookup(path ...string) *Node {
	cur := n
	for _, key := range path {
		cur = cur.Get(key)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// Keys returns mapping keys in declaration order.
func (n *Node) Keys() []string {
	if n == nil {
		return nil
	}
	return n.keys
}

// Items returns sequence elements in order.
func (n *Node) Items() []*Node {
	if n == nil {
		return nil
	}
	return n.items
}

// IsScalar reports whether n holds a scalar value.
func (n *Node) IsScalar() bool {
	return n != nil && n.Kind == ScalarNode
}

// Scalar returns the value at path when it is a scalar.
func (n *Node) Scalar(path ...string) (string, bool) {
	target := n.Lookup(path...)
	if !target.IsScalar() {
		return "", false
	}
	return target.Value, true
}
