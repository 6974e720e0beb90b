// Package menu defines the static topic catalog presented to clients.
//
// The catalog is a tree of nodes. Section nodes carry a button layout for
// their children; leaf nodes carry static help text and the response-time
// target attached when a ticket is opened from that topic. Button labels
// double as commands: inbound text is matched against node keys by exact
// string equality.
package menu

// Global button literals shared across all menus.
const (
	BackKey    = "⤴ Головне меню"
	CommentKey = "⁉ Звернутись"
	AskKey     = "⁉ Запитати"
)

// DefaultSLAHours is the response-time target for topics not present in
// the catalog (including free-form questions via the ask button).
const DefaultSLAHours = 48

// Node is a single entry in the topic catalog. Section nodes have
// children and a keyboard layout; leaf nodes have response text and an
// SLA target.
type Node struct {
	Key      string
	Children []*Node
	Rows     [][]string // keyboard rows shown when this node is entered

	Response string // static help text (leaf nodes)
	SLAHours int    // response-time target (leaf nodes)

	// Documents marks leaves whose tickets route to the documents
	// manager instead of the client's assigned manager.
	Documents bool
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Child returns the direct child with the given key, matched by exact
// string equality.
func (n *Node) Child(key string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Key == key {
			return c, true
		}
	}
	return nil, false
}

// Catalog is the immutable topic tree, built once at startup.
type Catalog struct {
	root  *Node
	index map[string]*Node
}

// New builds the catalog.
func New() *Catalog {
	c := &Catalog{
		root:  buildTree(),
		index: make(map[string]*Node),
	}
	c.indexNode(c.root)
	return c
}

func (c *Catalog) indexNode(n *Node) {
	c.index[n.Key] = n
	for _, child := range n.Children {
		c.indexNode(child)
	}
}

// Root returns the main-menu node.
func (c *Catalog) Root() *Node {
	return c.root
}

// Find returns the node with the given key anywhere in the tree.
func (c *Catalog) Find(key string) (*Node, bool) {
	n, ok := c.index[key]
	return n, ok
}

// SLA returns the response-time target in hours for a topic key. Unknown
// topics (and section keys) yield DefaultSLAHours.
func (c *Catalog) SLA(topicKey string) int {
	if n, ok := c.index[topicKey]; ok && n.SLAHours > 0 {
		return n.SLAHours
	}
	return DefaultSLAHours
}
