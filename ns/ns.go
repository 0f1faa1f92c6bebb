// Package ns implements the namespace tree the substrate maintains: typed,
// named nodes rooted at "\", including the predefined scopes platform
// firmware expects to find.
//
// The tree is not internally synchronized. The subsystem serializes access
// through the host's namespace mutex.
package ns

import (
	"strings"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/object"
	"github.com/acpikit/acpikit/ownerid"
)

// RootName is the name segment of the namespace root.
const RootName = `\___`

// segLength is the fixed length of a name segment. Shorter names are
// padded with underscores.
const segLength = 4

// Predefined scopes installed under a fresh root.
var predefined = []struct {
	name string
	typ  object.Type
}{
	{"_GPE", object.SCOPE},
	{"_PR_", object.SCOPE},
	{"_SB_", object.DEVICE},
	{"_SI_", object.SCOPE},
	{"_TZ_", object.THERMAL},
}

// Node is one namespace entry.
type Node struct {
	name     string
	typ      object.Type
	owner    ownerid.ID
	obj      object.Object
	parent   *Node
	children []*Node
}

// NewRoot builds a namespace containing only the root and the predefined
// top-level scopes.
func NewRoot() *Node {
	root := &Node{name: RootName, typ: object.DEVICE}
	for _, p := range predefined {
		root.children = append(root.children, &Node{
			name:   p.name,
			typ:    p.typ,
			parent: root,
		})
	}
	return root
}

func padName(name string) (string, error) {
	if name == "" || len(name) > segLength {
		return "", errz.Newf(errz.BadParameter, "invalid name segment %q", name)
	}
	if len(name) < segLength {
		name += strings.Repeat("_", segLength-len(name))
	}
	return name, nil
}

// Name returns the padded name segment.
func (n *Node) Name() string {
	return n.name
}

// Type returns the object type recorded for the node.
func (n *Node) Type() object.Type {
	return n.typ
}

// Owner returns the owner ID of whoever created the node.
func (n *Node) Owner() ownerid.ID {
	return n.owner
}

// SetOwner records the creating owner.
func (n *Node) SetOwner(id ownerid.ID) {
	n.owner = id
}

// Object returns the value object attached to the node, if any.
func (n *Node) Object() object.Object {
	return n.obj
}

// Attach sets the value object for the node.
func (n *Node) Attach(obj object.Object) {
	n.obj = obj
}

// Parent returns the enclosing node, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children in creation order. The slice is
// owned by the node.
func (n *Node) Children() []*Node {
	return n.children
}

// IsRoot reports whether the node is the namespace root.
func (n *Node) IsRoot() bool {
	return n.parent == nil
}

// Root climbs to the namespace root.
func (n *Node) Root() *Node {
	cur := n
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// NewChild creates a child node. The name is padded to four characters;
// creating a second child with the same name fails.
func (n *Node) NewChild(name string, typ object.Type) (*Node, error) {
	padded, err := padName(name)
	if err != nil {
		return nil, err
	}
	if n.Child(padded) != nil {
		return nil, errz.Newf(errz.BadParameter, "%s already has a child %q", n.Path(), padded)
	}
	child := &Node{name: padded, typ: typ, parent: n}
	n.children = append(n.children, child)
	return child, nil
}

// Child returns the direct child with the given name, or nil.
func (n *Node) Child(name string) *Node {
	padded, err := padName(name)
	if err != nil {
		return nil
	}
	for _, child := range n.children {
		if child.name == padded {
			return child
		}
	}
	return nil
}

// Find resolves a dotted path. A leading backslash anchors the search at
// the root; otherwise resolution starts at the receiver.
func (n *Node) Find(path string) (*Node, error) {
	cur := n
	if strings.HasPrefix(path, `\`) {
		cur = n.Root()
		path = path[1:]
	}
	if path == "" {
		return cur, nil
	}
	for _, seg := range strings.Split(path, ".") {
		next := cur.Child(seg)
		if next == nil {
			return nil, errz.Newf(errz.BadParameter, "%s has no child %q", cur.Path(), seg)
		}
		cur = next
	}
	return cur, nil
}

// Path returns the absolute dotted pathname of the node.
func (n *Node) Path() string {
	if n.parent == nil {
		return `\`
	}
	segs := []string{}
	for cur := n; cur.parent != nil; cur = cur.parent {
		segs = append(segs, cur.name)
	}
	var sb strings.Builder
	sb.WriteByte('\\')
	for i := len(segs) - 1; i >= 0; i-- {
		sb.WriteString(segs[i])
		if i > 0 {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// Walk visits the subtree rooted at n in preorder. The visitor receives the
// depth relative to n; returning false prunes the node's children.
func (n *Node) Walk(visit func(depth int, node *Node) bool) {
	n.walk(0, visit)
}

func (n *Node) walk(depth int, visit func(int, *Node) bool) {
	if !visit(depth, n) {
		return
	}
	for _, child := range n.children {
		child.walk(depth+1, visit)
	}
}

// Size returns the number of nodes in the subtree, including n itself.
func (n *Node) Size() int {
	count := 0
	n.Walk(func(int, *Node) bool {
		count++
		return true
	})
	return count
}

// CountByType tallies the subtree's nodes by object type.
func (n *Node) CountByType() map[object.Type]int {
	counts := make(map[object.Type]int)
	n.Walk(func(_ int, node *Node) bool {
		counts[node.typ]++
		return true
	})
	return counts
}

// DeleteByOwner detaches every subtree whose root is owned by id and
// returns the number of nodes removed. Descendants of a removed node go
// with it regardless of their own owner.
func (n *Node) DeleteByOwner(id ownerid.ID) int {
	if id == 0 {
		return 0
	}
	removed := 0
	kept := n.children[:0]
	for _, child := range n.children {
		if child.owner == id {
			removed += child.Size()
			child.parent = nil
			continue
		}
		removed += child.DeleteByOwner(id)
		kept = append(kept, child)
	}
	// Drop the tail so detached subtrees are not pinned by the backing
	// array.
	for i := len(kept); i < len(n.children); i++ {
		n.children[i] = nil
	}
	n.children = kept
	return removed
}
