package object

import (
	"github.com/OpenCortex/owmeta-core/graph"
	"github.com/OpenCortex/owmeta-core/rdf"
)

// ownerTracker is implemented by value objects that index the properties
// currently holding them.
type ownerTracker interface {
	BindOwner(graph.Property)
	UnbindOwner(graph.Property)
}

// PropertyValue wraps a bare scalar so it can participate in statements.
// It is always defined; its identifier is the encoded literal.
type PropertyValue struct {
	literal rdf.Literal
	owners  []graph.Property
}

// NewPropertyValue encodes a native value as a graph-aware literal
// holder.
func NewPropertyValue(v any) (*PropertyValue, error) {
	lit, err := rdf.NewLiteral(v)
	if err != nil {
		return nil, err
	}
	return &PropertyValue{literal: lit}, nil
}

// Literal returns the wrapped literal.
func (pv *PropertyValue) Literal() rdf.Literal { return pv.literal }

// Identifier implements graph.Object.
func (pv *PropertyValue) Identifier() rdf.Term { return pv.literal }

// Defined implements graph.Object. Literal values are always defined.
func (pv *PropertyValue) Defined() bool { return true }

// Properties implements graph.Object.
func (pv *PropertyValue) Properties() []graph.Property { return nil }

// OwnerProperties implements graph.Object.
func (pv *PropertyValue) OwnerProperties() []graph.Property { return pv.owners }

// BindOwner implements ownerTracker.
func (pv *PropertyValue) BindOwner(p graph.Property) { pv.owners = append(pv.owners, p) }

// UnbindOwner implements ownerTracker.
func (pv *PropertyValue) UnbindOwner(p graph.Property) {
	for i, o := range pv.owners {
		if o == p {
			pv.owners = append(pv.owners[:i], pv.owners[i+1:]...)
			return
		}
	}
}

func (pv *PropertyValue) String() string { return pv.literal.String() }

// Node is a bare identified resource: a graph object with nothing but an
// identifier. Query results that resolve to no registered type
// materialize as Nodes, and rdf:type assertions use Nodes for the type
// IRI.
type Node struct {
	id     rdf.Term
	owners []graph.Property
}

// NewNode wraps a term as a graph object.
func NewNode(id rdf.Term) *Node { return &Node{id: id} }

// Identifier implements graph.Object.
func (n *Node) Identifier() rdf.Term { return n.id }

// Defined implements graph.Object.
func (n *Node) Defined() bool { return n.id != nil }

// Properties implements graph.Object.
func (n *Node) Properties() []graph.Property { return nil }

// OwnerProperties implements graph.Object.
func (n *Node) OwnerProperties() []graph.Property { return n.owners }

// BindOwner implements ownerTracker.
func (n *Node) BindOwner(p graph.Property) { n.owners = append(n.owners, p) }

// UnbindOwner implements ownerTracker.
func (n *Node) UnbindOwner(p graph.Property) {
	for i, o := range n.owners {
		if o == p {
			n.owners = append(n.owners[:i], n.owners[i+1:]...)
			return
		}
	}
}

func (n *Node) String() string {
	if n.id == nil {
		return "Node(<undefined>)"
	}
	return "Node(" + n.id.String() + ")"
}
