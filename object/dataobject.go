package object

import (
	"fmt"

	"github.com/OpenCortex/owmeta-core/graph"
	"github.com/OpenCortex/owmeta-core/rdf"
)

// objectState is the state shared by every contextual view of one
// instance: the explicit identifier, the per-property statement holders,
// and the owner-property back-reference index.
type objectState struct {
	id     rdf.IRI
	props  []*propertyState
	owners []graph.Property
}

// DataObject is a typed domain entity represented as a set of
// statements. A DataObject value is a view: the underlying state is
// shared between views, while the context binding is per-view. Get and
// set through a view read and write only the bound context's statements.
type DataObject struct {
	schema  *Schema
	st      *objectState
	context *Context
	props   []*Property
}

// InstanceOption configures instance creation.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	id rdf.IRI
}

// WithID assigns an explicit identifier instead of deriving one from key
// properties.
func WithID(id rdf.IRI) InstanceOption {
	return func(c *instanceConfig) { c.id = id }
}

// New creates a context-free instance of the schema. The instance's
// rdf:type statement is staged automatically. Bind the instance to a
// context before querying through it.
func (s *Schema) New(opts ...InstanceOption) *DataObject {
	var cfg instanceConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	st := &objectState{id: cfg.id, props: make([]*propertyState, len(s.specs))}
	for i := range st.props {
		st.props[i] = &propertyState{}
	}
	view := newView(s, st, nil)
	view.stageType()
	return view
}

func newView(s *Schema, st *objectState, c *Context) *DataObject {
	view := &DataObject{schema: s, st: st, context: c}
	view.props = make([]*Property, len(s.specs))
	for i, spec := range s.specs {
		view.props[i] = &Property{spec: spec, state: st.props[i], owner: view, context: c}
	}
	return view
}

// stageType asserts the schema's rdf:type in the view's context. The
// insertion deduplicates, so rebinding is idempotent.
func (o *DataObject) stageType() {
	p := o.Prop(TypeAttributeName)
	if p == nil {
		return
	}
	p.insert(NewNode(o.schema.RDFType))
}

// Schema returns the instance's declaration.
func (o *DataObject) Schema() *Schema { return o.schema }

// GraphContext returns the context this view is bound to, or nil for a
// context-free view.
func (o *DataObject) GraphContext() *Context { return o.context }

// Prop returns the live property for the given attribute name, or nil
// when the schema declares no such property.
func (o *DataObject) Prop(name string) *Property {
	spec := o.schema.byName[name]
	if spec == nil {
		return nil
	}
	for i, s := range o.schema.specs {
		if s == spec {
			return o.props[i]
		}
	}
	return nil
}

// Identifier implements graph.Object. It returns the explicit
// identifier, a derived key identifier when every key property has a
// defined value in this view's context, or nil.
func (o *DataObject) Identifier() rdf.Term {
	id, err := o.IdentifierOrErr()
	if err != nil {
		return nil
	}
	return id
}

// IdentifierOrErr returns the instance identifier or
// ErrIdentifierMissing when the instance is not defined.
func (o *DataObject) IdentifierOrErr() (rdf.IRI, error) {
	if o.st.id != "" {
		return o.st.id, nil
	}
	if !o.schema.HasKeys() {
		return "", fmt.Errorf("%s has neither an explicit identifier nor key properties: %w",
			o.schema.Name, ErrIdentifierMissing)
	}

	keyValues := make(map[string][]rdf.Term, len(o.schema.keys))
	for _, spec := range o.schema.keys {
		p := o.Prop(spec.Name)
		vals := p.DefinedValues()
		if len(vals) == 0 {
			return "", fmt.Errorf("key property %q of %s has no defined value: %w",
				spec.Name, o.schema.Name, ErrIdentifierMissing)
		}
		terms := make([]rdf.Term, 0, len(vals))
		for _, v := range vals {
			terms = append(terms, v.Identifier())
		}
		keyValues[spec.Name] = terms
	}
	return KeyIdentifier(o.schema.Namespace, keyValues), nil
}

// Defined implements graph.Object: true once enough state exists to
// produce an identifier.
func (o *DataObject) Defined() bool {
	_, err := o.IdentifierOrErr()
	return err == nil
}

// Properties implements graph.Object.
func (o *DataObject) Properties() []graph.Property {
	out := make([]graph.Property, len(o.props))
	for i, p := range o.props {
		out[i] = p
	}
	return out
}

// OwnerProperties implements graph.Object.
func (o *DataObject) OwnerProperties() []graph.Property { return o.st.owners }

// BindOwner implements ownerTracker.
func (o *DataObject) BindOwner(p graph.Property) { o.st.owners = append(o.st.owners, p) }

// UnbindOwner implements ownerTracker.
func (o *DataObject) UnbindOwner(p graph.Property) {
	for i, owner := range o.st.owners {
		if owner == p {
			o.st.owners = append(o.st.owners[:i], o.st.owners[i+1:]...)
			return
		}
	}
}

// Decontextualize returns a context-free view over the same state.
func (o *DataObject) Decontextualize() *DataObject {
	if o.context == nil {
		return o
	}
	return newView(o.schema, o.st, nil)
}

// Equal reports whether two views denote the same instance in the same
// context. Identity follows the shared state or, for distinct states,
// the identifier.
func (o *DataObject) Equal(other *DataObject) bool {
	if other == nil {
		return false
	}
	if !sameContext(o.context, other.context) {
		return false
	}
	if o.st == other.st {
		return true
	}
	return o.Defined() && other.Defined() && o.Identifier() == other.Identifier()
}

func (o *DataObject) String() string {
	id, err := o.IdentifierOrErr()
	if err != nil {
		return fmt.Sprintf("%s(<undefined>)", o.schema.Name)
	}
	return fmt.Sprintf("%s(%s)", o.schema.Name, id)
}

// applyValues assigns construction values to properties, propagating
// alias ("also") declarations. Disagreeing alias assignments fail with
// ErrDuplicateAlias.
func applyValues(o *DataObject, values map[string]any) error {
	assigned := make(map[string]any, len(values))

	record := func(name string, v any) error {
		prev, ok := assigned[name]
		if !ok {
			assigned[name] = v
			return nil
		}
		if !valuesAgree(prev, v) {
			return fmt.Errorf("property %q: %w", name, ErrDuplicateAlias)
		}
		return nil
	}

	for name, v := range values {
		spec := o.schema.Spec(name)
		if spec == nil {
			return fmt.Errorf("%s has no property %q", o.schema.Name, name)
		}
		if err := record(name, v); err != nil {
			return err
		}
		for _, alias := range spec.Aliases {
			if err := record(alias, v); err != nil {
				return err
			}
		}
	}

	for name, v := range assigned {
		if _, err := o.Prop(name).Set(v); err != nil {
			return fmt.Errorf("set %q: %w", name, err)
		}
	}
	return nil
}

func valuesAgree(a, b any) bool {
	if ga, ok := a.(graph.Object); ok {
		gb, ok := b.(graph.Object)
		return ok && sameObject(ga, gb)
	}
	la, errA := rdf.NewLiteral(a)
	lb, errB := rdf.NewLiteral(b)
	if errA != nil || errB != nil {
		return false
	}
	return la == lb
}
