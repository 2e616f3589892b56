package object

import "errors"

// Validation and resolution errors surfaced by the mapping layer. All of
// them surface synchronously at the offending call, never deferred to
// commit, and nothing in this package retries internally.
var (
	// ErrIdentifierMissing is returned when an identifier is required but
	// the object is not defined.
	ErrIdentifierMissing = errors.New("identifier required but object is not defined")

	// ErrInvalidValue is returned by Set when given a nil value.
	ErrInvalidValue = errors.New("property value must not be nil")

	// ErrTypeMismatch is returned when an object-valued property is given
	// a value that is not a graph object.
	ErrTypeMismatch = errors.New("object property requires a graph object value")

	// ErrDuplicateAlias is returned when alias source properties disagree
	// on a derived value during construction.
	ErrDuplicateAlias = errors.New("alias properties disagree on a value")

	// ErrMultiValueConflict is returned by ToDict in single-value mode
	// when a subject has more than one object.
	ErrMultiValueConflict = errors.New("more than one value for subject in single-value mode")

	// ErrCyclicImport is returned when adding an import edge would create
	// a cycle in the context DAG.
	ErrCyclicImport = errors.New("context import would create a cycle")

	// ErrUnboundContext is returned when an operation needs a bound
	// context (or a context with a store) and none is available.
	ErrUnboundContext = errors.New("operation requires a bound context")

	// ErrUnmappedType is returned when an RDF type has no registered
	// implementation and none could be recovered from persisted metadata.
	ErrUnmappedType = errors.New("rdf type has no registered implementation")

	// ErrTypeRedefinition is returned when a second, different schema is
	// registered under an already-registered name.
	ErrTypeRedefinition = errors.New("type already registered under this name")
)
