// Package rdfns holds the RDF and RDFS term IRIs the mapping layer
// depends on.
package rdfns

import "github.com/OpenCortex/owmeta-core/rdf"

// RDFNamespace is the base IRI of the RDF vocabulary.
const RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

// RDFSNamespace is the base IRI of the RDF Schema vocabulary.
const RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"

const (
	// Type asserts the class of a resource.
	Type = rdf.IRI(RDFNamespace + "type")

	// SubClassOf relates a class to its superclass. Queries over typed
	// values follow this predicate transitively when subtype matching is
	// requested.
	SubClassOf = rdf.IRI(RDFSNamespace + "subClassOf")

	// SubPropertyOf relates a predicate to the predicate it specializes.
	SubPropertyOf = rdf.IRI(RDFSNamespace + "subPropertyOf")

	// Label is the human-readable name of a resource.
	Label = rdf.IRI(RDFSNamespace + "label")
)
