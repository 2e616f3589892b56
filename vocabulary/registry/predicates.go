// Package registry defines the IRIs of the persisted type-recovery shape:
// the triples a Mapper writes when a type is registered and reads back
// when it meets an unregistered type IRI in stored data.
package registry

import "github.com/OpenCortex/owmeta-core/rdf"

// Namespace is the base IRI prefix for mapping-layer ontology terms.
const Namespace = "https://opencortex.dev/ontology/"

// EntityNamespace is the base IRI for entity instances that carry no
// schema-specific namespace of their own.
const EntityNamespace = "https://opencortex.dev/entity/"

// Class IRIs for registry descriptor nodes.
const (
	// ClassRegistryEntry marks a node recording one registered type.
	ClassRegistryEntry = rdf.IRI(Namespace + "RegistryEntry")

	// ClassDescription marks a node describing an implementing type.
	ClassDescription = rdf.IRI(Namespace + "ClassDescription")

	// ClassModule marks a node naming the module that provides a type.
	ClassModule = rdf.IRI(Namespace + "Module")
)

// Predicates of the persisted descriptor shape:
//
//	(entry, RDFClass, <type-uri>)
//	(entry, ClassDescriptionLink, <descriptor-node>)
//	(<descriptor-node>, Module, <module-node>)
//	(<descriptor-node>, ClassName, "<type name>")
//	(<module-node>, ModuleName, "<module path>")
const (
	// RDFClass links a registry entry to the RDF type it records.
	RDFClass = rdf.IRI(Namespace + "registryEntry/rdfClass")

	// ClassDescriptionLink links a registry entry to its descriptor node.
	ClassDescriptionLink = rdf.IRI(Namespace + "registryEntry/classDescription")

	// Module links a descriptor to its module node.
	Module = rdf.IRI(Namespace + "classDescription/module")

	// ClassName is the implementing type's name within its module.
	ClassName = rdf.IRI(Namespace + "classDescription/name")

	// ModuleName is the module path as a literal.
	ModuleName = rdf.IRI(Namespace + "module/name")
)

// RegistryContext is the well-known context holding persisted type
// descriptors.
const RegistryContext = rdf.IRI(Namespace + "context/registry")

// Context composition terms.
const (
	// Imports records one import edge between two contexts.
	Imports = rdf.IRI(Namespace + "contextImports")

	// ImportsContext is the well-known context holding all import edges,
	// kept separate from context data so composition provenance can be
	// committed and audited independently.
	ImportsContext = rdf.IRI(Namespace + "context/imports")
)
