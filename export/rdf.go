// Package export serializes quads to standard RDF text formats.
package export

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/OpenCortex/owmeta-core/rdf"
	"github.com/OpenCortex/owmeta-core/vocabulary/rdfns"
	"github.com/OpenCortex/owmeta-core/vocabulary/registry"
)

// Exporter serializes quads with a configurable prefix table. Output is
// deterministic: prefixes, subjects, and quads are written in sorted
// order.
type Exporter struct {
	prefixes map[string]string
}

// NewExporter creates an exporter with the standard namespace prefixes.
func NewExporter() *Exporter {
	return &Exporter{prefixes: defaultPrefixes()}
}

func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":    rdfns.RDFNamespace,
		"rdfs":   rdfns.RDFSNamespace,
		"owl":    "http://www.w3.org/2002/07/owl#",
		"xsd":    "http://www.w3.org/2001/XMLSchema#",
		"owm":    registry.Namespace,
		"entity": registry.EntityNamespace,
	}
}

// AddPrefix registers an additional namespace prefix for Turtle and
// JSON-LD output.
func (e *Exporter) AddPrefix(prefix, iri string) {
	e.prefixes[prefix] = iri
}

// ExportQuads serializes the given quads to the specified format.
func (e *Exporter) ExportQuads(quads []rdf.Quad, format Format) (string, error) {
	sorted := append([]rdf.Quad(nil), quads...)
	sortQuads(sorted)
	switch format {
	case FormatTurtle:
		return e.toTurtle(sorted), nil
	case FormatNQuads:
		return toNQuads(sorted), nil
	case FormatJSONLD:
		return e.toJSONLD(sorted), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// ExportStore reads every quad held under the given context IRIs and
// serializes them. An empty context list exports the whole store.
func (e *Exporter) ExportStore(ctx context.Context, store rdf.Store, contexts []rdf.IRI, format Format) (string, error) {
	var quads []rdf.Quad
	patterns := []rdf.Pattern{{}}
	if len(contexts) > 0 {
		patterns = patterns[:0]
		for _, c := range contexts {
			patterns = append(patterns, rdf.Pattern{Context: c})
		}
	}
	for _, p := range patterns {
		cur, err := store.MatchTriples(ctx, p)
		if err != nil {
			return "", err
		}
		matched, err := rdf.CollectQuads(cur)
		if err != nil {
			return "", err
		}
		quads = append(quads, matched...)
	}
	return e.ExportQuads(quads, format)
}

func sortQuads(quads []rdf.Quad) {
	sort.Slice(quads, func(i, j int) bool {
		if quads[i].Subject.Kind() != quads[j].Subject.Kind() {
			return quads[i].Subject.Kind() < quads[j].Subject.Kind()
		}
		if quads[i].Subject.Value() != quads[j].Subject.Value() {
			return quads[i].Subject.Value() < quads[j].Subject.Value()
		}
		if quads[i].Predicate != quads[j].Predicate {
			return quads[i].Predicate < quads[j].Predicate
		}
		if quads[i].Object.Value() != quads[j].Object.Value() {
			return quads[i].Object.Value() < quads[j].Object.Value()
		}
		return quads[i].Context < quads[j].Context
	})
}

func (e *Exporter) sortedPrefixes() []string {
	keys := make([]string, 0, len(e.prefixes))
	for k := range e.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toTurtle groups quads by subject and writes predicate-object lists.
// Context IRIs are not representable in Turtle and are dropped.
func (e *Exporter) toTurtle(quads []rdf.Quad) string {
	var sb strings.Builder

	for _, prefix := range e.sortedPrefixes() {
		fmt.Fprintf(&sb, "@prefix %s: <%s> .\n", prefix, e.prefixes[prefix])
	}
	sb.WriteString("\n")

	for i := 0; i < len(quads); {
		subject := quads[i].Subject
		j := i
		for j < len(quads) && quads[j].Subject == subject {
			j++
		}
		writeSubjectTurtle(&sb, subject, quads[i:j])
		sb.WriteString("\n")
		i = j
	}
	return sb.String()
}

func writeSubjectTurtle(sb *strings.Builder, subject rdf.Term, quads []rdf.Quad) {
	fmt.Fprintf(sb, "%s\n", formatTerm(subject))
	seen := make(map[rdf.Quad]struct{}, len(quads))
	written := 0
	for _, q := range quads {
		key := rdf.Quad{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if written > 0 {
			sb.WriteString(" ;\n")
		}
		predicate := "<" + string(q.Predicate) + ">"
		if q.Predicate == rdfns.Type {
			predicate = "a"
		}
		fmt.Fprintf(sb, "    %s %s", predicate, formatTerm(q.Object))
		written++
	}
	sb.WriteString(" .\n")
}

// toNQuads writes one line per quad, with the context IRI as the graph
// label when present.
func toNQuads(quads []rdf.Quad) string {
	var sb strings.Builder
	for _, q := range quads {
		sb.WriteString(formatTerm(q.Subject))
		sb.WriteString(" <")
		sb.WriteString(string(q.Predicate))
		sb.WriteString("> ")
		sb.WriteString(formatTerm(q.Object))
		if q.Context != "" {
			sb.WriteString(" <")
			sb.WriteString(string(q.Context))
			sb.WriteString(">")
		}
		sb.WriteString(" .\n")
	}
	return sb.String()
}

// toJSONLD emits a flat @graph of subject nodes.
func (e *Exporter) toJSONLD(quads []rdf.Quad) string {
	var sb strings.Builder

	sb.WriteString("{\n")
	sb.WriteString("  \"@context\": {\n")
	prefixes := e.sortedPrefixes()
	for i, prefix := range prefixes {
		fmt.Fprintf(&sb, "    %q: %q", prefix, e.prefixes[prefix])
		if i < len(prefixes)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("  },\n")
	sb.WriteString("  \"@graph\": [\n")

	first := true
	for i := 0; i < len(quads); {
		subject := quads[i].Subject
		j := i
		for j < len(quads) && quads[j].Subject == subject {
			j++
		}
		if !first {
			sb.WriteString(",\n")
		}
		writeSubjectJSONLD(&sb, subject, quads[i:j])
		first = false
		i = j
	}
	sb.WriteString("\n  ]\n")
	sb.WriteString("}\n")
	return sb.String()
}

func writeSubjectJSONLD(sb *strings.Builder, subject rdf.Term, quads []rdf.Quad) {
	sb.WriteString("    {\n")
	fmt.Fprintf(sb, "      \"@id\": %q", subjectID(subject))

	var types []string
	rest := make([]rdf.Quad, 0, len(quads))
	for _, q := range quads {
		if q.Predicate == rdfns.Type && q.Object.Kind() == rdf.KindIRI {
			types = append(types, q.Object.Value())
			continue
		}
		rest = append(rest, q)
	}
	if len(types) > 0 {
		sb.WriteString(",\n      \"@type\": [")
		for i, t := range types {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%q", t)
		}
		sb.WriteString("]")
	}
	for _, q := range rest {
		sb.WriteString(",\n")
		fmt.Fprintf(sb, "      %q: %s", string(q.Predicate), formatObjectJSONLD(q.Object))
	}
	sb.WriteString("\n    }")
}

func subjectID(t rdf.Term) string {
	if t.Kind() == rdf.KindBlank {
		return "_:" + t.Value()
	}
	return t.Value()
}

// formatTerm renders a term for Turtle and N-Quads output.
func formatTerm(t rdf.Term) string {
	switch t.Kind() {
	case rdf.KindIRI:
		return "<" + t.Value() + ">"
	case rdf.KindBlank:
		return "_:" + t.Value()
	default:
		lit, ok := t.(rdf.Literal)
		if !ok {
			return fmt.Sprintf("%q", escapeString(t.Value()))
		}
		if lit.Datatype == "" || lit.Datatype == rdf.XSDString {
			return fmt.Sprintf("\"%s\"", escapeString(lit.Val))
		}
		return fmt.Sprintf("\"%s\"^^<%s>", escapeString(lit.Val), string(lit.Datatype))
	}
}

func formatObjectJSONLD(t rdf.Term) string {
	switch t.Kind() {
	case rdf.KindIRI:
		return fmt.Sprintf("{\"@id\": %q}", t.Value())
	case rdf.KindBlank:
		return fmt.Sprintf("{\"@id\": \"_:%s\"}", t.Value())
	default:
		lit, ok := t.(rdf.Literal)
		if !ok || lit.Datatype == "" || lit.Datatype == rdf.XSDString {
			return fmt.Sprintf("%q", t.Value())
		}
		return fmt.Sprintf("{\"@value\": %q, \"@type\": %q}", lit.Val, string(lit.Datatype))
	}
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
