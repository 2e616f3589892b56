package rdf

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// XSD datatype IRIs used by the literal codec.
const (
	XSDString   = IRI("http://www.w3.org/2001/XMLSchema#string")
	XSDBoolean  = IRI("http://www.w3.org/2001/XMLSchema#boolean")
	XSDInteger  = IRI("http://www.w3.org/2001/XMLSchema#integer")
	XSDDouble   = IRI("http://www.w3.org/2001/XMLSchema#double")
	XSDDateTime = IRI("http://www.w3.org/2001/XMLSchema#dateTime")

	// JSONDatatype tags literals holding a JSON-encoded structure that has
	// no direct XSD mapping.
	JSONDatatype = IRI("https://opencortex.dev/datatype/json")
)

// NewLiteral encodes a native Go value as a typed Literal.
// Scalars map to the usual XSD datatypes; anything else is JSON-encoded
// under JSONDatatype.
func NewLiteral(v any) (Literal, error) {
	switch x := v.(type) {
	case Literal:
		return x, nil
	case string:
		return Literal{Val: x, Datatype: XSDString}, nil
	case bool:
		return Literal{Val: strconv.FormatBool(x), Datatype: XSDBoolean}, nil
	case int:
		return Literal{Val: strconv.Itoa(x), Datatype: XSDInteger}, nil
	case int32:
		return Literal{Val: strconv.FormatInt(int64(x), 10), Datatype: XSDInteger}, nil
	case int64:
		return Literal{Val: strconv.FormatInt(x, 10), Datatype: XSDInteger}, nil
	case float32:
		return Literal{Val: strconv.FormatFloat(float64(x), 'g', -1, 64), Datatype: XSDDouble}, nil
	case float64:
		return Literal{Val: strconv.FormatFloat(x, 'g', -1, 64), Datatype: XSDDouble}, nil
	case time.Time:
		return Literal{Val: x.UTC().Format(time.RFC3339Nano), Datatype: XSDDateTime}, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return Literal{}, fmt.Errorf("encode literal: %w", err)
		}
		return Literal{Val: string(data), Datatype: JSONDatatype}, nil
	}
}

// Native decodes the literal back to a Go value according to its datatype.
// Unknown datatypes decode to the raw lexical string.
func (l Literal) Native() (any, error) {
	switch l.Datatype {
	case "", XSDString:
		return l.Val, nil
	case XSDBoolean:
		b, err := strconv.ParseBool(l.Val)
		if err != nil {
			return nil, fmt.Errorf("decode boolean literal %q: %w", l.Val, err)
		}
		return b, nil
	case XSDInteger:
		n, err := strconv.ParseInt(l.Val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("decode integer literal %q: %w", l.Val, err)
		}
		return n, nil
	case XSDDouble:
		f, err := strconv.ParseFloat(l.Val, 64)
		if err != nil {
			return nil, fmt.Errorf("decode double literal %q: %w", l.Val, err)
		}
		return f, nil
	case XSDDateTime:
		t, err := time.Parse(time.RFC3339Nano, l.Val)
		if err != nil {
			return nil, fmt.Errorf("decode dateTime literal %q: %w", l.Val, err)
		}
		return t, nil
	case JSONDatatype:
		var v any
		if err := json.Unmarshal([]byte(l.Val), &v); err != nil {
			return nil, fmt.Errorf("decode json literal: %w", err)
		}
		return v, nil
	default:
		return l.Val, nil
	}
}
