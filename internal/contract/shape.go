// Package contract turns unreliable model completions into validated JSON.
// Completions are supposed to contain a JSON payload but frequently arrive
// truncated, malformed, or wrapped in prose; every operation here terminates
// in a usable value, falling back to a deterministic placeholder when the
// payload cannot be salvaged.
package contract

// Kind is the expected top-level JSON type of a completion payload.
type Kind int

const (
	KindObject Kind = iota
	KindArray
)

func (k Kind) String() string {
	if k == KindArray {
		return "array"
	}
	return "object"
}

func (k Kind) opener() byte {
	if k == KindArray {
		return '['
	}
	return '{'
}

func (k Kind) closer() byte {
	if k == KindArray {
		return ']'
	}
	return '}'
}

// Shape describes the payload a completion is expected to carry and the
// deterministic value to substitute when it cannot be recovered.
type Shape struct {
	Kind Kind

	// RequiredKeys must be present on the object, or on every element of
	// the array.
	RequiredKeys []string

	// ExpectedCount is the required element count for arrays. Zero means
	// any length is acceptable.
	ExpectedCount int

	// ValidateElement, when set, runs against the object (or each array
	// element) after the generic checks pass. Returning an error sends the
	// whole interpretation to the fallback.
	ValidateElement func(map[string]any) error

	// Fallback is the schema-valid placeholder returned when the
	// completion cannot be made to satisfy the shape.
	Fallback any
}
