package core

import (
	"github.com/volatiletech/null/v8"
)

// OptionalInt is a nullable reference in a partial update.
// Set is true once the JSON key was present, so an explicit null clears the reference
// while a missing key leaves it untouched.
type OptionalInt struct {
	Value null.Int
	Set   bool
}

func OptionalIntFrom(i int) OptionalInt {
	return OptionalInt{Value: null.IntFrom(i), Set: true}
}

// OptionalNull clears the reference it is applied to.
func OptionalNull() OptionalInt {
	return OptionalInt{Set: true}
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	return o.Value.UnmarshalJSON(data)
}

func (o OptionalInt) MarshalJSON() ([]byte, error) {
	return o.Value.MarshalJSON()
}

// Apply overwrites dst when the value was set.
func (o OptionalInt) Apply(dst *null.Int) {
	if o.Set {
		*dst = o.Value
	}
}

// CleanOptional trims the pointed string, if any.
func CleanOptional(s *string) {
	if s != nil {
		*s = CleanString(*s)
	}
}
