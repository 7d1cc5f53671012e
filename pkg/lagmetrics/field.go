package lagmetrics

import (
	"errors"
	"fmt"
)

// ErrUnknownField reports a field name that is not part of the record.
var ErrUnknownField = errors.New("unknown metric field")

// ErrUnknownExtremizer reports an objective that is neither minimize nor
// maximize.
var ErrUnknownExtremizer = errors.New("unknown extremizer")

// Field selects one counter of a Comparison.
type Field int

// One constant per record counter, in serialization order.
const (
	FieldLeftOnlyFiles Field = iota
	FieldLeftOnlyLines
	FieldRightOnlyFiles
	FieldRightOnlyLines
	FieldCommonIdenticalFiles
	FieldCommonIdenticalLines
	FieldCommonDifferentFiles
	FieldAddedLines
	FieldRemovedLines
	FieldEqualLines
	FieldDifferentFiles
	FieldDifferentLines
	FieldCommonFiles
	FieldCommonLines
)

var fieldNames = [...]string{
	FieldLeftOnlyFiles:        "leftOnlyFiles",
	FieldLeftOnlyLines:        "leftOnlyLines",
	FieldRightOnlyFiles:       "rightOnlyFiles",
	FieldRightOnlyLines:       "rightOnlyLines",
	FieldCommonIdenticalFiles: "commonIdenticalFiles",
	FieldCommonIdenticalLines: "commonIdenticalLines",
	FieldCommonDifferentFiles: "commonDifferentFiles",
	FieldAddedLines:           "addedLines",
	FieldRemovedLines:         "removedLines",
	FieldEqualLines:           "equalLines",
	FieldDifferentFiles:       "differentFiles",
	FieldDifferentLines:       "differentLines",
	FieldCommonFiles:          "commonFiles",
	FieldCommonLines:          "commonLines",
}

// Fields returns every field in serialization order. The slice is freshly
// allocated on each call.
func Fields() []Field {
	out := make([]Field, len(fieldNames))
	for i := range fieldNames {
		out[i] = Field(i)
	}

	return out
}

// String returns the serialized spelling of the field.
func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}

	return fieldNames[f]
}

// From returns the counter f selects from c.
func (f Field) From(c Comparison) int {
	switch f {
	case FieldLeftOnlyFiles:
		return c.LeftOnlyFiles
	case FieldLeftOnlyLines:
		return c.LeftOnlyLines
	case FieldRightOnlyFiles:
		return c.RightOnlyFiles
	case FieldRightOnlyLines:
		return c.RightOnlyLines
	case FieldCommonIdenticalFiles:
		return c.CommonIdenticalFiles
	case FieldCommonIdenticalLines:
		return c.CommonIdenticalLines
	case FieldCommonDifferentFiles:
		return c.CommonDifferentFiles
	case FieldAddedLines:
		return c.AddedLines
	case FieldRemovedLines:
		return c.RemovedLines
	case FieldEqualLines:
		return c.EqualLines
	case FieldDifferentFiles:
		return c.DifferentFiles
	case FieldDifferentLines:
		return c.DifferentLines
	case FieldCommonFiles:
		return c.CommonFiles
	case FieldCommonLines:
		return c.CommonLines
	default:
		return 0
	}
}

// ParseField resolves a serialized field spelling.
func ParseField(name string) (Field, error) {
	for i, n := range fieldNames {
		if n == name {
			return Field(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Extremizer states whether a search wants the smallest or the largest
// value of the selected field.
type Extremizer int

const (
	// Minimize prefers smaller field values.
	Minimize Extremizer = iota
	// Maximize prefers larger field values.
	Maximize
)

// String returns the parseable spelling of the extremizer.
func (e Extremizer) String() string {
	if e == Maximize {
		return "maximize"
	}

	return "minimize"
}

// Better reports whether candidate is strictly better than incumbent under
// the extremizer. Equal values are not better, which keeps tie resolution
// with the earlier candidate.
func (e Extremizer) Better(candidate, incumbent int) bool {
	if e == Maximize {
		return candidate > incumbent
	}

	return candidate < incumbent
}

// ParseExtremizer resolves "minimize" or "maximize".
func ParseExtremizer(name string) (Extremizer, error) {
	switch name {
	case "minimize":
		return Minimize, nil
	case "maximize":
		return Maximize, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownExtremizer, name)
	}
}
