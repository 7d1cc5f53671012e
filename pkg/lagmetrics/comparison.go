// Package lagmetrics defines the comparison record produced by directory
// tree comparisons and the typed selectors used to rank commits by one of
// its counters. Field spellings in serialized output are stable and match
// the names used here.
package lagmetrics

// Comparison holds the counters for one directory-pair comparison.
//
// The first ten counters are summed over subtrees during a recursive
// comparison. The last four are derived and computed exactly once, at the
// top level, via Derived.
type Comparison struct {
	LeftOnlyFiles        int `json:"leftOnlyFiles"        yaml:"leftOnlyFiles"`
	LeftOnlyLines        int `json:"leftOnlyLines"        yaml:"leftOnlyLines"`
	RightOnlyFiles       int `json:"rightOnlyFiles"       yaml:"rightOnlyFiles"`
	RightOnlyLines       int `json:"rightOnlyLines"       yaml:"rightOnlyLines"`
	CommonIdenticalFiles int `json:"commonIdenticalFiles" yaml:"commonIdenticalFiles"`
	CommonIdenticalLines int `json:"commonIdenticalLines" yaml:"commonIdenticalLines"`
	CommonDifferentFiles int `json:"commonDifferentFiles" yaml:"commonDifferentFiles"`
	AddedLines           int `json:"addedLines"           yaml:"addedLines"`
	RemovedLines         int `json:"removedLines"         yaml:"removedLines"`
	EqualLines           int `json:"equalLines"           yaml:"equalLines"`

	DifferentFiles int `json:"differentFiles" yaml:"differentFiles"`
	DifferentLines int `json:"differentLines" yaml:"differentLines"`
	CommonFiles    int `json:"commonFiles"    yaml:"commonFiles"`
	CommonLines    int `json:"commonLines"    yaml:"commonLines"`
}

// Add returns the counter-wise sum of c and other. Derived fields are not
// summed; they are recomputed from the summed counters by Derived.
func (c Comparison) Add(other Comparison) Comparison {
	return Comparison{
		LeftOnlyFiles:        c.LeftOnlyFiles + other.LeftOnlyFiles,
		LeftOnlyLines:        c.LeftOnlyLines + other.LeftOnlyLines,
		RightOnlyFiles:       c.RightOnlyFiles + other.RightOnlyFiles,
		RightOnlyLines:       c.RightOnlyLines + other.RightOnlyLines,
		CommonIdenticalFiles: c.CommonIdenticalFiles + other.CommonIdenticalFiles,
		CommonIdenticalLines: c.CommonIdenticalLines + other.CommonIdenticalLines,
		CommonDifferentFiles: c.CommonDifferentFiles + other.CommonDifferentFiles,
		AddedLines:           c.AddedLines + other.AddedLines,
		RemovedLines:         c.RemovedLines + other.RemovedLines,
		EqualLines:           c.EqualLines + other.EqualLines,
	}
}

// Derived returns a copy of c with the four derived counters filled in.
// A file missing on one side is half a different file; the halves from both
// sides pair up, hence the integer division by two.
func (c Comparison) Derived() Comparison {
	const sides = 2

	out := c
	out.DifferentFiles = (c.LeftOnlyFiles+c.RightOnlyFiles)/sides + c.CommonDifferentFiles
	out.DifferentLines = (c.LeftOnlyLines + c.RightOnlyLines + c.AddedLines + c.RemovedLines) / sides
	out.CommonFiles = c.CommonIdenticalFiles
	out.CommonLines = c.CommonIdenticalLines + c.EqualLines

	return out
}

// Map returns the record as a flat name to counter mapping using the
// serialized field spellings.
func (c Comparison) Map() map[string]int {
	out := make(map[string]int, len(Fields()))
	for _, f := range Fields() {
		out[f.String()] = f.From(c)
	}

	return out
}
