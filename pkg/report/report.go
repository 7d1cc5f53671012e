// Package report renders lag measurements for humans and machines: summary
// tables, YAML/JSON records, per-sample CSV dumps and an HTML trace chart.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/Sumatoshi-tech/gitlag/pkg/persist"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// A LagReport is the full record of one lag measurement.
type LagReport struct {
	// Repository names the upstream, as given to the commit source.
	Repository string `json:"repository" yaml:"repository"`
	// Target is the measured directory.
	Target string `json:"target" yaml:"target"`
	// Metric is the serialized spelling of the ranked counter.
	Metric string `json:"metric" yaml:"metric"`
	// Objective is "minimize" or "maximize".
	Objective string `json:"objective" yaml:"objective"`
	// MeasuredAt is when the measurement finished.
	MeasuredAt time.Time `json:"measuredAt" yaml:"measuredAt"`

	Lag search.Lag `json:"lag" yaml:"lag"`
}

// WriteJSON emits the record as indented JSON. Counter keys keep their
// serialized spellings.
func WriteJSON(w io.Writer, record any) error {
	if err := persist.NewJSONCodec().Encode(w, record); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}

	return nil
}

// WriteYAML emits the record as YAML. Counter keys keep their serialized
// spellings.
func WriteYAML(w io.Writer, record any) error {
	if err := persist.NewYAMLCodec().Encode(w, record); err != nil {
		return fmt.Errorf("write yaml report: %w", err)
	}

	return nil
}
