package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Sumatoshi-tech/gitlag/pkg/lagmetrics"
	"github.com/Sumatoshi-tech/gitlag/pkg/search"
)

// WriteCSV dumps one row per sampled commit: sequence, revision, timestamp,
// then every counter in serialization order. The rows keep evaluation order,
// which is the order the search visited the history in.
func WriteCSV(w io.Writer, samples []search.Sample) error {
	cw := csv.NewWriter(w)

	header := []string{"sequence", "revisionId", "timestamp"}
	for _, f := range lagmetrics.Fields() {
		header = append(header, f.String())
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, s := range samples {
		row := []string{
			strconv.Itoa(s.Sequence),
			s.RevisionID,
			s.Timestamp.UTC().Format(time.RFC3339),
		}
		for _, f := range lagmetrics.Fields() {
			row = append(row, strconv.Itoa(f.From(s.Metrics)))
		}

		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	return nil
}
