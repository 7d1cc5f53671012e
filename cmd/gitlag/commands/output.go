package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/Sumatoshi-tech/gitlag/pkg/report"
)

// Output format names accepted by --format.
const (
	formatTable = "table"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

// writeRecord dispatches on the output format. renderTable is invoked
// for the human format; yaml and json go through the report codecs.
func writeRecord(w io.Writer, format string, record any, renderTable func() error) error {
	switch format {
	case formatTable:
		return renderTable()
	case formatYAML:
		return report.WriteYAML(w, record)
	case formatJSON:
		return report.WriteJSON(w, record)
	default:
		return usagef("unknown format %q", format)
	}
}

// writeFileWith creates path and streams the given writer function into
// it.
func writeFileWith(path string, write func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if err := write(file); err != nil {
		_ = file.Close()

		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	return nil
}
