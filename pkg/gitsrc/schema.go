package gitsrc

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// historySchemaFS contains the embedded cache payload schema.
//
//go:embed history-schema.json
var historySchemaFS embed.FS

// validatePayload checks a decompressed cache payload against the
// history schema. Failures are reported as ErrCacheInvalid so callers
// can treat them as misses.
func validatePayload(raw []byte) error {
	schemaData, err := historySchemaFS.ReadFile("history-schema.json")
	if err != nil {
		return fmt.Errorf("read embedded schema: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheInvalid, err)
	}

	if !result.Valid() {
		return fmt.Errorf("%w: %s", ErrCacheInvalid, result.Errors()[0])
	}

	return nil
}
