package journal

import (
	"encoding/csv"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Export writes t as a UTF-8 CSV prefixed with a byte order mark so that
// spreadsheet applications pick the right encoding for Hangul text.
func Export(w io.Writer, t Table) error {
	encoded := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(encoded)
	if err := writer.WriteAll(t.Records()); err != nil {
		encoded.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	return nil
}
