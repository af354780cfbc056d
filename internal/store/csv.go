package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DecodeCSV parses sheet content. A leading UTF-8 BOM is dropped and ragged
// rows are accepted; column normalization is left to the caller.
func DecodeCSV(data []byte) ([][]string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	reader := csv.NewReader(transform.NewReader(bytes.NewReader(data), decoder))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return records, nil
}

// decodeFailure reports content under where that could not be parsed. The
// sheet is unusable until repaired, so the error is both ErrMalformed and
// ErrUnavailable.
func decodeFailure(where string, err error) error {
	if !errors.Is(err, ErrMalformed) {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return fmt.Errorf("%w: read %s: %w", ErrUnavailable, where, err)
}

// EncodeCSV serializes records without a BOM.
func EncodeCSV(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
