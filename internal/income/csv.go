package income

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ReadCSV decodes an income table from a delimited file with a header row.
// Column order is free; the header names must match the Record csv tags.
// Records failing structural validation abort the whole read.
func ReadCSV(path string, tolerance int) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "income: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return DecodeCSV(f, tolerance)
}

// DecodeCSV decodes income records from r. Split out of ReadCSV so tests
// and other callers can feed any reader.
func DecodeCSV(r io.Reader, tolerance int) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	dec, err := csvutil.NewDecoder(cr)
	if err != nil {
		return nil, eris.Wrap(err, "income: read csv header")
	}

	var records []Record
	for {
		var rec Record
		if err := dec.Decode(&rec); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "income: decode csv row")
		}
		if err := rec.Validate(tolerance); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	zap.L().Info("income: csv decoded", zap.Int("records", len(records)))
	return records, nil
}
