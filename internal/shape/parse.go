package shape

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// ParseShapefile reads a shapefile and returns rows suitable for COPY
// loading. Each row is []any matching layer.Columns with a WKB-encoded
// geometry column appended as the final element. Records with nil,
// unsupported, or zero-area polygon geometry are skipped and counted, not
// fatal — a file that fails to open is.
func ParseShapefile(shpPath string, layer Layer) ([][]any, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shape: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	// TIGER DBF attributes are Latin-1, not UTF-8.
	dec := charmap.ISO8859_1.NewDecoder()

	// Numeric DBF fields destined for BIGINT columns; everything else
	// loads as text.
	intField := make(map[string]bool, len(layer.IntFields))
	for _, f := range layer.IntFields {
		intField[strings.ToLower(f)] = true
	}

	var rows [][]any
	var skipped int

	for reader.Next() {
		n, geometry := reader.Shape()

		row := make([]any, 0, len(layer.Columns)+1)
		for _, field := range layer.Fields {
			idx, ok := fieldIdx[strings.ToLower(field)]
			if !ok {
				row = append(row, nil)
				continue
			}
			raw := strings.TrimRight(reader.Attribute(idx), "\x00")
			val, decErr := dec.String(raw)
			if decErr != nil {
				val = raw
			}
			val = strings.TrimSpace(val)
			switch {
			case val == "":
				row = append(row, nil)
			case intField[strings.ToLower(field)]:
				i64, parseErr := strconv.ParseInt(val, 10, 64)
				if parseErr != nil {
					return nil, eris.Wrapf(parseErr, "shape: field %s of record %d is not an integer", field, n)
				}
				row = append(row, i64)
			default:
				row = append(row, val)
			}
		}

		if geometry == nil {
			skipped++
			continue
		}
		if poly, ok := geometry.(*shp.Polygon); ok && PolygonArea(poly) == 0 {
			zap.L().Debug("shape: skipping zero-area polygon record",
				zap.String("layer", layer.Name),
				zap.Int("record", n),
			)
			skipped++
			continue
		}
		wkb, encErr := EncodeWKB(geometry, layer.SRID)
		if encErr != nil {
			skipped++
			continue
		}
		if wkb == nil {
			skipped++
			continue
		}
		row = append(row, wkb)

		rows = append(rows, row)
	}

	if skipped > 0 {
		zap.L().Debug("shape: skipped shapefile records",
			zap.String("layer", layer.Name),
			zap.Int("skipped", skipped),
		)
	}

	return rows, nil
}
