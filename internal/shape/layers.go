// Package shape reads trail-network and Census TIGER/Line block-group
// shapefiles and bulk-loads them into PostGIS trail.* tables.
package shape

import (
	"fmt"
	"sort"
)

// Layer describes a shapefile source and its target table.
type Layer struct {
	Name      string   // e.g., "TRAILS"
	Table     string   // target table inside the trail schema, e.g., "trails"
	Columns   []string // DB attribute columns in shapefile field order (without geom)
	Fields    []string // shapefile DBF field names matching Columns
	IntFields []string // Fields parsed to int64 for BIGINT columns; the rest load as text
	GeomType  string   // "MULTILINESTRING" or "MULTIPOLYGON"
	SRID      int      // SRID the shapefile coordinates are in
}

// Trails is the trail-network layer. Field names follow the common
// trail-inventory shapefile schema (NAME/TYPE/STATUS); missing fields
// load as NULL.
var Trails = Layer{
	Name:     "TRAILS",
	Table:    "trails",
	Columns:  []string{"trail_id", "name", "trail_type", "status"},
	Fields:   []string{"trail_id", "name", "type", "status"},
	GeomType: "MULTILINESTRING",
	SRID:     4326,
}

// BlockGroups is the Census block-group boundary layer (TIGER/Line BG product).
var BlockGroups = Layer{
	Name:      "BG",
	Table:     "block_groups",
	Columns:   []string{"geoid", "statefp", "countyfp", "tractce", "blkgrpce", "aland", "awater"},
	Fields:    []string{"geoid", "statefp", "countyfp", "tractce", "blkgrpce", "aland", "awater"},
	IntFields: []string{"aland", "awater"},
	GeomType:  "MULTIPOLYGON",
	SRID:      4269, // TIGER/Line ships NAD83 geographic coordinates
}

// Layers lists every shapefile layer trailshed can load.
var Layers = []Layer{Trails, BlockGroups}

// LayerByName looks up a layer by its name (case-sensitive).
func LayerByName(name string) (Layer, bool) {
	for _, l := range Layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

// FIPSCodes maps state abbreviation to 2-digit FIPS code for all 50 states + DC.
var FIPSCodes = map[string]string{
	"AL": "01", "AK": "02", "AZ": "04", "AR": "05", "CA": "06",
	"CO": "08", "CT": "09", "DE": "10", "DC": "11", "FL": "12",
	"GA": "13", "HI": "15", "ID": "16", "IL": "17", "IN": "18",
	"IA": "19", "KS": "20", "KY": "21", "LA": "22", "ME": "23",
	"MD": "24", "MA": "25", "MI": "26", "MN": "27", "MS": "28",
	"MO": "29", "MT": "30", "NE": "31", "NV": "32", "NH": "33",
	"NJ": "34", "NM": "35", "NY": "36", "NC": "37", "ND": "38",
	"OH": "39", "OK": "40", "OR": "41", "PA": "42", "RI": "44",
	"SC": "45", "SD": "46", "TN": "47", "TX": "48", "UT": "49",
	"VT": "50", "VA": "51", "WA": "53", "WV": "54", "WI": "55",
	"WY": "56",
}

// AllStateAbbrs returns a sorted list of state abbreviations (50 states + DC).
func AllStateAbbrs() []string {
	abbrs := make([]string, 0, len(FIPSCodes))
	for abbr := range FIPSCodes {
		abbrs = append(abbrs, abbr)
	}
	sort.Strings(abbrs)
	return abbrs
}

// BlockGroupURL builds the Census Bureau download URL for a state's
// TIGER/Line block-group shapefile.
func BlockGroupURL(year int, stateFIPS string) string {
	return fmt.Sprintf(
		"https://www2.census.gov/geo/tiger/TIGER%d/BG/tl_%d_%s_bg.zip",
		year, year, stateFIPS,
	)
}
