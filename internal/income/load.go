package income

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/trailshed/internal/db"
)

// LoadColumns is the trail.income column list in COPY/upsert order.
var LoadColumns = append([]string{"geoid", "households_total"}, Columns()...)

// Load upserts income records into trail.income keyed by geoid, so a
// reload of a revised table replaces prior counts without disturbing
// block groups the new file does not mention.
func Load(ctx context.Context, pool db.Pool, records []Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(records))
	for i := range records {
		rec := &records[i]
		row := make([]any, 0, len(LoadColumns))
		row = append(row, rec.GEOID, rec.HouseholdsTotal)
		for _, c := range rec.BracketCounts() {
			row = append(row, c)
		}
		rows = append(rows, row)
	}

	n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        "trail.income",
		Columns:      LoadColumns,
		ConflictKeys: []string{"geoid"},
	}, rows)
	if err != nil {
		return 0, err
	}

	zap.L().Info("income: records loaded",
		zap.String("component", "income.load"),
		zap.Int64("rows", n),
	)
	return n, nil
}
