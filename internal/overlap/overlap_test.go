package overlap

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/trailshed/internal/income"
)

var joinColumns = func() []string {
	cols := []string{"trail_id", "geoid", "buffer_sqm", "bg_sqm", "intersect_sqm", "households_total"}
	return append(cols, income.Columns()...)
}()

// joinRow builds a mock join row with uniform bracket counts.
func joinRow(trailID, geoid string, bufSqm, bgSqm, intSqm float64, total, perBracket int) []any {
	row := []any{trailID, geoid, bufSqm, bgSqm, intSqm, total}
	for range income.Brackets {
		row = append(row, perBracket)
	}
	return row
}

func TestCompute_ProratesByFraction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(joinColumns).
		AddRow(joinRow("T1", "290770001001", 100, 50, 25, 10, 2)...)
	mock.ExpectQuery("SELECT b.trail_id").WillReturnRows(rows)

	records, err := Compute(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "T1", rec.TrailID)
	assert.Equal(t, "290770001001", rec.GEOID)
	assert.Equal(t, 0.5, rec.Fraction)
	assert.Equal(t, 5, rec.HouseholdsTotal)
	for _, c := range rec.BracketCounts {
		assert.Equal(t, 1, c) // 2 × 0.5
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCompute_ExcludesDegeneratePairs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(joinColumns).
		AddRow(joinRow("T1", "290770001001", 100, 50, 25, 10, 0)...).
		// Shared boundary only — intersection area 0.
		AddRow(joinRow("T1", "290770001002", 100, 80, 0, 40, 0)...)
	mock.ExpectQuery("SELECT b.trail_id").WillReturnRows(rows)

	records, err := Compute(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "290770001001", records[0].GEOID)
}

func TestCompute_FullContainment(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(joinColumns).
		AddRow(joinRow("T1", "290770001001", 5000, 120, 120, 88, 4)...)
	mock.ExpectQuery("SELECT b.trail_id").WillReturnRows(rows)

	records, err := Compute(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InEpsilon(t, 1.0, records[0].Fraction, 1e-6)
	assert.Equal(t, 88, records[0].HouseholdsTotal)
}

func TestCompute_FractionBounds(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(joinColumns).
		AddRow(joinRow("T1", "g1", 100, 50, 10, 30, 1)...).
		AddRow(joinRow("T1", "g2", 100, 50, 50.0000002, 30, 1)...).
		AddRow(joinRow("T2", "g1", 100, 50, 49.9, 30, 1)...)
	mock.ExpectQuery("SELECT b.trail_id").WillReturnRows(rows)

	records, err := Compute(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.GreaterOrEqual(t, rec.Fraction, 0.0)
		assert.LessOrEqual(t, rec.Fraction, 1.0)
	}
}

func TestCompute_DoubleCountAcrossBuffers(t *testing.T) {
	// One block group fully covered by two disjoint buffers: both pairs
	// carry the income independently. Callers wanting deduplicated totals
	// must union buffers before the join.
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(joinColumns).
		AddRow(joinRow("T1", "g1", 100, 50, 25, 100, 4)...).
		AddRow(joinRow("T2", "g1", 100, 50, 25, 100, 4)...)
	mock.ExpectQuery("SELECT b.trail_id").WillReturnRows(rows)

	records, err := Compute(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 2)

	sum := records[0].HouseholdsTotal + records[1].HouseholdsTotal
	assert.Equal(t, 100, sum) // 50 + 50: same households counted twice
}

func TestCompute_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT b.trail_id").WillReturnError(errors.New("postgis down"))

	_, err = Compute(context.Background(), mock)
	require.Error(t, err)
}

func TestCompute_ScanError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	row := joinRow("T1", "g1", 100, 50, 25, 10, 0)
	row[2] = "not-a-float"
	mock.ExpectQuery("SELECT b.trail_id").
		WillReturnRows(pgxmock.NewRows(joinColumns).AddRow(row...))

	_, err = Compute(context.Background(), mock)
	require.Error(t, err)
}

func TestPersist_TruncatesAndCopies(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("TRUNCATE trail.overlaps").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"trail", "overlaps"}, persistColumns).WillReturnResult(1)

	records := []Record{{
		TrailID: "T1", GEOID: "g1",
		BufferSqm: 100, BlockGroupSqm: 50, IntersectSqm: 25,
		Fraction: 0.5, HouseholdsTotal: 5,
		BracketCounts: make([]int, len(income.Brackets)),
	}}
	n, err := Persist(context.Background(), mock, records)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersist_EmptySet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("TRUNCATE trail.overlaps").WillReturnResult(pgxmock.NewResult("TRUNCATE", 0))

	n, err := Persist(context.Background(), mock, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_RoundTripShape(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	row := []any{"T1", "g1", 100.0, 50.0, 25.0, 0.5, 5}
	for range income.Brackets {
		row = append(row, 1)
	}
	mock.ExpectQuery("SELECT").WillReturnRows(pgxmock.NewRows(persistColumns).AddRow(row...))

	records, err := Load(context.Background(), mock)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.5, records[0].Fraction)
	assert.Len(t, records[0].BracketCounts, 16)
}
