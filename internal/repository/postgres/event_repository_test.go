package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fashionPulse/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgresdriver.New(postgresdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func TestEventsInWindowFiltersItemScopedTypes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	occurred := time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "actor_id", "session_id", "type", "item_id", "occurred_at"}).
		AddRow("ev-1", "u1", "s1", "view", "item-1", occurred).
		AddRow("ev-2", "u1", "s1", "purchase", "item-2", occurred)

	mock.ExpectQuery(`SELECT (.+) FROM "events" WHERE item_id <> '' AND type IN`).
		WillReturnRows(rows)

	start := occurred.Add(-time.Hour)
	events, err := repo.EventsInWindow(context.Background(), domain.TimeRange{Start: &start}, "u1")
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "item-1", events[0].ItemID)
	assert.Equal(t, "purchase", events[1].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchasesByVariantAggregates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	rows := sqlmock.NewRows([]string{"variant", "count", "items", "revenue"}).
		AddRow("control", int64(10), int64(8), 450.5).
		AddRow("visual_heavy", int64(4), int64(4), 120.0)

	mock.ExpectQuery(`SELECT variant_id AS variant, COUNT\(\*\) AS count, COUNT\(DISTINCT item_id\) AS items, SUM\(COALESCE\(price, 0\) \* GREATEST\(quantity, 1\)\) AS revenue FROM "events"`).
		WillReturnRows(rows)

	slices, err := repo.PurchasesByVariant(context.Background(), domain.TimeRange{})
	require.NoError(t, err)

	require.Len(t, slices, 2)
	assert.Equal(t, "control", slices[0].Variant)
	assert.Equal(t, int64(10), slices[0].Count)
	assert.InDelta(t, 450.5, slices[0].Revenue, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClicksByVariantRequireRecommendationSource(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`FROM "events" WHERE type = \$1 AND context ->> 'source' = \$2`).
		WithArgs(domain.EventTypeView, domain.SourceRecommendation).
		WillReturnRows(sqlmock.NewRows([]string{"variant", "count", "items"}))

	slices, err := repo.ClicksByVariant(context.Background(), domain.TimeRange{})
	require.NoError(t, err)
	assert.Empty(t, slices)
	assert.NoError(t, mock.ExpectationsWereMet())
}
