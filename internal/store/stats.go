package store

import (
	"context"

	"github.com/persistorai/auditlens/internal/models"
)

// MonitoredTables are the tables reported on the health dashboard.
var MonitoredTables = []string{"activity_logs", "users"}

// TableStats measures the storage footprint of one table.
func (b *Base) TableStats(ctx context.Context, table string) (models.TableStats, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	st := models.TableStats{Table: table}
	err := b.Pool.QueryRow(ctx, `
		SELECT GREATEST(c.reltuples, 0)::bigint,
			pg_table_size(c.oid), pg_indexes_size(c.oid), pg_total_relation_size(c.oid)
		FROM pg_class c
		WHERE c.oid = to_regclass($1)`,
		table,
	).Scan(&st.RowEstimate, &st.TableBytes, &st.IndexBytes, &st.TotalBytes)
	if err != nil {
		return models.TableStats{Table: table}, models.Unavailable("measuring table "+table, err)
	}

	return st, nil
}
