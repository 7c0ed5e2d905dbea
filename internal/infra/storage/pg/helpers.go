package pg

import (
	"database/sql"

	"go.uber.org/zap"
)

func CloseRows(rows *sql.Rows, logger *zap.Logger) {
	if rows != nil {
		if err := rows.Close(); err != nil {
			logger.Error("closing rows", zap.Error(err))
		}
	}
}
