//go:build e2e

package e2e

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mark47B/opspilot/internal/infra/storage/pg"
)

var (
	dbContainer *postgres.PostgresContainer
	dbURL       string
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Запускаем PostgreSQL контейнер
	container, err := postgres.Run(ctx, "docker.io/postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("Не удалось запустить контейнер PostgreSQL: %v", err)
	}
	dbContainer = container

	// 2. Получаем connection string
	dbURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("Не удалось получить connection string: %v", err)
	}

	// 3. Применяем встроенные миграции
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	if err := pg.Migrate(db); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}
	_ = db.Close()

	code := m.Run()

	_ = dbContainer.Terminate(ctx)
	os.Exit(code)
}

// setupTestDB возвращает соединение с пустой таблицей отчётов
func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err, "Не удалось подключиться к тестовой БД")

	_, err = db.Exec(`TRUNCATE TABLE workflow_reports`)
	require.NoError(t, err, "Не удалось очистить таблицы")

	t.Cleanup(func() { db.Close() })
	return db
}
