package postgres

import (
	"embed"
	"errors"
	"fmt"
	"todoTracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrate применяет или откатывает схему. Драйвер миграций закрывает переданное соединение,
// поэтому для него открывается отдельное, а не берётся из пула хранилища
func Migrate(url string, direction Direction) error {
	connConfig, err := pgx.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("загрузка конфига: %w", err)
	}
	db := stdlib.OpenDB(*connConfig)

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("драйвер миграций: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("источник миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("инициализация миграций: %w", err)
	}
	defer m.Close()

	switch direction {
	case Up:
		err = m.Up()
	case Down:
		err = m.Down()
	default:
		return fmt.Errorf("неизвестное направление миграции %q", direction)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("Migrate: Схема уже актуальна", zap.String("direction", string(direction)))
		return nil
	}
	if err != nil {
		logger.Error("Migrate: Ошибка применения миграций", err, zap.String("direction", string(direction)))
		return fmt.Errorf("миграция %s: %w", direction, err)
	}

	version, dirty, _ := m.Version()
	logger.Info("Migrate: Миграции применены",
		zap.String("direction", string(direction)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}
