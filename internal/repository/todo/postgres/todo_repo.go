package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type Storage struct {
	db   *sqlx.DB
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConnections)
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = int32(cfg.MinConnections)
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{
		db:   sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
		pool: pool,
	}, nil
}

// NewWithDB оборачивает готовое соединение, пул при этом не используется
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) Close() {
	s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func warnIfSlow(operation string, start time.Time, limit time.Duration) {
	if elapsed := time.Since(start); elapsed > limit {
		logger.Warn("Repository: Медленная операция",
			zap.String("operation", operation),
			zap.Duration("ms", elapsed))
	}
}

func (s *Storage) Create(ctx context.Context, todoToCreate *todo.Todo) error {
	start := time.Now()
	defer warnIfSlow("create", start, slowQuery)

	values, err := todoValues(todoToCreate)
	if err != nil {
		return err
	}
	values["id"] = todoToCreate.UUID.String()
	values["owner_id"] = todoToCreate.Owner

	query, args, err := psql.Insert("todos").
		SetMap(values).
		Suffix("RETURNING seq, version, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("построение запроса: %w", err)
	}

	err = s.db.QueryRowxContext(ctx, query, args...).Scan(
		&todoToCreate.Seq,
		&todoToCreate.Version,
		&todoToCreate.CreatedAt,
		&todoToCreate.UpdatedAt,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id uuid.UUID, owner string) (*todo.Todo, error) {
	start := time.Now()
	defer warnIfSlow("get_by_id", start, slowQuery)

	return s.getOwned(ctx, s.db, id, owner, false)
}

// getOwned читает задачу владельца, forUpdate блокирует строку до конца транзакции
func (s *Storage) getOwned(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID, owner string, forUpdate bool) (*todo.Todo, error) {
	builder := psql.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"id": id.String(), "owner_id": owner})
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}

	var row todoRow
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err)
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return row.toTodo()
}

func (s *Storage) GetByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]*todo.Todo, error) {
	if len(ids) == 0 {
		return []*todo.Todo{}, nil
	}
	start := time.Now()
	defer warnIfSlow("get_by_ids", start, slowQuery)

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.String())
	}

	query, args, err := psql.Select(todoColumns...).
		From("todos").
		Where(sq.Eq{"owner_id": owner, "id": keys}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}
	return s.selectTodos(ctx, query, args...)
}

// Mutate - чтение с блокировкой строки, изменение и запись с проверкой версии в одной транзакции
func (s *Storage) Mutate(ctx context.Context, id uuid.UUID, owner string, fn func(*todo.Todo) error) (*todo.Todo, error) {
	start := time.Now()
	defer warnIfSlow("mutate", start, slowQuery)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	current, err := s.getOwned(ctx, tx, id, owner, true)
	if err != nil {
		return nil, err
	}

	expectedVersion := current.Version
	if err := fn(current); err != nil {
		return nil, err
	}

	values, err := todoValues(current)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Update("todos").
		SetMap(values).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id.String(), "owner_id": owner, "version": expectedVersion}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}

	err = tx.QueryRowxContext(ctx, query, args...).Scan(&current.Version, &current.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			logger.Warn("Конфликт версий при обновлении задачи",
				zap.String("todo_id", id.String()),
				zap.Int("expected_version", expectedVersion))
			return nil, repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return nil, fmt.Errorf("обновление задачи: %w", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return current, nil
}

func (s *Storage) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	start := time.Now()
	defer warnIfSlow("delete", start, slowQuery)

	query, args, err := psql.Delete("todos").
		Where(sq.Eq{"id": id.String(), "owner_id": owner}).
		ToSql()
	if err != nil {
		return fmt.Errorf("построение запроса: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if affected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (s *Storage) List(ctx context.Context, owner string, filter todo.Filter) ([]*todo.Todo, error) {
	start := time.Now()
	defer warnIfSlow("list", start, slowQuery+10*time.Millisecond*time.Duration(filter.Limit))

	query, args, err := listQuery(owner, filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}
	return s.selectTodos(ctx, query, args...)
}

func listQuery(owner string, filter todo.Filter) sq.SelectBuilder {
	where := sq.And{
		sq.Eq{"owner_id": owner},
		sq.Eq{"is_archived": filter.Archived},
	}
	if filter.Completed != nil {
		where = append(where, sq.Eq{"completed": *filter.Completed})
	}
	if filter.Priority != nil {
		where = append(where, sq.Eq{"priority": string(*filter.Priority)})
	}
	if filter.Category != nil {
		where = append(where, sq.Eq{"category": *filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
		})
	}

	return psql.Select(todoColumns...).
		From("todos").
		Where(where).
		OrderBy(orderBy(filter.SortBy, filter.SortOrder), "seq ASC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))
}

// orderBy повторяет порядок todo.Filter.Sort: ранг приоритета, побайтовое сравнение заголовков,
// задачи без срока раньше любых дат
func orderBy(field todo.SortField, order todo.SortOrder) string {
	direction := "DESC"
	if order == todo.SortAsc {
		direction = "ASC"
	}

	switch field {
	case todo.SortUpdatedAt:
		return "updated_at " + direction
	case todo.SortDueDate:
		if direction == "ASC" {
			return "due_date ASC NULLS FIRST"
		}
		return "due_date DESC NULLS LAST"
	case todo.SortPriority:
		return "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 WHEN 'high' THEN 2 WHEN 'urgent' THEN 3 END " + direction
	case todo.SortTitle:
		return `title COLLATE "C" ` + direction
	default:
		return "created_at " + direction
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *Storage) selectTodos(ctx context.Context, query string, args ...any) ([]*todo.Todo, error) {
	var rows []todoRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		logger.Error("Repository: Не удалось получить задачи", err)
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	todos := make([]*todo.Todo, 0, len(rows))
	for i := range rows {
		t, err := rows[i].toTodo()
		if err != nil {
			logger.Warn("Repository: Ошибка разбора задачи", zap.Error(err))
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, nil
}

// Stats выполняет все агрегаты в одной read-only транзакции, чтобы счётчики были согласованы
func (s *Storage) Stats(ctx context.Context, owner string, now time.Time) (*todo.Stats, error) {
	start := time.Now()
	defer warnIfSlow("stats", start, slowQuery)

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback()

	active := sq.Eq{"owner_id": owner, "is_archived": false}
	stats := todo.NewStats()

	query, args, err := psql.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE completed)",
	).
		Column(sq.Expr("COUNT(*) FILTER (WHERE NOT completed AND due_date IS NOT NULL AND due_date < ?)", now)).
		From("todos").
		Where(active).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}
	err = tx.QueryRowxContext(ctx, query, args...).Scan(
		&stats.Overview.Total,
		&stats.Overview.Completed,
		&stats.Overview.Overdue,
	)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать статистику", err)
		return nil, fmt.Errorf("подсчёт статистики: %w", err)
	}
	stats.Overview.Pending = stats.Overview.Total - stats.Overview.Completed

	query, args, err = psql.Select("priority", "COUNT(*) AS count").
		From("todos").
		Where(active).
		GroupBy("priority").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}
	var priorities []struct {
		Priority string `db:"priority"`
		Count    int    `db:"count"`
	}
	if err := tx.SelectContext(ctx, &priorities, query, args...); err != nil {
		logger.Error("Repository: Не удалось посчитать приоритеты", err)
		return nil, fmt.Errorf("подсчёт приоритетов: %w", err)
	}
	for _, p := range priorities {
		stats.Priorities[todo.Priority(p.Priority)] = p.Count
	}

	query, args, err = psql.Select("category", "COUNT(*) AS count").
		From("todos").
		Where(active).
		Where(sq.NotEq{"category": ""}).
		GroupBy("category").
		OrderBy("count DESC", `category COLLATE "C" ASC`).
		Limit(todo.TopCategories).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("построение запроса: %w", err)
	}
	var categories []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	if err := tx.SelectContext(ctx, &categories, query, args...); err != nil {
		logger.Error("Repository: Не удалось посчитать категории", err)
		return nil, fmt.Errorf("подсчёт категорий: %w", err)
	}
	for _, c := range categories {
		stats.Categories = append(stats.Categories, todo.CategoryCount{Category: c.Category, Count: c.Count})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("фиксация транзакции: %w", err)
	}
	return stats, nil
}
