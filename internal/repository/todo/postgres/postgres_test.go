package postgres_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
	"todoTracker/internal/config"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/repository/todo/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const owner = "user-1"

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	connString string
	ctx        context.Context
}

func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), postgres.Migrate(s.connString, postgres.Up))
	// повторный запуск ничего не меняет
	require.NoError(s.T(), postgres.Migrate(s.connString, postgres.Up))

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{
		URL:            s.connString,
		MaxConnections: 10,
		MinConnections: 1,
		IdleTimeout:    time.Minute,
	})
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "DELETE FROM todos")
	require.NoError(s.T(), err)
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) create(owner, title string, opts ...todo.TodoOption) *todo.Todo {
	item := todo.New(owner, title)
	todo.Apply(item, opts...)
	require.NoError(s.T(), s.storage.Create(s.ctx, item))
	return item
}

func (s *PostgresTestSuite) TestHealthCheck() {
	assert.NoError(s.T(), s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestCreateAndGet() {
	due := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Microsecond)
	category := "work"
	item := s.create(owner, "Write report",
		todo.WithCategory(&category),
		todo.WithTags([]string{"a", "b"}),
		todo.WithDueDate(&due),
	)

	assert.Equal(s.T(), 1, item.Version)
	assert.NotZero(s.T(), item.Seq)
	assert.False(s.T(), item.CreatedAt.IsZero())

	got, err := s.storage.GetByID(s.ctx, item.UUID, owner)
	s.Require().NoError(err)
	assert.Equal(s.T(), "Write report", got.Title)
	assert.Equal(s.T(), []string{"a", "b"}, got.Tags)
	assert.Equal(s.T(), "work", got.Category)
	s.Require().NotNil(got.DueDate)
	assert.True(s.T(), due.Equal(*got.DueDate))
	assert.Empty(s.T(), got.Notes)

	_, err = s.storage.GetByID(s.ctx, item.UUID, "user-2")
	assert.Equal(s.T(), repo.ErrNotFound, err)
}

func (s *PostgresTestSuite) TestMutate() {
	parent := s.create(owner, "Parent")
	child := s.create(owner, "Child")

	updated, err := s.storage.Mutate(s.ctx, parent.UUID, owner, func(t *todo.Todo) error {
		t.AddSubtodo(child.UUID)
		t.AddNote("first", time.Now())
		return nil
	})
	s.Require().NoError(err)
	assert.Equal(s.T(), 2, updated.Version)

	got, err := s.storage.GetByID(s.ctx, parent.UUID, owner)
	s.Require().NoError(err)
	assert.Equal(s.T(), []uuid.UUID{child.UUID}, got.Subtodos)
	s.Require().Len(got.Notes, 1)
	assert.Equal(s.T(), "first", got.Notes[0].Content)

	children, err := s.storage.GetByIDs(s.ctx, owner, got.Subtodos)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	assert.Equal(s.T(), child.UUID, children[0].UUID)

	_, err = s.storage.Mutate(s.ctx, parent.UUID, "user-2", func(t *todo.Todo) error { return nil })
	assert.Equal(s.T(), repo.ErrNotFound, err)
}

func (s *PostgresTestSuite) TestConcurrentToggle() {
	item := s.create(owner, "Concurrent")

	const workers = 11
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.storage.Mutate(s.ctx, item.UUID, owner, func(t *todo.Todo) error {
				t.Toggle(time.Now())
				return nil
			})
			assert.NoError(s.T(), err)
		}()
	}
	wg.Wait()

	got, err := s.storage.GetByID(s.ctx, item.UUID, owner)
	s.Require().NoError(err)
	assert.True(s.T(), got.Completed)
	assert.Equal(s.T(), workers+1, got.Version)
}

func (s *PostgresTestSuite) TestListOrderingAndSearch() {
	low, high, urgent := todo.PriorityLow, todo.PriorityHigh, todo.PriorityUrgent
	s.create(owner, "b low", todo.WithPriority(&low))
	s.create(owner, "a urgent", todo.WithPriority(&urgent))
	s.create(owner, "c high 100%", todo.WithPriority(&high))
	s.create("user-2", "foreign", todo.WithPriority(&urgent))

	filter := todo.DefaultFilter()
	filter.SortBy = todo.SortPriority
	todos, err := s.storage.List(s.ctx, owner, filter)
	s.Require().NoError(err)
	s.Require().Len(todos, 3)
	assert.Equal(s.T(), []string{"a urgent", "c high 100%", "b low"}, titles(todos))

	filter.SortBy = todo.SortTitle
	filter.SortOrder = todo.SortAsc
	todos, err = s.storage.List(s.ctx, owner, filter)
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{"a urgent", "b low", "c high 100%"}, titles(todos))

	filter = todo.DefaultFilter()
	filter.Search = "100%"
	todos, err = s.storage.List(s.ctx, owner, filter)
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{"c high 100%"}, titles(todos))

	filter.Search = "%"
	todos, err = s.storage.List(s.ctx, owner, filter)
	s.Require().NoError(err)
	assert.Len(s.T(), todos, 1)
}

func (s *PostgresTestSuite) TestListDueDateNullsFirst() {
	due := time.Now().Add(24 * time.Hour)
	s.create(owner, "dated", todo.WithDueDate(&due))
	s.create(owner, "undated")

	filter := todo.DefaultFilter()
	filter.SortBy = todo.SortDueDate
	filter.SortOrder = todo.SortAsc
	todos, err := s.storage.List(s.ctx, owner, filter)
	s.Require().NoError(err)
	assert.Equal(s.T(), []string{"undated", "dated"}, titles(todos))
}

func (s *PostgresTestSuite) TestStats() {
	past := time.Now().Add(-time.Hour)
	done := true
	high := todo.PriorityHigh
	work, home := "work", "home"

	s.create(owner, "overdue", todo.WithDueDate(&past), todo.WithCategory(&work))
	s.create(owner, "done", todo.WithCompleted(&done, time.Now()), todo.WithPriority(&high), todo.WithCategory(&work))
	s.create(owner, "home", todo.WithCategory(&home))
	archived := s.create(owner, "archived", todo.WithCategory(&home))
	_, err := s.storage.Mutate(s.ctx, archived.UUID, owner, func(t *todo.Todo) error {
		t.IsArchived = true
		return nil
	})
	s.Require().NoError(err)

	stats, err := s.storage.Stats(s.ctx, owner, time.Now())
	s.Require().NoError(err)
	assert.Equal(s.T(), todo.Overview{Total: 3, Completed: 1, Pending: 2, Overdue: 1}, stats.Overview)
	assert.Equal(s.T(), 1, stats.Priorities[todo.PriorityHigh])
	assert.Equal(s.T(), 2, stats.Priorities[todo.PriorityMedium])
	assert.Equal(s.T(), []todo.CategoryCount{{Category: "work", Count: 2}, {Category: "home", Count: 1}}, stats.Categories)
}

func (s *PostgresTestSuite) TestDelete() {
	item := s.create(owner, "to delete")

	assert.Equal(s.T(), repo.ErrNotFound, s.storage.Delete(s.ctx, item.UUID, "user-2"))
	s.Require().NoError(s.storage.Delete(s.ctx, item.UUID, owner))
	assert.Equal(s.T(), repo.ErrNotFound, s.storage.Delete(s.ctx, item.UUID, owner))
}

func titles(todos []*todo.Todo) []string {
	res := make([]string, 0, len(todos))
	for _, t := range todos {
		res = append(res, t.Title)
	}
	return res
}
