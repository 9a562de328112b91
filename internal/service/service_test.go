package service_test

import (
	"context"
	"errors"
	"testing"
	"time"
	"todoTracker/internal/models/todo"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/service"
	"todoTracker/internal/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTodoRepository - мок репозитория
type MockTodoRepository struct {
	mock.Mock
}

func (m *MockTodoRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTodoRepository) Create(ctx context.Context, t *todo.Todo) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTodoRepository) GetByID(ctx context.Context, id uuid.UUID, owner string) (*todo.Todo, error) {
	args := m.Called(ctx, id, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) GetByIDs(ctx context.Context, owner string, ids []uuid.UUID) ([]*todo.Todo, error) {
	args := m.Called(ctx, owner, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) Mutate(ctx context.Context, id uuid.UUID, owner string, fn func(*todo.Todo) error) (*todo.Todo, error) {
	args := m.Called(ctx, id, owner, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) Delete(ctx context.Context, id uuid.UUID, owner string) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

func (m *MockTodoRepository) List(ctx context.Context, owner string, filter todo.Filter) ([]*todo.Todo, error) {
	args := m.Called(ctx, owner, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*todo.Todo), args.Error(1)
}

func (m *MockTodoRepository) Stats(ctx context.Context, owner string, now time.Time) (*todo.Stats, error) {
	args := m.Called(ctx, owner, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*todo.Stats), args.Error(1)
}

var _ service.TodoRepository = (*MockTodoRepository)(nil)

const owner = "user-1"

func newService(t *testing.T, r service.TodoRepository) *service.TodoService {
	t.Helper()
	v, err := validation.New()
	require.NoError(t, err)
	return service.NewTodoService(r, v)
}

func requireCode(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, code, busErr.Code)
	return busErr
}

// TestTodoService_HealthCheck тестирует HealthCheck
func TestTodoService_HealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*MockTodoRepository)
		expectError bool
	}{
		{
			name: "success - health check passes",
			setupMock: func(m *MockTodoRepository) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectError: false,
		},
		{
			name: "error - health check fails",
			setupMock: func(m *MockTodoRepository) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo)

			svc := newService(t, mockRepo)
			err := svc.HealthCheck(context.Background())

			if tt.expectError {
				requireCode(t, err, service.CodeStore)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTodoService_Create_ValidationBeforeStore проверяет, что невалидные данные не доходят до хранилища
func TestTodoService_Create_ValidationBeforeStore(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	svc := newService(t, mockRepo)

	_, err := svc.Create(context.Background(), owner, todo.CreateInput{Title: "   "})
	busErr := requireCode(t, err, service.CodeValidation)

	result, ok := busErr.Details["errors"].(validation.Result)
	require.True(t, ok)
	assert.Equal(t, []string{"title"}, result.Fields())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTodoService_Create_StoreError(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*todo.Todo")).Return(errors.New("connection reset"))
	svc := newService(t, mockRepo)

	_, err := svc.Create(context.Background(), owner, todo.CreateInput{Title: "Buy milk"})
	busErr := requireCode(t, err, service.CodeStore)
	assert.NotContains(t, busErr.Message, "connection reset")
	mockRepo.AssertExpectations(t)
}

func TestTodoService_Create_TrimsAndDefaults(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(t *todo.Todo) bool {
		return t.Title == "Buy milk" && t.Owner == owner && t.Priority == todo.PriorityMedium
	})).Return(nil)
	svc := newService(t, mockRepo)

	view, err := svc.Create(context.Background(), owner, todo.CreateInput{Title: "  Buy milk  "})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", view.Todo.Title)
	assert.Equal(t, 0, view.CompletionPercentage)
	mockRepo.AssertExpectations(t)
}

func TestTodoService_Create_UnknownParent(t *testing.T) {
	parentID := uuid.New()
	mockRepo := new(MockTodoRepository)
	mockRepo.On("GetByID", mock.Anything, parentID, owner).Return(nil, repo.ErrNotFound)
	svc := newService(t, mockRepo)

	raw := parentID.String()
	_, err := svc.Create(context.Background(), owner, todo.CreateInput{Title: "child", ParentTodo: &raw})
	busErr := requireCode(t, err, service.CodeValidation)
	assert.Equal(t, []string{"parentTodo"}, busErr.Details["errors"].(validation.Result).Fields())
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTodoService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*MockTodoRepository, uuid.UUID)
		code      string
	}{
		{
			name: "success",
			setupMock: func(m *MockTodoRepository, id uuid.UUID) {
				found := todo.New(owner, "found")
				found.UUID = id
				m.On("GetByID", mock.Anything, id, owner).Return(found, nil)
			},
		},
		{
			name: "not found",
			setupMock: func(m *MockTodoRepository, id uuid.UUID) {
				m.On("GetByID", mock.Anything, id, owner).Return(nil, repo.ErrNotFound)
			},
			code: service.CodeNotFound,
		},
		{
			name: "store failure",
			setupMock: func(m *MockTodoRepository, id uuid.UUID) {
				m.On("GetByID", mock.Anything, id, owner).Return(nil, errors.New("timeout"))
			},
			code: service.CodeStore,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			mockRepo := new(MockTodoRepository)
			tt.setupMock(mockRepo, id)

			view, err := newService(t, mockRepo).Get(context.Background(), id, owner)
			if tt.code != "" {
				requireCode(t, err, tt.code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, view.Todo.UUID)
			mockRepo.AssertExpectations(t)
		})
	}
}

// TestTodoService_Toggle_RetriesVersionConflict проверяет повтор при конфликте версий
func TestTodoService_Toggle_RetriesVersionConflict(t *testing.T) {
	id := uuid.New()
	toggled := todo.New(owner, "toggled")
	toggled.UUID = id
	toggled.Completed = true

	mockRepo := new(MockTodoRepository)
	mockRepo.On("Mutate", mock.Anything, id, owner, mock.Anything).Return(nil, repo.ErrVersionConflict).Twice()
	mockRepo.On("Mutate", mock.Anything, id, owner, mock.Anything).Return(toggled, nil).Once()

	view, err := newService(t, mockRepo).Toggle(context.Background(), id, owner)
	require.NoError(t, err)
	assert.True(t, view.Todo.Completed)
	mockRepo.AssertNumberOfCalls(t, "Mutate", 3)
}

func TestTodoService_Toggle_GivesUpAfterConflicts(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Mutate", mock.Anything, id, owner, mock.Anything).Return(nil, repo.ErrVersionConflict)

	_, err := newService(t, mockRepo).Toggle(context.Background(), id, owner)
	requireCode(t, err, service.CodeStore)
	mockRepo.AssertNumberOfCalls(t, "Mutate", 3)
}

func TestTodoService_Delete(t *testing.T) {
	id := uuid.New()
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Delete", mock.Anything, id, owner).Return(nil).Once()
	mockRepo.On("Delete", mock.Anything, id, owner).Return(repo.ErrNotFound).Once()
	svc := newService(t, mockRepo)

	assert.NoError(t, svc.Delete(context.Background(), id, owner))
	requireCode(t, svc.Delete(context.Background(), id, owner), service.CodeNotFound)
}

func TestTodoService_List_HasMore(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	filter := todo.DefaultFilter()
	filter.Limit = 2

	page := []*todo.Todo{todo.New(owner, "a"), todo.New(owner, "b")}
	mockRepo.On("List", mock.Anything, owner, filter).Return(page, nil).Once()
	mockRepo.On("List", mock.Anything, owner, filter).Return(page[:1], nil).Once()
	svc := newService(t, mockRepo)

	views, hasMore, err := svc.List(context.Background(), owner, filter)
	require.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, hasMore)

	views, hasMore, err = svc.List(context.Background(), owner, filter)
	require.NoError(t, err)
	assert.Len(t, views, 1)
	assert.False(t, hasMore)
	mockRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestTodoService_Overview_StoreError(t *testing.T) {
	mockRepo := new(MockTodoRepository)
	mockRepo.On("Stats", mock.Anything, owner, mock.AnythingOfType("time.Time")).Return(nil, errors.New("boom"))

	_, err := newService(t, mockRepo).Overview(context.Background(), owner)
	requireCode(t, err, service.CodeStore)
}
