package service

import (
	"context"
	"errors"
	"time"

	"github.com/set-night/orderboard/internal/domain"
	"github.com/set-night/orderboard/internal/repository"
)

type CatalogService struct {
	store repository.Store
	now   func() time.Time
}

func NewCatalogService(store repository.Store) *CatalogService {
	return &CatalogService{store: store, now: time.Now}
}

// CreateTask validates and inserts a task. A duplicate key is reported as a
// validation error.
func (s *CatalogService) CreateTask(ctx context.Context, name string, points int64, maxCompletions int, createdBy string) (domain.Task, error) {
	task, err := domain.NewTask(name, points, maxCompletions)
	if err != nil {
		return domain.Task{}, err
	}
	task.CreatedBy = createdBy
	task.CreatedAt = s.now()

	err = s.store.WithTx(ctx, func(tx repository.Tx) error {
		return tx.InsertTask(ctx, task)
	})
	if errors.Is(err, domain.ErrTaskExists) {
		return domain.Task{}, &domain.ValidationError{Field: "name", Reason: "an order named " + task.Name + " already exists"}
	}
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task. It returns domain.ErrTaskNotFound when the key
// is absent; callers treat that as already done.
func (s *CatalogService) DeleteTask(ctx context.Context, key string) (domain.Task, error) {
	var task domain.Task
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		if task, err = tx.GetTask(ctx, key); err != nil {
			return err
		}
		return tx.DeleteTask(ctx, key)
	})
	if err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// ListTasks returns the catalog in insertion order.
func (s *CatalogService) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		tasks, err = tx.ListTasks(ctx)
		return err
	})
	return tasks, err
}

func (s *CatalogService) GetTask(ctx context.Context, key string) (domain.Task, error) {
	var task domain.Task
	err := s.store.WithTx(ctx, func(tx repository.Tx) error {
		var err error
		task, err = tx.GetTask(ctx, key)
		return err
	})
	return task, err
}
