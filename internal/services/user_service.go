package services

import (
	"fmt"
	"sync"
	"time"

	"usermgmt/internal/models"
	"usermgmt/internal/repositories"
	"usermgmt/internal/validation"
	"usermgmt/pkg/rabbitmq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventPublisher receives user lifecycle events. *rabbitmq.Client implements it.
type EventPublisher interface {
	PublishUserEvent(event rabbitmq.UserEvent) error
}

// Option configures a UserService.
type Option func(*UserService)

// WithClock sets the time source used for age calculation and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// WithPublisher sets where lifecycle events are sent. Without it no events are published.
func WithPublisher(p EventPublisher) Option {
	return func(s *UserService) { s.publisher = p }
}

// UserService owns the in-memory user index. One mutex covers every
// check, mutation and snapshot write so saves never overlap.
type UserService struct {
	mu        sync.Mutex
	index     *repositories.UserIndex
	store     repositories.SnapshotStore
	validator *validation.Validator
	publisher EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService loads the current snapshot from store and returns a service serving it.
func NewUserService(store repositories.SnapshotStore, logger *zap.Logger, opts ...Option) (*UserService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &UserService{
		store:     store,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	ix, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	s.index = ix
	return s, nil
}

// CreateUser validates req, enforces email uniqueness, stores the new user and persists the snapshot.
func (s *UserService) CreateUser(req models.CreateUserRequest) (*models.UserResponse, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index.FindByEmail(req.Email); exists {
		return nil, models.ErrConflict
	}

	user := models.NewUser(uuid.New().String(), req)
	s.index.Put(user)
	if err := s.store.Save(s.index); err != nil {
		s.index.Delete(user.ID)
		s.logger.Error("failed to persist new user", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("user created", zap.String("user_id", user.ID), zap.Int("users", s.index.Len()))
	s.publish(rabbitmq.EventUserCreated, user)

	resp := user.Response(s.now())
	return &resp, nil
}

// GetUser returns the user with the given id.
func (s *UserService) GetUser(id string) (*models.UserResponse, error) {
	s.mu.Lock()
	user, ok := s.index.Get(id)
	s.mu.Unlock()

	if !ok {
		return nil, models.ErrNotFound
	}
	resp := user.Response(s.now())
	return &resp, nil
}

// ListUsers returns the users matching filter in insertion order. When an age bound is set,
// users without a birth date are left out.
func (s *UserService) ListUsers(filter models.UserFilter) ([]models.UserResponse, error) {
	s.mu.Lock()
	users := s.index.All()
	s.mu.Unlock()

	today := s.now()
	out := make([]models.UserResponse, 0, len(users))
	for _, u := range users {
		if filter.Country != nil && (u.Country == nil || *u.Country != *filter.Country) {
			continue
		}
		resp := u.Response(today)
		if filter.HasAgeBound() {
			if resp.Age == nil {
				continue
			}
			if filter.MinAge != nil && *resp.Age < *filter.MinAge {
				continue
			}
			if filter.MaxAge != nil && *resp.Age > *filter.MaxAge {
				continue
			}
		}
		out = append(out, resp)
	}
	return out, nil
}

// DeleteUser removes the user and persists the snapshot.
func (s *UserService) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, pos, ok := s.index.Delete(id)
	if !ok {
		return models.ErrNotFound
	}
	if err := s.store.Save(s.index); err != nil {
		s.index.Restore(pos, user)
		s.logger.Error("failed to persist user deletion", zap.String("user_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("user deleted", zap.String("user_id", id), zap.Int("users", s.index.Len()))
	s.publish(rabbitmq.EventUserDeleted, user)
	return nil
}

// Count returns the number of stored users.
func (s *UserService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Len()
}

// publish sends a lifecycle event. Failures are logged and never fail the operation.
func (s *UserService) publish(name string, user models.User) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.UserEvent{Event: name, UserID: user.ID, Email: user.Email, At: s.now().UTC()}
	if err := s.publisher.PublishUserEvent(event); err != nil {
		s.logger.Warn("failed to publish user event",
			zap.String("event", name),
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
	}
}
