package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
	"github.com/magabrotheeeer/course-marketplace/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) ListUsersByRole(ctx context.Context, role string) ([]*models.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *RepoMock) UpdateUsername(ctx context.Context, userUID, username string) (int, error) {
	args := m.Called(ctx, userUID, username)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) RemoveUser(ctx context.Context, userUID string) (int, error) {
	args := m.Called(ctx, userUID)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) ListAddresses(ctx context.Context, userUID string) ([]*models.Address, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Address), args.Error(1)
}
func (m *RepoMock) UpsertAddress(ctx context.Context, a models.Address) (string, error) {
	args := m.Called(ctx, a)
	return args.String(0), args.Error(1)
}
func (m *RepoMock) RemoveAddress(ctx context.Context, userUID, addressID string) (int, error) {
	args := m.Called(ctx, userUID, addressID)
	return args.Int(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestUserService_List(t *testing.T) {
	users := []*models.User{{UID: "u1", Role: "student"}}

	t.Run("all users", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListUsers", mock.Anything).Return(users, nil).Once()
		svc := NewUserService(repo, newNoopLogger())

		got, err := svc.List(context.Background(), "")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})

	t.Run("filtered by role", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("ListUsersByRole", mock.Anything, "instructor").Return(users, nil).Once()
		svc := NewUserService(repo, newNoopLogger())

		got, err := svc.List(context.Background(), "instructor")
		assert.NoError(t, err)
		assert.Len(t, got, 1)
		repo.AssertExpectations(t)
	})
}

func TestUserService_Get(t *testing.T) {
	addresses := []*models.Address{{ID: "a1", Label: "home", City: "Москва"}}

	t.Run("profile includes addresses", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
		repo.On("ListAddresses", mock.Anything, "u1").Return(addresses, nil).Once()
		svc := NewUserService(repo, newNoopLogger())

		got, err := svc.Get(context.Background(), "u1")
		require.NoError(t, err)
		assert.Len(t, got.Addresses, 1)
		repo.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUser", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
		svc := NewUserService(repo, newNoopLogger())

		_, err := svc.Get(context.Background(), "u1")
		assert.ErrorIs(t, err, ErrUserNotFound)
		repo.AssertExpectations(t)
	})
}

func TestUserService_Update(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(r *RepoMock)
		req        models.DummyUserUpdate
		wantErr    error
	}{
		{
			name: "username and address are updated",
			setupMocks: func(r *RepoMock) {
				r.On("UpdateUsername", mock.Anything, "u1", "newname").Return(1, nil).Once()
				r.On("UpsertAddress", mock.Anything, mock.MatchedBy(func(a models.Address) bool {
					return a.UserUID == "u1" && a.Label == "home"
				})).Return("a1", nil).Once()
				r.On("GetUser", mock.Anything, "u1").
					Return(&models.User{UID: "u1", Username: "newname"}, nil).Once()
				r.On("ListAddresses", mock.Anything, "u1").
					Return([]*models.Address{{ID: "a1"}}, nil).Once()
			},
			req: models.DummyUserUpdate{
				Username: "newname",
				Addresses: []models.DummyAddress{
					{Label: "home", Street: "Тверская 1", City: "Москва", PostalCode: "125009"},
				},
			},
		},
		{
			name: "taken username",
			setupMocks: func(r *RepoMock) {
				r.On("UpdateUsername", mock.Anything, "u1", "taken").Return(0, nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(&models.User{UID: "u1"}, nil).Once()
			},
			req:     models.DummyUserUpdate{Username: "taken"},
			wantErr: ErrUsernameTaken,
		},
		{
			name: "unknown user",
			setupMocks: func(r *RepoMock) {
				r.On("UpdateUsername", mock.Anything, "u1", "newname").Return(0, nil).Once()
				r.On("GetUser", mock.Anything, "u1").Return(nil, repository.ErrNotFound).Once()
			},
			req:     models.DummyUserUpdate{Username: "newname"},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			svc := NewUserService(repo, newNoopLogger())

			tt.setupMocks(repo)

			got, err := svc.Update(context.Background(), "u1", tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "newname", got.Username)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestUserService_Remove(t *testing.T) {
	repo := new(RepoMock)
	repo.On("RemoveUser", mock.Anything, "u1").Return(1, nil).Once()
	repo.On("RemoveUser", mock.Anything, "missing").Return(0, nil).Once()
	svc := NewUserService(repo, newNoopLogger())

	assert.NoError(t, svc.Remove(context.Background(), "u1"))
	assert.ErrorIs(t, svc.Remove(context.Background(), "missing"), ErrUserNotFound)

	repo.AssertExpectations(t)
}
