package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/course-marketplace/internal/models"
)

func TestStorage_CreateCourse(t *testing.T) {
	type args struct {
		ctx    context.Context
		course models.Course
	}

	tests := []struct {
		name    string
		args    args
		wantErr bool
		setup   func(t *testing.T, factory *TestDataFactory) string
	}{
		{
			name: "successful create course",
			args: args{
				ctx: context.Background(),
				course: models.Course{
					Title:       "Go Basics",
					Description: "Introduction to Go",
					AuthorName:  "teacher",
					AuthorEmail: "teacher@example.com",
					Price:       1500,
					Category:    "programming",
					VideoURL:    "uploads/videos/intro.mp4",
				},
			},
			wantErr: false,
			setup: func(t *testing.T, factory *TestDataFactory) string {
				instructorUID := uuid.New().String()
				factory.CreateUser(t, instructorUID, "teacher", "teacher@example.com", "hashedpassword", "instructor")
				return instructorUID
			},
		},
		{
			name: "create course with unknown instructor fails",
			args: args{
				ctx: context.Background(),
				course: models.Course{
					Title:       "Go Basics",
					Description: "Introduction to Go",
					AuthorName:  "teacher",
					AuthorEmail: "teacher@example.com",
					Price:       1500,
					Category:    "programming",
					VideoURL:    "uploads/videos/intro.mp4",
				},
			},
			wantErr: true,
			setup:   func(_ *testing.T, _ *TestDataFactory) string { return uuid.New().String() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()

			factory := NewTestDataFactory(storage)
			tt.args.course.InstructorUID = tt.setup(t, factory)

			gotID, err := storage.CreateCourse(tt.args.ctx, tt.args.course)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, gotID)

			verification := NewTestVerification(storage)
			verification.VerifyCourseExists(t, gotID)
		})
	}
}

func TestStorage_ReadCourse(t *testing.T) {
	t.Run("successful read existing course", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		instructorUID := uuid.New().String()
		factory.CreateUser(t, instructorUID, "teacher", "teacher@example.com", "hashedpassword", "instructor")
		courseID := factory.CreateCourse(t, "Go Basics", 1500.0, instructorUID, "teacher", "teacher@example.com")

		got, err := storage.ReadCourse(context.Background(), courseID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, courseID, got.ID)
		assert.Equal(t, "Go Basics", got.Title)
		assert.Equal(t, instructorUID, got.InstructorUID)
		assert.Nil(t, got.ImageURL)
	})

	t.Run("read non-existing course", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		got, err := storage.ReadCourse(context.Background(), uuid.New().String())
		require.Error(t, err)
		require.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})
}

func TestStorage_UpdateCourse(t *testing.T) {
	t.Run("successful update own course", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		instructorUID := uuid.New().String()
		factory.CreateUser(t, instructorUID, "teacher", "teacher@example.com", "hashedpassword", "instructor")
		courseID := factory.CreateCourse(t, "Go Basics", 1500.0, instructorUID, "teacher", "teacher@example.com")

		gotRowsAffected, err := storage.UpdateCourse(context.Background(), models.Course{
			Title:       "Go Basics Updated",
			Description: "Updated description",
			Price:       2000,
			Category:    "programming",
		}, courseID, instructorUID)
		require.NoError(t, err)
		assert.Equal(t, 1, gotRowsAffected)

		got, err := storage.ReadCourse(context.Background(), courseID)
		require.NoError(t, err)
		assert.Equal(t, "Go Basics Updated", got.Title)
		// Пустой путь к видео не затирает сохраненный файл
		assert.Equal(t, "uploads/videos/test.mp4", got.VideoURL)
	})

	t.Run("update of someone else's course affects nothing", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		ownerUID := uuid.New().String()
		strangerUID := uuid.New().String()
		factory.CreateUser(t, ownerUID, "teacher", "teacher@example.com", "hashedpassword", "instructor")
		factory.CreateUser(t, strangerUID, "stranger", "stranger@example.com", "hashedpassword", "instructor")
		courseID := factory.CreateCourse(t, "Go Basics", 1500.0, ownerUID, "teacher", "teacher@example.com")

		gotRowsAffected, err := storage.UpdateCourse(context.Background(), models.Course{
			Title:       "Hijacked",
			Description: "Hijacked",
			Price:       1,
			Category:    "programming",
		}, courseID, strangerUID)
		require.NoError(t, err)
		assert.Equal(t, 0, gotRowsAffected)
	})
}

func TestStorage_RemoveCourse(t *testing.T) {
	t.Run("successful remove course", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		instructorUID := uuid.New().String()
		factory.CreateUser(t, instructorUID, "teacher", "teacher@example.com", "hashedpassword", "instructor")
		courseID := factory.CreateCourse(t, "Go Basics", 1500.0, instructorUID, "teacher", "teacher@example.com")

		gotRowsAffected, err := storage.RemoveCourse(context.Background(), courseID)
		require.NoError(t, err)
		assert.Equal(t, 1, gotRowsAffected)

		verification := NewTestVerification(storage)
		verification.VerifyCourseDeleted(t, courseID)
	})
}

func TestStorage_CreateUser(t *testing.T) {
	t.Run("successful create user without password", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		uid, err := storage.CreateUser(context.Background(), "newuser", "new@example.com", "student")
		require.NoError(t, err)
		require.NotEmpty(t, uid)

		got, err := storage.GetUserByEmail(context.Background(), "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, uid, got.UID)
		assert.Equal(t, "newuser", got.Username)
		assert.Equal(t, "student", got.Role)
		assert.Nil(t, got.PasswordHash)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		factory.CreateUser(t, uuid.New().String(), "testuser", "test@example.com", "hashedpassword", "student")

		_, err := storage.CreateUser(context.Background(), "another", "test@example.com", "student")
		require.Error(t, err)
	})
}

func TestStorage_UpdateUsername(t *testing.T) {
	t.Run("successful update username", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		userUID := uuid.New().String()
		factory.CreateUser(t, userUID, "oldname", "test@example.com", "hashedpassword", "student")

		gotRowsAffected, err := storage.UpdateUsername(context.Background(), userUID, "newname")
		require.NoError(t, err)
		assert.Equal(t, 1, gotRowsAffected)
	})

	t.Run("username taken by another account", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		userUID := uuid.New().String()
		factory.CreateUser(t, userUID, "oldname", "test@example.com", "hashedpassword", "student")
		factory.CreateUser(t, uuid.New().String(), "taken", "other@example.com", "hashedpassword", "student")

		gotRowsAffected, err := storage.UpdateUsername(context.Background(), userUID, "taken")
		require.NoError(t, err)
		assert.Equal(t, 0, gotRowsAffected)
	})
}

func TestStorage_UpsertOtp(t *testing.T) {
	t.Run("resend updates code in place", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		first, err := storage.UpsertOtp(context.Background(), "testuser", "test@example.com", "111111")
		require.NoError(t, err)

		second, err := storage.UpsertOtp(context.Background(), "testuser", "test@example.com", "222222")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "222222", second.Code)

		var count int
		err = storage.DB.QueryRow("SELECT COUNT(*) FROM otps WHERE email = $1", "test@example.com").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestStorage_GetOtpByEmail(t *testing.T) {
	t.Run("lookup is case insensitive", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		factory := NewTestDataFactory(storage)
		factory.CreateOtp(t, "testuser", "test@example.com", "482910", time.Now())

		got, err := storage.GetOtpByEmail(context.Background(), "Test@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "482910", got.Code)
	})

	t.Run("missing otp returns not found", func(t *testing.T) {
		storage, cleanup := setupTestDatabase(t)
		defer cleanup()

		_, err := storage.GetOtpByEmail(context.Background(), "nobody@example.com")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStorage_CheckDatabaseReady(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(t *testing.T, storage *Storage)
		wantError    bool
		errorContain string
	}{
		{
			name: "table exists",
			setup: func(_ *testing.T, _ *Storage) {
				// Таблица уже создается в setupTestDatabase
			},
			wantError: false,
		},
		{
			name: "table missing",
			setup: func(t *testing.T, storage *Storage) {
				_, err := storage.DB.Exec(`DROP TABLE IF EXISTS entitlements CASCADE`)
				require.NoError(t, err)
			},
			wantError:    true,
			errorContain: "missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage, cleanup := setupTestDatabase(t)
			defer cleanup()
			tt.setup(t, storage)

			err := storage.CheckDatabaseReady(context.Background())
			if tt.wantError {
				require.Error(t, err)
				if tt.errorContain != "" {
					assert.Contains(t, err.Error(), tt.errorContain)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}
