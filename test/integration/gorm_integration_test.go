package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"cortex-ai-be/internal/entity"
	"cortex-ai-be/internal/model"
	"cortex-ai-be/internal/repository/unitofwork"
	"cortex-ai-be/pkg/apperror"
	"cortex-ai-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, true)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Folder{}, &model.Note{}, &model.File{},
		&model.Conversation{}, &model.Message{}, &model.ContextReference{},
	))
	return db
}

func TestConversationRepositories(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(db)
	uow := uowFactory.NewUnitOfWork(ctx)
	userId := uuid.New()

	empty := &entity.Conversation{UserId: userId, Title: "Empty"}
	require.NoError(t, uow.ConversationRepository().Create(ctx, empty))

	active := &entity.Conversation{UserId: userId, Title: "Active"}
	require.NoError(t, uow.ConversationRepository().Create(ctx, active))

	t.Cleanup(func() {
		db.Unscoped().Where("user_id = ?", userId).Delete(&model.Conversation{})
	})

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, uow.MessageRepository().Create(ctx, &entity.Message{
		ConversationId: active.Id,
		Role:           "user",
		Content:        "hello",
		CreatedAt:      now,
	}))
	require.NoError(t, uow.ConversationRepository().Touch(ctx, active.Id, now))

	t.Run("previews skip conversations without messages", func(t *testing.T) {
		previews, err := uow.ConversationRepository().FindPreviews(ctx, userId, 0, 10)
		require.NoError(t, err)
		require.Len(t, previews, 1)
		assert.Equal(t, active.Id, previews[0].Id)
		assert.Equal(t, int64(1), previews[0].MessageCount)
	})

	t.Run("duplicate reference is reported", func(t *testing.T) {
		ref := &entity.ContextReference{ConversationId: active.Id, EntityType: "note", EntityId: uuid.New()}
		require.NoError(t, uow.ContextReferenceRepository().Create(ctx, ref))

		dup := &entity.ContextReference{ConversationId: active.Id, EntityType: "note", EntityId: ref.EntityId}
		err := uow.ContextReferenceRepository().Create(ctx, dup)
		assert.ErrorIs(t, err, apperror.ErrDuplicateReference)
	})

	t.Run("removing a missing reference is not found", func(t *testing.T) {
		err := uow.ContextReferenceRepository().Delete(ctx, active.Id, "file", uuid.New())
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	t.Run("rename keeps the latest touch", func(t *testing.T) {
		stale, err := uow.ConversationRepository().FindOwned(ctx, active.Id, userId)
		require.NoError(t, err)

		later := now.Add(time.Minute)
		require.NoError(t, uow.ConversationRepository().Touch(ctx, active.Id, later))

		stale.Title = "Renamed"
		require.NoError(t, uow.ConversationRepository().Update(ctx, stale))

		got, err := uow.ConversationRepository().FindOwned(ctx, active.Id, userId)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		require.NotNil(t, got.UpdatedAt)
		assert.True(t, later.Equal(got.UpdatedAt.UTC()))
	})

	t.Run("ownership is enforced", func(t *testing.T) {
		found, err := uow.ConversationRepository().FindOwned(ctx, active.Id, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}
