package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatapp/backend/internal/domain"
	"chatapp/backend/internal/storage"
)

func TestStore_SaveMessage_AssignsIDAndTimestamp(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	msg := &domain.Message{Sender: "a@x.com", Receiver: "b@x.com", Body: "hi"}
	require.NoError(t, store.SaveMessage(ctx, msg))

	assert.NotEmpty(t, msg.ID)
	_, err := uuid.Parse(msg.ID)
	assert.NoError(t, err)
	assert.False(t, msg.CreatedAt.IsZero())
	assert.False(t, msg.Read)
}

func TestStore_SaveMessage_EmptyBody(t *testing.T) {
	store := NewStore()

	err := store.SaveMessage(context.Background(), &domain.Message{
		Sender:   "a@x.com",
		Receiver: "b@x.com",
		Body:     "   ",
	})
	assert.ErrorIs(t, err, storage.ErrEmptyBody)
}

func TestStore_ListBetween_PairBothDirections(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now().UTC()
	seed := []domain.Message{
		{Sender: "a@x.com", Receiver: "b@x.com", Body: "1", CreatedAt: base},
		{Sender: "b@x.com", Receiver: "a@x.com", Body: "2", CreatedAt: base.Add(time.Second)},
		{Sender: "a@x.com", Receiver: "c@x.com", Body: "3", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		require.NoError(t, store.SaveMessage(ctx, &seed[i]))
	}

	msgs, err := store.ListBetween(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "1", msgs[0].Body)
	assert.Equal(t, "2", msgs[1].Body)
}

func TestStore_ListBetween_NoPeerReturnsAll(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now().UTC()
	seed := []domain.Message{
		{Sender: "a@x.com", Receiver: "b@x.com", Body: "sent", CreatedAt: base},
		{Sender: "c@x.com", Receiver: "a@x.com", Body: "received", CreatedAt: base.Add(time.Second)},
		{Sender: "b@x.com", Receiver: "c@x.com", Body: "unrelated", CreatedAt: base.Add(2 * time.Second)},
	}
	for i := range seed {
		require.NoError(t, store.SaveMessage(ctx, &seed[i]))
	}

	msgs, err := store.ListBetween(ctx, "a@x.com", "")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "sent", msgs[0].Body)
	assert.Equal(t, "received", msgs[1].Body)
}

func TestStore_ListBetween_AscendingOrder(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Now().UTC()
	// 故意乱序插入
	for _, offset := range []time.Duration{2 * time.Second, 0, time.Second} {
		require.NoError(t, store.SaveMessage(ctx, &domain.Message{
			Sender:    "a@x.com",
			Receiver:  "b@x.com",
			Body:      offset.String(),
			CreatedAt: base.Add(offset),
		}))
	}

	msgs, err := store.ListBetween(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i := 1; i < len(msgs); i++ {
		assert.False(t, msgs[i].CreatedAt.Before(msgs[i-1].CreatedAt))
	}
}

func TestStore_MarkMessageRead_Idempotent(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	msg := &domain.Message{Sender: "a@x.com", Receiver: "b@x.com", Body: "hi"}
	require.NoError(t, store.SaveMessage(ctx, msg))

	require.NoError(t, store.MarkMessageRead(ctx, msg.ID, "b@x.com"))
	require.NoError(t, store.MarkMessageRead(ctx, msg.ID, "b@x.com"))

	msgs, err := store.ListBetween(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestStore_MarkMessageRead_NonReceiver(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	msg := &domain.Message{Sender: "a@x.com", Receiver: "b@x.com", Body: "hi"}
	require.NoError(t, store.SaveMessage(ctx, msg))

	// 发送者不是接收者，得到与“不存在”相同的合并错误
	err := store.MarkMessageRead(ctx, msg.ID, "a@x.com")
	assert.ErrorIs(t, err, storage.ErrMessageNotFound)

	// 完全不存在的 ID 也是同一个错误
	err = store.MarkMessageRead(ctx, uuid.NewString(), "b@x.com")
	assert.ErrorIs(t, err, storage.ErrMessageNotFound)
}

func TestStore_MarkMessageRead_InvalidID(t *testing.T) {
	store := NewStore()

	err := store.MarkMessageRead(context.Background(), "not-a-uuid", "b@x.com")
	assert.ErrorIs(t, err, storage.ErrInvalidMessageID)
}

func TestStore_Users(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Username: "alice", PasswordHash: "hash"}
	require.NoError(t, store.CreateUser(ctx, user))
	assert.NotEmpty(t, user.ID)

	err := store.CreateUser(ctx, &domain.User{Email: "a@x.com", Username: "clone"})
	assert.ErrorIs(t, err, storage.ErrEmailExists)

	found, err := store.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = store.GetUserByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}
