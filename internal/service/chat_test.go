package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chatapp/backend/internal/queue"
	"chatapp/backend/internal/storage"
	"chatapp/backend/internal/storage/memory"
)

// fakePublisher 记录发布的载荷，可注入失败。
type fakePublisher struct {
	published []queue.Payload
	err       error
}

func (f *fakePublisher) Publish(ctx context.Context, payload queue.Payload) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

func newChatService(t *testing.T) (*ChatService, *fakePublisher) {
	t.Helper()
	publisher := &fakePublisher{}
	return NewChatService(memory.NewStore(), publisher, zap.NewNop()), publisher
}

func TestSend_PersistsAndPublishes(t *testing.T) {
	svc, publisher := newChatService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "hello"))

	require.Len(t, publisher.published, 1)
	payload := publisher.published[0]
	assert.Equal(t, "a@x.com", payload.Sender)
	assert.Equal(t, "b@x.com", payload.Receiver)
	assert.Equal(t, "hello", payload.Body)
	assert.False(t, payload.Timestamp.IsZero())

	views, err := svc.ListMessages(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "hello", views[0].Body)
}

func TestSend_EnqueueFailureIsNotFatal(t *testing.T) {
	svc, publisher := newChatService(t)
	publisher.err = queue.ErrQueueUnavailable
	ctx := context.Background()

	// broker 不可达时 send 依然成功，消息已经落库
	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "hello"))

	views, err := svc.ListMessages(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
}

func TestSend_EmptyBodyFails(t *testing.T) {
	svc, publisher := newChatService(t)

	err := svc.Send(context.Background(), "a@x.com", "b@x.com", "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrEmptyBody)
	assert.Empty(t, publisher.published)
}

func TestListMessages_OrderedAscending(t *testing.T) {
	svc, _ := newChatService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "first"))
	require.NoError(t, svc.Send(ctx, "b@x.com", "a@x.com", "second"))
	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "third"))

	views, err := svc.ListMessages(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, views, 3)
	assert.Equal(t, "first", views[0].Body)
	assert.Equal(t, "second", views[1].Body)
	assert.Equal(t, "third", views[2].Body)

	// 两个方向的消息都在，视角字段与方向一致
	assert.Equal(t, "a@x.com", views[0].From)
	assert.Equal(t, "b@x.com", views[1].From)
}

func TestListMessages_EmptyResult(t *testing.T) {
	svc, _ := newChatService(t)

	views, err := svc.ListMessages(context.Background(), "a@x.com", "b@x.com")
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestMarkRead_Flow(t *testing.T) {
	svc, publisher := newChatService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "hello"))
	require.Len(t, publisher.published, 1)

	views, err := svc.ListMessages(ctx, "b@x.com", "a@x.com")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.False(t, views[0].Read)

	require.NoError(t, svc.MarkRead(ctx, views[0].ID, "b@x.com"))
	// 幂等：重复标记同样成功
	require.NoError(t, svc.MarkRead(ctx, views[0].ID, "b@x.com"))

	views, err = svc.ListMessages(ctx, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.True(t, views[0].Read)
}

func TestMarkRead_NotReceiver(t *testing.T) {
	svc, _ := newChatService(t)
	ctx := context.Background()

	require.NoError(t, svc.Send(ctx, "a@x.com", "b@x.com", "hello"))
	views, err := svc.ListMessages(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)

	// 发送者不能替接收者标记已读，与不存在的消息不可区分
	err = svc.MarkRead(ctx, views[0].ID, "a@x.com")
	assert.ErrorIs(t, err, storage.ErrMessageNotFound)
}

func TestMarkRead_InvalidID(t *testing.T) {
	svc, _ := newChatService(t)

	err := svc.MarkRead(context.Background(), "not-a-uuid", "b@x.com")
	assert.ErrorIs(t, err, storage.ErrInvalidMessageID)
}

func TestMarkRead_WrapsNoOtherErrors(t *testing.T) {
	svc, _ := newChatService(t)

	err := svc.MarkRead(context.Background(), "00000000-0000-0000-0000-000000000000", "b@x.com")
	assert.True(t, errors.Is(err, storage.ErrMessageNotFound))
}
