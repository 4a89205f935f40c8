package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "coinguard/pkg/domain"
)

func entryFor(user id.UserID, outcome Outcome) Entry {
	return Entry{
		ID:        uuid.New(),
		UserID:    user,
		Action:    "scroll_page",
		Outcome:   outcome,
		Timestamp: time.Now(),
	}
}

func TestPublisher_SyncEmit(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	user := id.NewUserID()

	require.NoError(t, pub.Emit(context.Background(), entryFor(user, OutcomeAccepted)))

	list, err := store.ListByUser(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, OutcomeAccepted, list[0].Outcome)
}

func TestPublisher_SyncEmitPropagatesError(t *testing.T) {
	pub := NewPublisher(&failingStore{})
	err := pub.Emit(context.Background(), entryFor(id.NewUserID(), OutcomeRejected))
	assert.Error(t, err)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))
	user := id.NewUserID()

	for i := 0; i < 5; i++ {
		require.NoError(t, pub.Emit(context.Background(), entryFor(user, OutcomeRejected)))
	}
	pub.Close()

	list, err := store.ListByUser(context.Background(), user)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestPublisher_AsyncFullBufferDropsWithoutBlocking(t *testing.T) {
	blocker := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(blocker, WithAsyncBuffer(1))
	user := id.NewUserID()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = pub.Emit(context.Background(), entryFor(user, OutcomeAccepted))
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("emit blocked on a full buffer")
	}
	close(blocker.release)
	pub.Close()
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	user := id.NewUserID()

	entry := entryFor(user, OutcomeAccepted)
	entry.Timestamp = time.Time{}
	require.NoError(t, pub.Emit(context.Background(), entry))

	list, err := store.ListByUser(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Timestamp.IsZero())
}

func TestParseUserAgent(t *testing.T) {
	hint := ParseUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	assert.Equal(t, "Chrome", hint.Browser)
	assert.False(t, hint.Bot)

	bot := ParseUserAgent("Googlebot/2.1 (+http://www.google.com/bot.html)")
	assert.True(t, bot.Bot)

	assert.Equal(t, DeviceHint{}, ParseUserAgent(""))
}

func TestDeviceHint_Annotate(t *testing.T) {
	entry := entryFor(id.NewUserID(), OutcomeAccepted)
	DeviceHint{Browser: "Firefox", OS: "Linux x86_64", Bot: false}.Annotate(&entry)
	assert.Equal(t, "Firefox", entry.Metadata["ua_browser"])
	_, hasBot := entry.Metadata["ua_bot"]
	assert.False(t, hasBot)

	empty := entryFor(id.NewUserID(), OutcomeAccepted)
	DeviceHint{}.Annotate(&empty)
	assert.Nil(t, empty.Metadata)
}

type failingStore struct{}

func (f *failingStore) Append(context.Context, Entry) error { return errors.New("sink down") }
func (f *failingStore) ListByUser(context.Context, id.UserID) ([]Entry, error) {
	return nil, errors.New("sink down")
}

// blockingStore parks every Append until release is closed.
type blockingStore struct {
	release chan struct{}
}

func (b *blockingStore) Append(context.Context, Entry) error {
	<-b.release
	return nil
}

func (b *blockingStore) ListByUser(context.Context, id.UserID) ([]Entry, error) {
	return nil, nil
}
