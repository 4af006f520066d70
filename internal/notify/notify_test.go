package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mymmrac/telego/telegoapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartlime/spam-restrictor-bot/internal/gateway"
	"github.com/smartlime/spam-restrictor-bot/internal/models"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestFormatRestricted(t *testing.T) {
	msg := Format(LangEnglish, Event{
		Type:        EventRestricted,
		Member:      models.Member{ID: 77, Display: models.Display{Username: "bob", FirstName: "Bob", LastName: "<script>"}},
		GracePeriod: 30 * 24 * time.Hour,
	})

	assert.Contains(t, msg, "New member restricted")
	assert.Contains(t, msg, "<code>77</code>")
	assert.Contains(t, msg, "@bob")
	assert.Contains(t, msg, "Bob &lt;script&gt;")
	assert.Contains(t, msg, "30 days")
}

func TestFormatRussianFallbacks(t *testing.T) {
	msg := Format(LangRussian, Event{Type: EventRejoinBlocked, Member: models.Member{ID: 5}})

	assert.Contains(t, msg, "Повторное вступление заблокировано")
	assert.Contains(t, msg, "отсутствует")
	assert.Contains(t, msg, "пользователь был ранее удален")
}

func TestFormatGatewayErrorUsesDetail(t *testing.T) {
	err := &gateway.Error{
		Kind:   gateway.Permanent,
		Op:     "remove",
		UserID: 9,
		Err:    fmt.Errorf("telego: %w", &telegoapi.Error{ErrorCode: 400, Description: "Bad Request: USER_ID_INVALID"}),
	}
	msg := Format(LangEnglish, Event{Type: EventExpireFailed, Member: models.Member{ID: 9}, Err: err})

	assert.Contains(t, msg, "Failed to remove member")
	assert.Contains(t, msg, "Error: Bad Request: USER_ID_INVALID")
}

func TestGetTranslationFallback(t *testing.T) {
	assert.Equal(t, Translations[LangEnglish]["startup_title"], GetTranslation("de", "startup_title"))
	assert.Equal(t, "no_such_key", GetTranslation(LangRussian, "no_such_key"))
}

func TestEventTypeIsFailure(t *testing.T) {
	assert.True(t, EventExpireFailed.IsFailure())
	assert.True(t, EventStorageFailed.IsFailure())
	assert.False(t, EventExpired.IsFailure())
	assert.False(t, EventSweepIdle.IsFailure())
}

func TestMultiSink(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	MultiSink{a, NopSink{}, b, LogSink{}}.Publish(context.Background(), Event{Type: EventExpired, Err: errors.New("x")})

	assert.Equal(t, 1, a.len())
	assert.Equal(t, 1, b.len())
}

func TestAsyncSinkDeliversBeforeClose(t *testing.T) {
	rec := &recordingSink{}
	async := NewAsyncSink(rec, 16)

	for i := 0; i < 10; i++ {
		async.Publish(context.Background(), Event{Type: EventRestricted, Member: models.Member{ID: int64(i)}})
	}
	async.Close()

	require.Equal(t, 10, rec.len())
	assert.Equal(t, int64(9), rec.events[9].Member.ID)

	// publishing after close is dropped, not a panic
	async.Publish(context.Background(), Event{Type: EventRestricted})
	assert.Equal(t, 10, rec.len())
}

func TestNewTelegramSinkWithoutAdmin(t *testing.T) {
	assert.Nil(t, NewTelegramSink(nil, 0, LangEnglish))
}
