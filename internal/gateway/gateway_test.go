package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mymmrac/telego"
	"github.com/mymmrac/telego/telegoapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "1234567890:AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

func TestClassify(t *testing.T) {
	assert.Equal(t, Transient, Classify(fmt.Errorf("api: %w", &telegoapi.Error{ErrorCode: 429, Description: "Too Many Requests"})))
	assert.Equal(t, Transient, Classify(&telegoapi.Error{ErrorCode: 502}))
	assert.Equal(t, Permanent, Classify(&telegoapi.Error{ErrorCode: 403, Description: "Forbidden"}))
	assert.Equal(t, Permanent, Classify(&telegoapi.Error{ErrorCode: 400}))
	assert.Equal(t, Transient, Classify(context.DeadlineExceeded))
	assert.Equal(t, Transient, Classify(errors.New("connection reset")))
}

func TestErrorDetail(t *testing.T) {
	err := newError("remove", 7, fmt.Errorf("telego: banChatMember: %w", &telegoapi.Error{ErrorCode: 400, Description: "Bad Request: user not found"}))

	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, Permanent, gwErr.Kind)
	assert.Equal(t, "Bad Request: user not found", gwErr.Detail())
	assert.Contains(t, gwErr.Error(), "remove user 7")
}

func TestDeniedPermissionsDeniesEverything(t *testing.T) {
	raw, err := json.Marshal(DeniedPermissions())
	require.NoError(t, err)

	var flags map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &flags))
	require.NotEmpty(t, flags)
	for name, value := range flags {
		if !strings.HasPrefix(name, "can_") {
			continue
		}
		assert.Equal(t, false, value, "%s must be denied", name)
	}
	assert.Contains(t, flags, "can_send_messages")
	assert.Contains(t, flags, "can_send_polls")
	assert.Contains(t, flags, "can_add_web_page_previews")
}

type apiCall struct {
	method string
	body   map[string]interface{}
}

func newTestGateway(t *testing.T, reply func(method string) string) (*TelegramGateway, func() []apiCall) {
	t.Helper()

	var (
		mu    sync.Mutex
		calls []apiCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		body := map[string]interface{}{}
		if data, err := io.ReadAll(r.Body); err == nil && len(data) > 0 {
			_ = json.Unmarshal(data, &body)
		}
		mu.Lock()
		calls = append(calls, apiCall{method: method, body: body})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply(method))
	}))
	t.Cleanup(srv.Close)

	bot, err := telego.NewBot(testToken, telego.WithAPIServer(srv.URL), telego.WithDiscardLogger())
	require.NoError(t, err)

	return NewTelegramGateway(bot, -100500), func() []apiCall {
		mu.Lock()
		defer mu.Unlock()
		return append([]apiCall(nil), calls...)
	}
}

func TestTelegramGatewayCommands(t *testing.T) {
	gw, calls := newTestGateway(t, func(string) string { return `{"ok":true,"result":true}` })
	ctx := context.Background()

	require.NoError(t, gw.Restrict(ctx, 11))
	require.NoError(t, gw.Remove(ctx, 11))
	require.NoError(t, gw.Unexclude(ctx, 11))

	got := calls()
	require.Len(t, got, 3)
	assert.Equal(t, "restrictChatMember", got[0].method)
	assert.Equal(t, "banChatMember", got[1].method)
	assert.Equal(t, "unbanChatMember", got[2].method)

	permissions, ok := got[0].body["permissions"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, permissions["can_send_messages"])
	assert.Equal(t, true, got[2].body["only_if_banned"])
	assert.EqualValues(t, -100500, got[1].body["chat_id"])
}

func TestTelegramGatewayFailure(t *testing.T) {
	gw, _ := newTestGateway(t, func(string) string {
		return `{"ok":false,"error_code":403,"description":"Forbidden: not enough rights"}`
	})

	err := gw.Remove(context.Background(), 12)
	var gwErr *Error
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, "remove", gwErr.Op)
	assert.Equal(t, Permanent, gwErr.Kind)
	assert.Equal(t, "Forbidden: not enough rights", gwErr.Detail())
}
