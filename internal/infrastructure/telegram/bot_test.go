package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBot_RequiresToken(t *testing.T) {
	_, err := NewBot("", "fallback", zerolog.Nop())
	assert.Error(t, err)
}

func TestDefaultHandler_RepliesWithFallback(t *testing.T) {
	var (
		mu     sync.Mutex
		bodies []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			bodies = append(bodies, string(body))
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":1700000000,"chat":{"id":5,"type":"private"}}}`))
	}))
	defer server.Close()

	b, err := NewBot("123:token", "use /show", zerolog.Nop(),
		tgbot.WithServerURL(server.URL),
		tgbot.WithSkipGetMe(),
	)
	require.NoError(t, err)

	handler := defaultHandler("use /show", zerolog.Nop())

	// updates without text are ignored
	handler(context.Background(), b.Raw(), &models.Update{})
	handler(context.Background(), b.Raw(), &models.Update{Message: &models.Message{Chat: models.Chat{ID: 5}}})

	handler(context.Background(), b.Raw(), &models.Update{Message: &models.Message{Chat: models.Chat{ID: 5}, Text: "hello"}})

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "use /show")
}
