package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type fakeBotAPI struct {
	mu    sync.Mutex
	texts []string
	chats []string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Digest","username":"digest_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.chats = append(f.chats, r.FormValue("chat_id"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func newTestTelegram(t *testing.T) (*Telegram, *fakeBotAPI) {
	t.Helper()
	fake := &fakeBotAPI{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	tg, err := newTelegram("test-token", 42, srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("new telegram: %v", err)
	}
	return tg, fake
}

func TestTelegramNotify(t *testing.T) {
	tg, fake := newTestTelegram(t)
	if tg.Username() != "digest_bot" {
		t.Fatalf("unexpected username %q", tg.Username())
	}

	if err := tg.Notify(context.Background(), "Open tasks for Ana"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.texts) != 1 || fake.texts[0] != "Open tasks for Ana" {
		t.Fatalf("unexpected messages: %v", fake.texts)
	}
	if fake.chats[0] != "42" {
		t.Fatalf("unexpected chat id %q", fake.chats[0])
	}
}

func TestTelegramNotifySplitsLongText(t *testing.T) {
	tg, fake := newTestTelegram(t)

	line := strings.Repeat("x", 99) + "\n"
	text := strings.Repeat(line, 60)
	if err := tg.Notify(context.Background(), text); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(fake.texts) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(fake.texts))
	}
	if got := fake.texts[0] + fake.texts[1]; got != text {
		t.Fatal("chunks do not reassemble the original text")
	}
}

func TestTelegramNotifyHonoursCancelledContext(t *testing.T) {
	tg, fake := newTestTelegram(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := tg.Notify(ctx, "hello"); err == nil {
		t.Fatal("expected context error")
	}
	if len(fake.texts) != 0 {
		t.Fatalf("nothing should be sent, got %v", fake.texts)
	}
}

func TestNewTelegramRequiresChat(t *testing.T) {
	if _, err := newTelegram("token", 0, "http://127.0.0.1/bot%s/%s", http.DefaultClient); err == nil {
		t.Fatal("expected error without chat id")
	}
}

func TestSplitMessage(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{name: "short", text: "abc", limit: 10, want: []string{"abc"}},
		{name: "lines", text: "aaa\nbbb\nccc", limit: 8, want: []string{"aaa\nbbb\n", "ccc"}},
		{name: "long line", text: "abcdefgh\nz", limit: 4, want: []string{"abcd", "efgh", "\nz"}},
		{name: "multibyte", text: "çãéõ\nü", limit: 3, want: []string{"çãé", "õ\nü"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("splitMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitMessageKeepsRunesWhole(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		chunks int
	}{
		{name: "under limit in characters", text: "a" + strings.Repeat("ç", 3000), chunks: 1},
		{name: "over limit", text: "a" + strings.Repeat("ç", 5000), chunks: 2},
		{name: "mixed lines", text: strings.Repeat("documentação pendente\n", 400), chunks: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitMessage(tt.text, maxMessageLen)
			if len(got) != tt.chunks {
				t.Fatalf("expected %d chunks, got %d", tt.chunks, len(got))
			}
			for i, chunk := range got {
				if !utf8.ValidString(chunk) {
					t.Fatalf("chunk %d is not valid UTF-8", i)
				}
				if n := utf8.RuneCountInString(chunk); n > maxMessageLen {
					t.Fatalf("chunk %d has %d characters", i, n)
				}
			}
			if strings.Join(got, "") != tt.text {
				t.Fatal("chunks do not reassemble the text")
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	if err := NewLog(logger).Notify(context.Background(), "digest body"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "digest body" || entry.Level != log.InfoLevel {
		t.Fatalf("unexpected log entry: %+v", entry)
	}
}
