package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is the Bot API limit for a single text message.
const maxMessageLen = 4096

// Telegram posts digests to a single chat through the Bot API.
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot token against the public Bot API.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	return newTelegram(token, chatID, tgbotapi.APIEndpoint, &http.Client{Timeout: 15 * time.Second})
}

func newTelegram(token string, chatID int64, endpoint string, client tgbotapi.HTTPClient) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// Username returns the account name the token belongs to.
func (t *Telegram) Username() string {
	return t.api.Self.UserName
}

// Notify sends text, split into several messages when it exceeds the API limit.
func (t *Telegram) Notify(ctx context.Context, text string) error {
	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(t.chatID, chunk)
		msg.DisableWebPagePreview = true
		if _, err := t.api.Send(msg); err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
	}
	return nil
}

// splitMessage cuts text on line boundaries into chunks of at most limit
// characters. Single lines longer than limit are cut hard on a rune boundary.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var current strings.Builder
	size := 0
	flush := func() {
		chunks = append(chunks, current.String())
		current.Reset()
		size = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		for n > limit {
			if size > 0 {
				flush()
			}
			cut := byteOffset(line, limit)
			chunks = append(chunks, line[:cut])
			line = line[cut:]
			n -= limit
		}
		if size+n > limit {
			flush()
		}
		current.WriteString(line)
		size += n
	}
	if size > 0 {
		flush()
	}
	return chunks
}

// byteOffset returns the byte index of the n-th rune in s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
