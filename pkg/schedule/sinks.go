package schedule

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/matzehuels/collagefm/pkg/store"
)

// NewTelegramBot connects to the Bot API. serverURL overrides the API
// endpoint and may be empty.
func NewTelegramBot(token, serverURL string) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: token is required")
	}
	var opts []bot.Option
	if serverURL != "" {
		opts = append(opts, bot.WithServerURL(serverURL))
	}
	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return b, nil
}

// TelegramSink sends collages as photos to one chat.
type TelegramSink struct {
	bot    *bot.Bot
	chatID int64
}

// NewTelegramSink returns a sink posting to chatID through b.
func NewTelegramSink(b *bot.Bot, chatID int64) *TelegramSink {
	return &TelegramSink{bot: b, chatID: chatID}
}

func (t *TelegramSink) Name() string { return fmt.Sprintf("telegram:%d", t.chatID) }

func (t *TelegramSink) Deliver(ctx context.Context, d Delivery) error {
	_, err := t.bot.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:  t.chatID,
		Photo:   &models.InputFileUpload{Filename: d.Filename, Data: bytes.NewReader(d.Data)},
		Caption: d.Caption,
	})
	if err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

// DirSink writes collages into a directory.
type DirSink struct {
	Dir string
}

func (s DirSink) Name() string { return "dir:" + s.Dir }

func (s DirSink) Deliver(ctx context.Context, d Delivery) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(s.Dir, filepath.Base(d.Filename))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, d.Data, 0o644); err != nil {
		return fmt.Errorf("write collage: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write collage: %w", err)
	}
	return nil
}

// StoreSink keeps each collage as a record.
type StoreSink struct {
	Store store.Store
	TTL   time.Duration // zero means store.DefaultTTL
}

func (s StoreSink) Name() string { return "store" }

func (s StoreSink) Deliver(ctx context.Context, d Delivery) error {
	ttl := store.DefaultTTL
	if s.TTL > 0 {
		ttl = s.TTL
	}
	rec := store.NewRecord(d.Params, d.Filename, d.ContentType, d.Data, ttl)
	rec.Dropped, rec.Failed = d.Dropped, d.Failed
	return s.Store.Put(ctx, rec)
}
