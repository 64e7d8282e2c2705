package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"edumaster-order-bot/internal/application"
	"edumaster-order-bot/internal/config"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/infra/logging"
	"edumaster-order-bot/internal/infra/metrics"
	red "edumaster-order-bot/internal/infra/redis"
)

const (
	messageRateLimit  = 20
	callbackRateLimit = 30
	rateWindow        = time.Minute
)

// Bot polls Telegram updates and delegates them to the BotFacade. It also
// implements the ChatTransport port, so the usecases send through the same
// client that receives.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         *config.BotConfig
	rateLimiter *red.RateLimiter
	log         *zerolog.Logger

	workers       int
	cancelPolling context.CancelFunc
}

var _ adapter.ChatTransport = (*Bot)(nil)

func NewBot(cfg *config.BotConfig, rateLimiter *red.RateLimiter, logger *zerolog.Logger) (*Bot, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Bot{
		api:         api,
		cfg:         cfg,
		rateLimiter: rateLimiter,
		log:         logger,
		workers:     workers,
	}, nil
}

// StartPolling consumes the long-poll update stream through a bounded worker
// pool. Blocks until ctx is cancelled.
func (b *Bot) StartPolling(ctx context.Context, facade *application.BotFacade) error {
	if facade == nil {
		return errors.New("bot facade is nil")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	b.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					b.handleUpdate(ctx, facade, up)
				}
			}
		}(i)
	}

	b.log.Info().Int("workers", b.workers).Str("account", b.api.Self.UserName).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (b *Bot) StopPolling() {
	if b.cancelPolling != nil {
		b.cancelPolling()
	}
}

// SendMessage implements ChatTransport. All user-facing text carries Markdown
// markup produced by the composer.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// SendButtons implements ChatTransport with an inline keyboard attached.
func (b *Bot) SendButtons(ctx context.Context, chatID int64, text string, rows [][]adapter.InlineButton) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = buildKeyboard(rows)
	_, err := b.api.Send(msg)
	return err
}

// ForwardDocument implements ChatTransport by re-sending a stored file by its
// Telegram file ID. No bytes transit through this process.
func (b *Bot) ForwardDocument(ctx context.Context, chatID int64, fileRef, caption string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileRef))
	doc.Caption = caption
	_, err := b.api.Send(doc)
	return err
}

func buildKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := strings.TrimSpace(btn.Text)
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func (b *Bot) handleUpdate(ctx context.Context, facade *application.BotFacade, update tgbotapi.Update) {
	ctx = logging.WithTraceID(ctx, uuid.NewString())

	switch {
	case update.CallbackQuery != nil:
		metrics.IncTelegramUpdate("callback")
		b.handleCallback(ctx, facade, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, facade, update.Message)
	}
}

func (b *Bot) handleCallback(ctx context.Context, facade *application.BotFacade, query *tgbotapi.CallbackQuery) {
	if query.From == nil {
		return
	}
	user := adapter.ChatUser{ID: query.From.ID, Username: query.From.UserName}
	ctx = logging.WithTgID(ctx, user.ID)
	log := logging.With(ctx, b.log)

	// Stop the client spinner right away, before any handler work.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Debug().Err(err).Msg("answer callback failed")
	}

	if !b.allow(ctx, user.ID, "callback", callbackRateLimit) {
		b.deliver(ctx, user.ID, facade.Comp.RateLimited(), nil)
		return
	}

	reply := facade.HandleAction(ctx, user, strings.TrimSpace(query.Data))
	if reply.Empty() {
		return
	}
	b.deliver(ctx, user.ID, reply, query.Message)
}

func (b *Bot) handleMessage(ctx context.Context, facade *application.BotFacade, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	user := adapter.ChatUser{ID: msg.From.ID, Username: msg.From.UserName}
	ctx = logging.WithTgID(ctx, user.ID)

	if msg.IsCommand() {
		metrics.IncTelegramUpdate("command")
		b.handleCommand(ctx, facade, user, msg)
		return
	}

	if !b.allow(ctx, user.ID, "message", messageRateLimit) {
		b.deliver(ctx, user.ID, facade.Comp.RateLimited(), nil)
		return
	}

	if file, ok := extractFile(msg); ok {
		metrics.IncTelegramUpdate("file")
		b.deliver(ctx, user.ID, facade.HandleFile(ctx, user, file), nil)
		return
	}

	if msg.Text == "" {
		return
	}
	metrics.IncTelegramUpdate("text")
	b.deliver(ctx, user.ID, facade.HandleText(ctx, user, msg.Text), nil)
}

func (b *Bot) handleCommand(ctx context.Context, facade *application.BotFacade, user adapter.ChatUser, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.deliver(ctx, user.ID, facade.HandleStart(ctx, user), nil)
	case "menu":
		b.deliver(ctx, user.ID, facade.HandleMenu(ctx, user), nil)
	case "reply":
		feedback := facade.HandleOperatorReply(ctx, user.ID, msg.CommandArguments())
		if feedback == "" {
			return
		}
		if err := b.SendMessage(ctx, user.ID, feedback); err != nil {
			metrics.IncSendFailure("operator")
			logging.With(ctx, b.log).Error().Err(err).Msg("operator feedback send failed")
		}
	default:
		// Unknown commands reset to the menu, same as stray navigation.
		b.deliver(ctx, user.ID, facade.HandleMenu(ctx, user), nil)
	}
}

// extractFile maps a Telegram attachment to the transport-neutral FileInput.
// Photos arrive as a size ladder; the last entry is the full resolution one.
func extractFile(msg *tgbotapi.Message) (adapter.FileInput, bool) {
	switch {
	case msg.Document != nil:
		return adapter.FileInput{
			Kind:      adapter.FileKindDocument,
			Ref:       msg.Document.FileID,
			Name:      msg.Document.FileName,
			SizeBytes: int64(msg.Document.FileSize),
		}, true
	case len(msg.Photo) > 0:
		ph := msg.Photo[len(msg.Photo)-1]
		return adapter.FileInput{
			Kind:      adapter.FileKindImage,
			Ref:       ph.FileID,
			SizeBytes: int64(ph.FileSize),
		}, true
	case msg.Video != nil:
		return adapter.FileInput{Kind: adapter.FileKindOther, Ref: msg.Video.FileID}, true
	case msg.Audio != nil:
		return adapter.FileInput{Kind: adapter.FileKindOther, Ref: msg.Audio.FileID}, true
	case msg.Voice != nil:
		return adapter.FileInput{Kind: adapter.FileKindOther, Ref: msg.Voice.FileID}, true
	case msg.Sticker != nil:
		return adapter.FileInput{Kind: adapter.FileKindOther, Ref: msg.Sticker.FileID}, true
	}
	return adapter.FileInput{}, false
}

// allow applies the per-user per-kind rate limit. Fail-open when Redis is
// absent or erroring, so throttling never takes the bot down.
func (b *Bot) allow(ctx context.Context, userID int64, kind string, limit int) bool {
	if b.rateLimiter == nil {
		return true
	}
	allowed, err := b.rateLimiter.Allow(ctx, red.UserActionKey(userID, kind), limit, rateWindow)
	if err != nil {
		logging.With(ctx, b.log).Warn().Err(err).Msg("rate limiter check failed")
		return true
	}
	if !allowed {
		metrics.IncRateLimitTriggered()
	}
	return allowed
}

// deliver pushes a Reply to the chat. For callback-originated replies it
// edits the bubble the button lives on; when the edit is rejected (message
// too old, content identical) it falls back to a fresh send.
func (b *Bot) deliver(ctx context.Context, chatID int64, reply adapter.Reply, origin *tgbotapi.Message) {
	if reply.Empty() {
		return
	}
	log := logging.With(ctx, b.log)

	if origin != nil {
		edit := tgbotapi.NewEditMessageText(chatID, origin.MessageID, reply.Text)
		edit.ParseMode = tgbotapi.ModeMarkdown
		if len(reply.Rows) > 0 {
			kb := buildKeyboard(reply.Rows)
			edit.ReplyMarkup = &kb
		}
		_, err := b.api.Send(edit)
		if err == nil {
			return
		}
		log.Debug().Err(err).Msg("edit failed, sending fresh message")
	}

	var err error
	if len(reply.Rows) > 0 {
		err = b.SendButtons(ctx, chatID, reply.Text, reply.Rows)
	} else {
		err = b.SendMessage(ctx, chatID, reply.Text)
	}
	if err != nil {
		metrics.IncSendFailure("user")
		log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}
