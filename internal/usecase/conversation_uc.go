package usecase

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"edumaster-order-bot/internal/domain"
	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/domain/ports/repository"
	"edumaster-order-bot/internal/infra/metrics"
)

// ConversationUseCase is the session-scoped state machine. Each method
// interprets one inbound event against the user's current step, mutates the
// session through the store, and returns the content to send back. It never
// returns an error: every failure mode maps to a recovery screen, so the
// conversation always keeps an escape path back to the menu.
type ConversationUseCase interface {
	Start(ctx context.Context, user adapter.ChatUser) adapter.Reply
	HandleAction(ctx context.Context, user adapter.ChatUser, data string) adapter.Reply
	HandleText(ctx context.Context, user adapter.ChatUser, text string) adapter.Reply
	HandleFile(ctx context.Context, user adapter.ChatUser, file adapter.FileInput) adapter.Reply
}

var _ ConversationUseCase = (*conversationUC)(nil)

type conversationUC struct {
	store    repository.SessionStore
	pricing  PricingUseCase
	notifier NotifierUseCase
	comp     *Composer
	cat      *model.Catalog

	maxFileBytes int64
	log          *zerolog.Logger
}

func NewConversationUseCase(
	store repository.SessionStore,
	pricing PricingUseCase,
	notifier NotifierUseCase,
	comp *Composer,
	cat *model.Catalog,
	maxFileBytes int64,
	logger *zerolog.Logger,
) *conversationUC {
	return &conversationUC{
		store:        store,
		pricing:      pricing,
		notifier:     notifier,
		comp:         comp,
		cat:          cat,
		maxFileBytes: maxFileBytes,
		log:          logger,
	}
}

func (c *conversationUC) Start(_ context.Context, _ adapter.ChatUser) adapter.Reply {
	return c.comp.Welcome()
}

func (c *conversationUC) HandleAction(ctx context.Context, user adapter.ChatUser, data string) adapter.Reply {
	act := parseAction(data)
	switch act.kind {
	case actionMenu, actionBack:
		// Back always means restart, not undo-one-step.
		c.store.Clear(ctx, user.ID)
		return c.comp.MainMenu()

	case actionNewOrder:
		c.store.Create(ctx, user.ID, model.StepOrderSubject)
		return c.comp.SubjectPrompt()

	case actionPricing:
		return c.comp.PricingGrid()

	case actionInfo:
		return c.comp.Info()

	case actionSupport:
		// Entering support without a session is a fresh flow start.
		c.store.Update(ctx, user.ID, model.StepSupport, nil)
		return c.comp.SupportPrompt()

	case actionLevel:
		return c.selectLevel(ctx, user, act.arg)

	case actionDeadline:
		return c.selectDeadline(ctx, user, act.arg)

	case actionSummary, actionSkipFiles:
		return c.showSummary(ctx, user)

	case actionPayTransfer:
		return c.finishOrder(ctx, user, "transfer")

	case actionPayCrypto:
		return c.comp.CryptoPick()

	case actionCrypto:
		if _, ok := c.cat.CryptoByCode(act.arg); !ok {
			c.log.Debug().Str("code", act.arg).Msg("unknown crypto code ignored")
			return adapter.Reply{}
		}
		return c.finishOrder(ctx, user, act.arg)

	case actionPaymentDone:
		return c.comp.PaymentDone()

	default:
		c.log.Warn().Str("data", data).Err(domain.ErrUnknownAction).Msg("unroutable action")
		metrics.IncValidationRejected("unknown_action")
		return c.comp.TransientError()
	}
}

func (c *conversationUC) selectLevel(ctx context.Context, user adapter.ChatUser, key string) adapter.Reply {
	level, ok := c.cat.Level(key)
	if !ok {
		c.log.Debug().Str("key", key).Msg("unknown level key ignored")
		return adapter.Reply{}
	}
	c.store.Update(ctx, user.ID, model.StepOrderPages, &model.OrderPatch{Level: &key})
	return c.comp.PagesPrompt(level)
}

func (c *conversationUC) selectDeadline(ctx context.Context, user adapter.ChatUser, key string) adapter.Reply {
	if _, ok := c.cat.Deadline(key); !ok {
		c.log.Debug().Str("key", key).Msg("unknown deadline key ignored")
		return adapter.Reply{}
	}
	sess, ok := c.store.Get(ctx, user.ID)
	if !ok {
		return c.comp.SessionExpired()
	}

	// Price is locked here, at selection time. Later steps never recompute it.
	pages := sess.Data.Pages
	if pages < model.MinPages {
		pages = model.MinPages
	}
	price := c.pricing.Compute(sess.Data.Level, key, pages)
	c.store.Update(ctx, user.ID, model.StepOrderInstructions, &model.OrderPatch{
		Deadline:   &key,
		FinalPrice: &price,
	})
	return c.comp.InstructionsPrompt()
}

func (c *conversationUC) showSummary(ctx context.Context, user adapter.ChatUser) adapter.Reply {
	sess, ok := c.store.Get(ctx, user.ID)
	if !ok {
		return c.comp.SessionExpired()
	}
	return c.comp.Summary(sess)
}

// finishOrder renders the payment instructions, notifies the operator and
// closes the session. method is "transfer" or a crypto code.
func (c *conversationUC) finishOrder(ctx context.Context, user adapter.ChatUser, method string) adapter.Reply {
	sess, ok := c.store.Get(ctx, user.ID)
	if !ok {
		return c.comp.SessionExpired()
	}

	orderRef := NewOrderRef()

	var reply adapter.Reply
	var methodLabel string
	if method == "transfer" {
		reply = c.comp.TransferInstructions(orderRef, sess.Data.FinalPrice)
		methodLabel = "🏦 Virement bancaire"
	} else {
		opt, ok := c.cat.CryptoByCode(method)
		if !ok {
			return c.comp.TransientError()
		}
		reply = c.comp.CryptoInstructions(orderRef, sess.Data.FinalPrice, opt)
		methodLabel = fmt.Sprintf("₿ Crypto (%s)", method)
	}

	// Operator notification and the user's confirmation are independent
	// outcomes: a failed notify never blocks the reply below.
	c.notifier.OrderPlaced(ctx, user, sess, orderRef, methodLabel)
	c.store.Clear(ctx, user.ID)
	metrics.IncOrderPlaced(method)
	c.log.Info().Str("order_ref", orderRef).Str("method", method).Msg("order placed")
	return reply
}

func (c *conversationUC) HandleText(ctx context.Context, user adapter.ChatUser, text string) adapter.Reply {
	sess, ok := c.store.Get(ctx, user.ID)
	if !ok {
		return c.comp.LostNavigation()
	}

	switch sess.Step {
	case model.StepOrderSubject:
		c.store.Update(ctx, user.ID, model.StepOrderLevel, &model.OrderPatch{Subject: &text})
		return c.comp.LevelPrompt(text)

	case model.StepOrderPages:
		pages, err := parsePages(text)
		if err != nil {
			metrics.IncValidationRejected("pages")
			return c.comp.InvalidPages()
		}
		c.store.Update(ctx, user.ID, model.StepOrderDeadline, &model.OrderPatch{Pages: &pages})
		return c.comp.DeadlinePrompt(pages)

	case model.StepOrderInstructions:
		c.store.Update(ctx, user.ID, model.StepOrderFiles, &model.OrderPatch{Instructions: &text})
		return c.comp.FilesPrompt(len(sess.Files))

	case model.StepSupport:
		threadRef := SupportThreadRef(user.ID, time.Now())
		c.notifier.RelaySupport(ctx, user, threadRef, text)
		c.store.Clear(ctx, user.ID)
		metrics.IncSupportMessage()
		c.log.Info().Str("thread_ref", threadRef).Msg("support message relayed")
		return c.comp.SupportSent(threadRef)

	default:
		// Steps waiting on a button press ignore stray text.
		c.log.Debug().Str("step", string(sess.Step)).Msg("text ignored at button step")
		return adapter.Reply{}
	}
}

func (c *conversationUC) HandleFile(ctx context.Context, user adapter.ChatUser, file adapter.FileInput) adapter.Reply {
	sess, ok := c.store.Get(ctx, user.ID)
	if !ok || sess.Step != model.StepOrderFiles {
		metrics.IncValidationRejected("unexpected_file")
		return c.comp.FileNotExpected()
	}

	switch err := validateFile(file, c.maxFileBytes); {
	case errors.Is(err, domain.ErrUnsupportedAttachment):
		metrics.IncValidationRejected("file_kind")
		return c.comp.UnsupportedFile()
	case errors.Is(err, domain.ErrFileTooLarge):
		metrics.IncValidationRejected("file_size")
		return c.comp.FileTooLarge(c.maxFileBytes)
	}

	name := file.Name
	if name == "" {
		if file.Kind == adapter.FileKindImage {
			name = fmt.Sprintf("image_%d.jpg", len(sess.Files)+1)
		} else {
			name = "document"
		}
	}

	count, err := c.store.AddFile(ctx, user.ID, model.Attachment{
		FileRef:    file.Ref,
		FileName:   name,
		SizeBytes:  file.SizeBytes,
		UploadedAt: time.Now(),
	})
	switch {
	case err == nil:
		return c.comp.FileAdded(name, file.SizeBytes, count)
	case errors.Is(err, domain.ErrTooManyFiles):
		metrics.IncValidationRejected("file_cap")
		return c.comp.FileLimitReached()
	default:
		metrics.IncValidationRejected("unexpected_file")
		return c.comp.FileNotExpected()
	}
}

// parsePages validates the free-text page count against the allowed range.
func parsePages(text string) (int, error) {
	pages, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || pages < model.MinPages || pages > model.MaxPages {
		return 0, domain.ErrInvalidPages
	}
	return pages, nil
}

func validateFile(file adapter.FileInput, maxBytes int64) error {
	if file.Kind != adapter.FileKindDocument && file.Kind != adapter.FileKindImage {
		return domain.ErrUnsupportedAttachment
	}
	if file.SizeBytes > maxBytes {
		return domain.ErrFileTooLarge
	}
	return nil
}

// NewOrderRef generates the display-only order reference shown to the user
// and the operator. Fresh per use, not an idempotency key.
func NewOrderRef() string {
	id := uuid.New()
	return "EDU" + strings.ToUpper(hex.EncodeToString(id[:4]))
}

// SupportThreadRef derives the display-only support thread reference,
// stable per user per calendar day.
func SupportThreadRef(userID int64, day time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%d_%s", userID, day.Format("2006-01-02"))))
	return hex.EncodeToString(sum[:])[:8]
}
