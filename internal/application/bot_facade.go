package application

import (
	"context"
	"strconv"
	"strings"

	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/usecase"
)

// BotFacade composes usecases into the handful of entry points the Telegram
// adapter calls. The adapter stays dumb: it maps updates to these methods and
// forwards the returned Reply to the chat.
type BotFacade struct {
	ConvUC     usecase.ConversationUseCase
	NotifUC    usecase.NotifierUseCase
	Comp       *usecase.Composer
	OperatorID int64
}

func NewBotFacade(
	convUC usecase.ConversationUseCase,
	notifUC usecase.NotifierUseCase,
	comp *usecase.Composer,
	operatorID int64,
) *BotFacade {
	return &BotFacade{
		ConvUC:     convUC,
		NotifUC:    notifUC,
		Comp:       comp,
		OperatorID: operatorID,
	}
}

// HandleStart answers /start with the welcome screen.
func (b *BotFacade) HandleStart(ctx context.Context, user adapter.ChatUser) adapter.Reply {
	return b.ConvUC.Start(ctx, user)
}

// HandleMenu answers /menu by resetting to the main menu.
func (b *BotFacade) HandleMenu(ctx context.Context, user adapter.ChatUser) adapter.Reply {
	return b.ConvUC.HandleAction(ctx, user, "menu")
}

// HandleAction routes an inline-button press.
func (b *BotFacade) HandleAction(ctx context.Context, user adapter.ChatUser, data string) adapter.Reply {
	return b.ConvUC.HandleAction(ctx, user, data)
}

// HandleText routes a plain text message.
func (b *BotFacade) HandleText(ctx context.Context, user adapter.ChatUser, text string) adapter.Reply {
	return b.ConvUC.HandleText(ctx, user, text)
}

// HandleFile routes a document or photo upload.
func (b *BotFacade) HandleFile(ctx context.Context, user adapter.ChatUser, file adapter.FileInput) adapter.Reply {
	return b.ConvUC.HandleFile(ctx, user, file)
}

// HandleOperatorReply processes "/reply <user_id> <text>" from the operator
// chat. The returned string is the feedback to show the operator; it is empty
// when the sender is not the operator, so the command stays invisible to
// regular users.
func (b *BotFacade) HandleOperatorReply(ctx context.Context, fromID int64, args string) string {
	if fromID != b.OperatorID {
		return ""
	}
	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(fields) < 2 || strings.TrimSpace(fields[1]) == "" {
		return b.Comp.OperatorUsage()
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || userID <= 0 {
		return b.Comp.OperatorInvalidTarget()
	}
	if err := b.NotifUC.ReplyToUser(ctx, userID, fields[1]); err != nil {
		return b.Comp.OperatorReplyFailed()
	}
	return b.Comp.OperatorReplySent(userID)
}
