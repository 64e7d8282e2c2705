package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/infra/metrics"
)

// NotifierUseCase delivers operator-facing content. Order and support sends
// are fire-and-forget: a failed operator delivery is logged and counted but
// never blocks or rolls back the user's own confirmation.
type NotifierUseCase interface {
	OrderPlaced(ctx context.Context, user adapter.ChatUser, sess *model.Session, orderRef, methodLabel string)
	RelaySupport(ctx context.Context, user adapter.ChatUser, threadRef, body string)
	// ReplyToUser relays an operator answer into the user's chat under the
	// support pseudonym. The error is reported back to the operator only.
	ReplyToUser(ctx context.Context, userID int64, body string) error
}

var _ NotifierUseCase = (*notifierUC)(nil)

type notifierUC struct {
	transport  adapter.ChatTransport
	comp       *Composer
	operatorID int64
	log        *zerolog.Logger
}

func NewNotifierUseCase(transport adapter.ChatTransport, comp *Composer, operatorID int64, logger *zerolog.Logger) *notifierUC {
	return &notifierUC{transport: transport, comp: comp, operatorID: operatorID, log: logger}
}

func (n *notifierUC) OrderPlaced(ctx context.Context, user adapter.ChatUser, sess *model.Session, orderRef, methodLabel string) {
	text := n.comp.OperatorOrder(user, sess, orderRef, methodLabel)
	if err := n.transport.SendMessage(ctx, n.operatorID, text); err != nil {
		metrics.IncSendFailure("operator")
		n.log.Error().Err(err).Str("order_ref", orderRef).Msg("operator order notification failed")
	}

	total := len(sess.Files)
	for i, f := range sess.Files {
		caption := n.comp.OperatorFileCaption(i+1, total, orderRef, f.FileName)
		if err := n.transport.ForwardDocument(ctx, n.operatorID, f.FileRef, caption); err != nil {
			metrics.IncSendFailure("operator")
			n.log.Error().Err(err).Str("order_ref", orderRef).Str("file", f.FileName).Msg("attachment forward failed")
		}
	}
}

func (n *notifierUC) RelaySupport(ctx context.Context, user adapter.ChatUser, threadRef, body string) {
	text := n.comp.OperatorSupport(user, threadRef, body)
	if err := n.transport.SendMessage(ctx, n.operatorID, text); err != nil {
		metrics.IncSendFailure("operator")
		n.log.Error().Err(err).Str("thread_ref", threadRef).Msg("support relay failed")
	}
}

func (n *notifierUC) ReplyToUser(ctx context.Context, userID int64, body string) error {
	if err := n.transport.SendMessage(ctx, userID, n.comp.OperatorRelay(body)); err != nil {
		metrics.IncSendFailure("user")
		return err
	}
	return nil
}
