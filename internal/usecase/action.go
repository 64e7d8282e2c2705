package usecase

import "strings"

// actionKind is the closed set of button actions the flow understands.
// Anything else routes to the generic-error path.
type actionKind int

const (
	actionUnknown actionKind = iota
	actionMenu
	actionBack
	actionNewOrder
	actionPricing
	actionInfo
	actionSupport
	actionLevel
	actionDeadline
	actionSummary
	actionSkipFiles
	actionPayTransfer
	actionPayCrypto
	actionCrypto
	actionPaymentDone
)

type action struct {
	kind actionKind
	arg  string // catalog key for level/deadline/crypto actions
}

func parseAction(data string) action {
	switch data {
	case "menu":
		return action{kind: actionMenu}
	case "back":
		return action{kind: actionBack}
	case "new_order":
		return action{kind: actionNewOrder}
	case "pricing":
		return action{kind: actionPricing}
	case "info":
		return action{kind: actionInfo}
	case "support":
		return action{kind: actionSupport}
	case "order_summary":
		return action{kind: actionSummary}
	case "skip_files":
		return action{kind: actionSkipFiles}
	case "payment_transfer":
		return action{kind: actionPayTransfer}
	case "payment_crypto":
		return action{kind: actionPayCrypto}
	case "payment_done":
		return action{kind: actionPaymentDone}
	}
	switch {
	case strings.HasPrefix(data, "level_"):
		return action{kind: actionLevel, arg: strings.TrimPrefix(data, "level_")}
	case strings.HasPrefix(data, "deadline_"):
		return action{kind: actionDeadline, arg: strings.TrimPrefix(data, "deadline_")}
	case strings.HasPrefix(data, "crypto_"):
		return action{kind: actionCrypto, arg: strings.TrimPrefix(data, "crypto_")}
	}
	return action{kind: actionUnknown, arg: data}
}
