//go:build !integration

package usecase_test

import (
	"context"
	"strings"
	"testing"

	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/usecase"
)

const maxFileBytes = 20 << 20

func newConvUC(store *MockSessionStore, notifier *MockNotifier) usecase.ConversationUseCase {
	cat := model.DefaultCatalog()
	return usecase.NewConversationUseCase(
		store,
		usecase.NewPricingUseCase(cat),
		notifier,
		testComposer(),
		cat,
		maxFileBytes,
		testLogger(),
	)
}

func TestConversation_FullOrderFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	notifier := &MockNotifier{}
	uc := newConvUC(store, notifier)
	user := adapter.ChatUser{ID: 42, Username: "alice"}

	if r := uc.Start(ctx, user); !strings.Contains(r.Text, "EduMaster") {
		t.Fatalf("Start: unexpected welcome: %q", r.Text)
	}
	if r := uc.HandleAction(ctx, user, "menu"); !strings.Contains(r.Text, "Menu Principal") {
		t.Fatalf("menu: %q", r.Text)
	}
	if r := uc.HandleAction(ctx, user, "new_order"); !strings.Contains(r.Text, "Étape 1/6") {
		t.Fatalf("new_order: %q", r.Text)
	}
	if r := uc.HandleText(ctx, user, "Analyse des politiques monétaires"); !strings.Contains(r.Text, "Étape 2/6") {
		t.Fatalf("subject: %q", r.Text)
	}
	if r := uc.HandleAction(ctx, user, "level_bachelor"); !strings.Contains(r.Text, "Étape 3/6") {
		t.Fatalf("level: %q", r.Text)
	}
	if r := uc.HandleText(ctx, user, "2"); !strings.Contains(r.Text, "Étape 4/6") {
		t.Fatalf("pages: %q", r.Text)
	}
	if r := uc.HandleAction(ctx, user, "deadline_24h"); !strings.Contains(r.Text, "Étape 5/6") {
		t.Fatalf("deadline: %q", r.Text)
	}
	if r := uc.HandleText(ctx, user, "Format APA, 10 sources"); !strings.Contains(r.Text, "Étape 6/6") {
		t.Fatalf("instructions: %q", r.Text)
	}

	file := adapter.FileInput{Kind: adapter.FileKindDocument, Ref: "file-1", Name: "consignes.pdf", SizeBytes: 1024}
	if r := uc.HandleFile(ctx, user, file); !strings.Contains(r.Text, "consignes.pdf") {
		t.Fatalf("file: %q", r.Text)
	}

	// bachelor 22.0 * 1.5 * 2 pages = 66.00, locked at deadline selection
	summary := uc.HandleAction(ctx, user, "order_summary")
	if !strings.Contains(summary.Text, "66.00€") {
		t.Fatalf("summary missing price: %q", summary.Text)
	}
	if !strings.Contains(summary.Text, "1 document(s)") {
		t.Fatalf("summary missing file count: %q", summary.Text)
	}

	pay := uc.HandleAction(ctx, user, "payment_transfer")
	if !strings.Contains(pay.Text, "IBAN") || !strings.Contains(pay.Text, "#EDU") {
		t.Fatalf("transfer instructions: %q", pay.Text)
	}

	if len(notifier.Orders) != 1 {
		t.Fatalf("expected 1 order notification, got %d", len(notifier.Orders))
	}
	ord := notifier.Orders[0]
	if ord.User.ID != 42 || ord.Sess.Data.Pages != 2 || !strings.HasPrefix(ord.OrderRef, "EDU") {
		t.Fatalf("order notification: %+v", ord)
	}
	if _, ok := store.Get(ctx, user.ID); ok {
		t.Fatal("session should be cleared after payment selection")
	}

	// Acknowledgement after the session is gone still works.
	if r := uc.HandleAction(ctx, user, "payment_done"); !strings.Contains(r.Text, "Merci") {
		t.Fatalf("payment_done: %q", r.Text)
	}
}

func TestConversation_CryptoFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	notifier := &MockNotifier{}
	uc := newConvUC(store, notifier)
	user := adapter.ChatUser{ID: 7}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Dissertation")
	uc.HandleAction(ctx, user, "level_master")
	uc.HandleText(ctx, user, "1")
	uc.HandleAction(ctx, user, "deadline_7d")
	uc.HandleText(ctx, user, "aucune")

	if r := uc.HandleAction(ctx, user, "payment_crypto"); !strings.Contains(r.Text, "Cryptomonnaie") {
		t.Fatalf("crypto pick: %q", r.Text)
	}
	// Unknown code is dropped silently, session stays alive.
	if r := uc.HandleAction(ctx, user, "crypto_DOGE"); !r.Empty() {
		t.Fatalf("unknown crypto should yield empty reply, got %q", r.Text)
	}
	r := uc.HandleAction(ctx, user, "crypto_BTC")
	if !strings.Contains(r.Text, "Bitcoin") || !strings.Contains(r.Text, "26.00€") {
		t.Fatalf("crypto instructions: %q", r.Text)
	}
	if len(notifier.Orders) != 1 || !strings.Contains(notifier.Orders[0].MethodLabel, "BTC") {
		t.Fatalf("order notification: %+v", notifier.Orders)
	}
	if _, ok := store.Get(ctx, user.ID); ok {
		t.Fatal("session should be cleared")
	}
}

func TestConversation_PagesValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 9}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet")
	uc.HandleAction(ctx, user, "level_lycee")

	for _, bad := range []string{"0", "51", "-3", "trois", "2.5", ""} {
		r := uc.HandleText(ctx, user, bad)
		if !strings.Contains(r.Text, "Format incorrect") {
			t.Fatalf("pages %q: expected rejection, got %q", bad, r.Text)
		}
	}
	// Step did not advance, a valid value still goes through.
	if r := uc.HandleText(ctx, user, " 5 "); !strings.Contains(r.Text, "5 page(s)") {
		t.Fatalf("valid pages: %q", r.Text)
	}
}

func TestConversation_ExpiredSessionRecovery(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 11}

	for _, data := range []string{"deadline_24h", "order_summary", "skip_files", "payment_transfer", "crypto_BTC"} {
		r := uc.HandleAction(ctx, user, data)
		if !strings.Contains(r.Text, "Session expirée") {
			t.Fatalf("%s without session: %q", data, r.Text)
		}
	}
	if r := uc.HandleText(ctx, user, "bonjour"); !strings.Contains(r.Text, "Navigation perdue") {
		t.Fatalf("stray text: %q", r.Text)
	}
}

func TestConversation_UnknownInputs(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 12}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet")

	// Unknown level key is ignored, the step keeps waiting.
	if r := uc.HandleAction(ctx, user, "level_college"); !r.Empty() {
		t.Fatalf("unknown level: %q", r.Text)
	}
	sess, _ := store.Get(ctx, user.ID)
	if sess.Step != model.StepOrderLevel {
		t.Fatalf("step moved to %s", sess.Step)
	}
	// Text at a button step is ignored.
	if r := uc.HandleText(ctx, user, "licence"); !r.Empty() {
		t.Fatalf("text at button step: %q", r.Text)
	}
	// Garbage callback data lands on the transient error screen.
	if r := uc.HandleAction(ctx, user, "confirm_xyz"); !strings.Contains(r.Text, "Erreur temporaire") {
		t.Fatalf("garbage action: %q", r.Text)
	}
}

func TestConversation_MenuDiscardsPartialOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 13}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet abandonné")
	uc.HandleAction(ctx, user, "menu")

	if _, ok := store.Get(ctx, user.ID); ok {
		t.Fatal("menu should clear the session")
	}
	// A fresh order starts blank.
	uc.HandleAction(ctx, user, "new_order")
	sess, _ := store.Get(ctx, user.ID)
	if sess.Data.Subject != "" {
		t.Fatalf("stale subject survived: %q", sess.Data.Subject)
	}
}

func TestConversation_SupportFlow(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	notifier := &MockNotifier{}
	uc := newConvUC(store, notifier)
	user := adapter.ChatUser{ID: 21, Username: "bob"}

	// Support entry needs no prior session.
	if r := uc.HandleAction(ctx, user, "support"); !strings.Contains(r.Text, "Support Technique") {
		t.Fatalf("support prompt: %q", r.Text)
	}
	r := uc.HandleText(ctx, user, "Où en est ma commande ?")
	if !strings.Contains(r.Text, "Message envoyé") {
		t.Fatalf("support confirmation: %q", r.Text)
	}
	if len(notifier.Supports) != 1 {
		t.Fatalf("expected 1 relay, got %d", len(notifier.Supports))
	}
	rel := notifier.Supports[0]
	if rel.Body != "Où en est ma commande ?" || len(rel.ThreadRef) != 8 {
		t.Fatalf("relay: %+v", rel)
	}
	if !strings.Contains(r.Text, rel.ThreadRef) {
		t.Fatalf("confirmation should carry thread ref %s: %q", rel.ThreadRef, r.Text)
	}
	if _, ok := store.Get(ctx, user.ID); ok {
		t.Fatal("support session should be cleared after relay")
	}
}

func TestConversation_FileValidation(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 31}

	doc := func(name string, size int64) adapter.FileInput {
		return adapter.FileInput{Kind: adapter.FileKindDocument, Ref: "ref-" + name, Name: name, SizeBytes: size}
	}

	// Outside the files step, uploads are refused.
	if r := uc.HandleFile(ctx, user, doc("early.pdf", 100)); !strings.Contains(r.Text, "Fichier non attendu") {
		t.Fatalf("file outside flow: %q", r.Text)
	}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet")
	uc.HandleAction(ctx, user, "level_phd")
	uc.HandleText(ctx, user, "3")
	uc.HandleAction(ctx, user, "deadline_48h")
	uc.HandleText(ctx, user, "aucune")

	if r := uc.HandleFile(ctx, user, adapter.FileInput{Kind: adapter.FileKindOther, Ref: "v"}); !strings.Contains(r.Text, "non supporté") {
		t.Fatalf("unsupported kind: %q", r.Text)
	}
	if r := uc.HandleFile(ctx, user, doc("big.pdf", maxFileBytes+1)); !strings.Contains(r.Text, "trop volumineux") {
		t.Fatalf("oversized: %q", r.Text)
	}
	for i := 0; i < 5; i++ {
		r := uc.HandleFile(ctx, user, doc("ok.pdf", 512))
		if !strings.Contains(r.Text, "Fichier ajouté") {
			t.Fatalf("file %d: %q", i+1, r.Text)
		}
	}
	if r := uc.HandleFile(ctx, user, doc("extra.pdf", 512)); !strings.Contains(r.Text, "Limite atteinte") {
		t.Fatalf("over cap: %q", r.Text)
	}

	// Unnamed image gets a generated name.
	store.Clear(ctx, user.ID)
	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet")
	uc.HandleAction(ctx, user, "level_lycee")
	uc.HandleText(ctx, user, "1")
	uc.HandleAction(ctx, user, "deadline_7d")
	uc.HandleText(ctx, user, "aucune")
	r := uc.HandleFile(ctx, user, adapter.FileInput{Kind: adapter.FileKindImage, Ref: "ph", SizeBytes: 2048})
	if !strings.Contains(r.Text, "image_1.jpg") {
		t.Fatalf("generated image name: %q", r.Text)
	}
}

func TestConversation_PriceLockedAtDeadline(t *testing.T) {
	ctx := context.Background()
	store := NewMockSessionStore()
	uc := newConvUC(store, &MockNotifier{})
	user := adapter.ChatUser{ID: 51}

	uc.HandleAction(ctx, user, "new_order")
	uc.HandleText(ctx, user, "Sujet")
	uc.HandleAction(ctx, user, "level_lycee")
	uc.HandleText(ctx, user, "4")
	uc.HandleAction(ctx, user, "deadline_24h")

	sess, _ := store.Get(ctx, user.ID)
	want := 18.0 * 1.5 * 4
	if sess.Data.FinalPrice != want {
		t.Fatalf("FinalPrice = %v, want %v", sess.Data.FinalPrice, want)
	}
}
