//go:build !integration

package usecase_test

import (
	"strings"
	"testing"
	"time"

	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
	"edumaster-order-bot/internal/usecase"
)

func TestComposer_PricingGridFromCatalog(t *testing.T) {
	r := testComposer().PricingGrid()
	for _, want := range []string{"Lycée", "Licence", "Master", "Doctorat", "18€", "32€", "Express - 6h", "+80%", "-10%", "50€/page"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("pricing grid missing %q:\n%s", want, r.Text)
		}
	}
}

func TestComposer_SummaryDefaults(t *testing.T) {
	comp := testComposer()
	sess := model.NewSession(1, model.StepOrderFiles, time.Now())
	r := comp.Summary(sess)
	for _, want := range []string{"Non défini", "Aucune", "0 document(s)", "0.00€"} {
		if !strings.Contains(r.Text, want) {
			t.Errorf("summary missing %q:\n%s", want, r.Text)
		}
	}
}

func TestComposer_SummaryTruncatesInstructions(t *testing.T) {
	comp := testComposer()
	sess := model.NewSession(1, model.StepOrderFiles, time.Now())
	sess.Data.Instructions = strings.Repeat("a", 80)
	r := comp.Summary(sess)
	if !strings.Contains(r.Text, strings.Repeat("a", 50)+"...") {
		t.Fatalf("instructions not truncated:\n%s", r.Text)
	}
	if strings.Contains(r.Text, strings.Repeat("a", 51)) {
		t.Fatalf("instructions exceed truncation limit:\n%s", r.Text)
	}
}

func TestComposer_OperatorOrderSkipsEmptyInstructions(t *testing.T) {
	comp := testComposer()
	user := adapter.ChatUser{ID: 5, Username: "carol"}
	sess := model.NewSession(5, model.StepOrderFiles, time.Now())
	sess.Data = model.OrderData{Subject: "Essai", Level: "master", Pages: 3, Deadline: "48h", Instructions: "Aucune", FinalPrice: 101.4}

	text := comp.OperatorOrder(user, sess, "EDUABCD1234", "🏦 Virement bancaire")
	if strings.Contains(text, "Instructions :") {
		t.Fatalf("placeholder instructions should be omitted:\n%s", text)
	}
	for _, want := range []string{"EDUABCD1234", "@carol", "ID: 5", "101.40€"} {
		if !strings.Contains(text, want) {
			t.Errorf("operator order missing %q:\n%s", want, text)
		}
	}

	sess.Data.Instructions = "Format APA"
	if text := comp.OperatorOrder(user, sess, "EDUABCD1234", "x"); !strings.Contains(text, "Format APA") {
		t.Fatalf("real instructions should be included:\n%s", text)
	}
}

func TestComposer_RelayUsesPseudonym(t *testing.T) {
	comp := testComposer()
	text := comp.OperatorRelay("Votre commande est prête.")
	if !strings.HasPrefix(text, "💬 *Support Académique*") {
		t.Fatalf("relay missing pseudonym: %q", text)
	}
	if !strings.Contains(text, "Votre commande est prête.") {
		t.Fatalf("relay missing body: %q", text)
	}
}

func TestFormatFileSize(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{1536, "1.5 KB"},
		{5 << 20, "5.0 MB"},
		{20 << 20, "20.0 MB"},
	}
	for _, tc := range cases {
		if got := usecase.FormatFileSize(tc.in); got != tc.want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := usecase.FormatPrice(66); got != "66.00€" {
		t.Fatalf("FormatPrice = %q", got)
	}
}
