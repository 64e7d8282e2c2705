package usecase

import (
	"fmt"
	"strings"

	"edumaster-order-bot/internal/domain/model"
	"edumaster-order-bot/internal/domain/ports/adapter"
)

// Composer renders every piece of outbound content — user-facing prompts and
// confirmations, the pre-payment summary, and the operator notifications —
// from a session snapshot and the catalog. It is a pure projection: no
// mutation, no errors.
type Composer struct {
	cat           *model.Catalog
	supportPseudo string
	maxFiles      int
}

func NewComposer(cat *model.Catalog, supportPseudo string, maxFiles int) *Composer {
	return &Composer{cat: cat, supportPseudo: supportPseudo, maxFiles: maxFiles}
}

// ---- keyboards ----

func menuRow() []adapter.InlineButton {
	return []adapter.InlineButton{{Text: "🏠 Menu", Data: "menu"}}
}

func backRows() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "← Retour", Data: "back"}, {Text: "🏠 Menu", Data: "menu"}},
	}
}

func (c *Composer) mainRows() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "📝 Nouvelle commande", Data: "new_order"}},
		{{Text: "💰 Tarification", Data: "pricing"}, {Text: "💬 Support", Data: "support"}},
		{{Text: "ℹ️ Informations", Data: "info"}},
	}
}

func (c *Composer) levelRows() [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(c.cat.Levels)+1)
	for _, l := range c.cat.Levels {
		rows = append(rows, []adapter.InlineButton{{Text: l.Emoji + " " + l.Name, Data: "level_" + l.Key}})
	}
	return append(rows, backRows()...)
}

func (c *Composer) deadlineRows() [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(c.cat.Deadlines)+1)
	for _, d := range c.cat.Deadlines {
		rows = append(rows, []adapter.InlineButton{{Text: d.Label, Data: "deadline_" + d.Key}})
	}
	return append(rows, backRows()...)
}

func (c *Composer) paymentRows() [][]adapter.InlineButton {
	rows := [][]adapter.InlineButton{
		{{Text: "🏦 Virement bancaire", Data: "payment_transfer"}},
		{{Text: "₿ Cryptomonnaie", Data: "payment_crypto"}},
	}
	return append(rows, backRows()...)
}

func (c *Composer) cryptoRows() [][]adapter.InlineButton {
	rows := make([][]adapter.InlineButton, 0, len(c.cat.Crypto)+1)
	for _, cr := range c.cat.Crypto {
		rows = append(rows, []adapter.InlineButton{{Text: cr.Emoji + " " + cr.Code, Data: "crypto_" + cr.Code}})
	}
	return append(rows, backRows()...)
}

// ---- screens ----

func (c *Composer) Welcome() adapter.Reply {
	return adapter.Reply{
		Text: "📚 *EduMaster - Services Académiques*\n\n" +
			"Plateforme de rédaction académique professionnelle.\n\n" +
			"*Services :*\n" +
			"• Rédaction de travaux académiques\n" +
			"• Recherche et analyse\n" +
			"• Révisions et corrections\n\n" +
			"*Garanties :*\n" +
			"• Travail original\n" +
			"• Respect des délais\n" +
			"• Support inclus",
		Rows: [][]adapter.InlineButton{{{Text: "Accéder au service", Data: "menu"}}},
	}
}

func (c *Composer) MainMenu() adapter.Reply {
	return adapter.Reply{
		Text: "🎯 *Menu Principal*\n\nSélectionnez l'action souhaitée :",
		Rows: c.mainRows(),
	}
}

func (c *Composer) PricingGrid() adapter.Reply {
	var sb strings.Builder
	sb.WriteString("💰 *Grille Tarifaire*\n\n*Prix de base par page (350 mots) :*\n")
	for _, l := range c.cat.Levels {
		sb.WriteString(fmt.Sprintf("• %s %s : %g€\n", l.Emoji, l.Name, l.BasePrice))
	}
	sb.WriteString("\n*Multiplicateurs selon le délai :*\n")
	for i := len(c.cat.Deadlines) - 1; i >= 0; i-- {
		d := c.cat.Deadlines[i]
		sb.WriteString(fmt.Sprintf("• %s : %s\n", d.Label, multiplierLabel(d.Multiplier)))
	}
	sb.WriteString(fmt.Sprintf("\n_Prix maximum : %g€/page_", c.cat.CeilingPerPage))
	return adapter.Reply{
		Text: sb.String(),
		Rows: [][]adapter.InlineButton{
			{{Text: "📝 Passer commande", Data: "new_order"}},
			menuRow(),
		},
	}
}

func multiplierLabel(m float64) string {
	switch {
	case m == 1.0:
		return "Prix standard"
	case m > 1.0:
		return fmt.Sprintf("+%.0f%%", (m-1)*100)
	default:
		return fmt.Sprintf("-%.0f%%", (1-m)*100)
	}
}

func (c *Composer) Info() adapter.Reply {
	return adapter.Reply{
		Text: "ℹ️ *Informations*\n\n" +
			"*Comment ça marche :*\n" +
			"1. Décrivez votre projet\n" +
			"2. Choisissez niveau et délai\n" +
			"3. Envoyez vos fichiers (optionnel)\n" +
			"4. Effectuez le paiement\n" +
			"5. Recevez votre travail\n\n" +
			"*Support :* Disponible 24h/24\n" +
			"*Délais :* Respectés à 100%\n" +
			"*Qualité :* Garantie satisfait ou remboursé",
		Rows: [][]adapter.InlineButton{
			{{Text: "📝 Commencer", Data: "new_order"}},
			menuRow(),
		},
	}
}

func (c *Composer) SubjectPrompt() adapter.Reply {
	return adapter.Reply{
		Text: "📝 *Nouvelle Commande - Étape 1/6*\n\n" +
			"*Décrivez le sujet de votre travail :*\n\n" +
			"_Exemple : Analyse comparative des politiques monétaires européennes_\n\n" +
			"Soyez aussi précis que possible.",
		Rows: backRows(),
	}
}

func (c *Composer) LevelPrompt(subject string) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("📝 *Nouvelle Commande - Étape 2/6*\n\n"+
			"*Sujet enregistré :*\n_%s_\n\n"+
			"Sélectionnez votre niveau académique :", subject),
		Rows: c.levelRows(),
	}
}

func (c *Composer) PagesPrompt(level model.AcademicLevel) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("📝 *Nouvelle Commande - Étape 3/6*\n\n"+
			"*Niveau sélectionné :* %s %s\n"+
			"*Prix de base :* %g€/page\n\n"+
			"*Indiquez le nombre de pages souhaitées :*\n"+
			"_(Une page = environ 350 mots)_", level.Emoji, level.Name, level.BasePrice),
		Rows: backRows(),
	}
}

func (c *Composer) DeadlinePrompt(pages int) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("📝 *Nouvelle Commande - Étape 4/6*\n\n"+
			"*%d page(s) confirmée(s)*\n\n"+
			"Sélectionnez votre délai de livraison :", pages),
		Rows: c.deadlineRows(),
	}
}

func (c *Composer) InstructionsPrompt() adapter.Reply {
	return adapter.Reply{
		Text: "📋 *Nouvelle Commande - Étape 5/6*\n\n" +
			"*Consignes et instructions complémentaires*\n\n" +
			"Tapez toutes les informations importantes :\n" +
			"• Format requis (APA, MLA, etc.)\n" +
			"• Nombre de sources minimum\n" +
			"• Consignes spécifiques\n\n" +
			"_Si vous n'avez pas d'instructions, tapez \"aucune\"_",
		Rows: backRows(),
	}
}

func (c *Composer) FilesPrompt(count int) adapter.Reply {
	rows := [][]adapter.InlineButton{
		{{Text: "↩ Passer cette étape", Data: "skip_files"}},
	}
	rows = append(rows, backRows()...)
	return adapter.Reply{
		Text: fmt.Sprintf("📎 *Nouvelle Commande - Étape 6/6*\n\n"+
			"*Documents et ressources (optionnel)*\n\n"+
			"Vous pouvez :\n"+
			"• Envoyer des fichiers (PDF, DOC, images)\n"+
			"• Passer directement au récapitulatif\n\n"+
			"*Fichiers envoyés :* %d/%d", count, c.maxFiles),
		Rows: rows,
	}
}

func (c *Composer) FileAdded(name string, sizeBytes int64, count int) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("✅ *Fichier ajouté*\n\n"+
			"📎 %s (%s)\n\n"+
			"*Total :* %d/%d fichiers\n\n"+
			"Vous pouvez envoyer d'autres fichiers ou continuer.",
			name, FormatFileSize(sizeBytes), count, c.maxFiles),
		Rows: [][]adapter.InlineButton{
			{{Text: "✅ Continuer vers le récapitulatif", Data: "order_summary"}},
		},
	}
}

// Summary renders the pre-payment recapitulation of a session snapshot.
func (c *Composer) Summary(sess *model.Session) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("📋 *Récapitulatif de votre commande*\n\n"+
			"*Sujet :* %s\n"+
			"*Niveau :* %s\n"+
			"*Pages :* %d page(s)\n"+
			"*Délai :* %s\n"+
			"*Instructions :* %s\n"+
			"*Fichiers joints :* %d document(s)\n\n"+
			"*💰 Prix total :* %s\n\n"+
			"Choisissez votre méthode de paiement :",
			orDefault(sess.Data.Subject, "Non défini"),
			c.levelLabel(sess.Data.Level),
			sess.Data.Pages,
			c.deadlineLabel(sess.Data.Deadline),
			truncate(orDefault(sess.Data.Instructions, "Aucune"), 50),
			len(sess.Files),
			FormatPrice(sess.Data.FinalPrice)),
		Rows: c.paymentRows(),
	}
}

func (c *Composer) CryptoPick() adapter.Reply {
	return adapter.Reply{
		Text: "₿ *Paiement Cryptomonnaie*\n\nSélectionnez votre cryptomonnaie :",
		Rows: c.cryptoRows(),
	}
}

func (c *Composer) TransferInstructions(orderRef string, price float64) adapter.Reply {
	b := c.cat.Bank
	return adapter.Reply{
		Text: fmt.Sprintf("🏦 *Paiement par Virement Bancaire*\n\n"+
			"*Commande #%s*\n\n"+
			"*Coordonnées bancaires :*\n"+
			"• IBAN : %s\n"+
			"• BIC : %s\n"+
			"• Titulaire : %s\n"+
			"• Banque : %s\n\n"+
			"*Montant exact :* %s\n\n"+
			"*⚠️ IMPORTANT :*\n"+
			"• Indiquez en référence : %s\n"+
			"• Conservez votre reçu bancaire\n"+
			"• Validation sous 24-48h ouvrés",
			orderRef, b.IBAN, b.BIC, b.Holder, b.Bank, FormatPrice(price), orderRef),
		Rows: c.paymentDoneRows(),
	}
}

func (c *Composer) CryptoInstructions(orderRef string, price float64, opt model.CryptoOption) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("₿ *Paiement %s %s*\n\n"+
			"*Commande #%s*\n\n"+
			"*Adresse de paiement :*\n"+
			"`%s`\n\n"+
			"*Montant exact :* %s\n\n"+
			"*⚠️ IMPORTANT :*\n"+
			"• Envoyez le montant EXACT\n"+
			"• Conservez votre hash de transaction\n"+
			"• Validation automatique sous 30 min",
			opt.Name, opt.Emoji, orderRef, opt.Address, FormatPrice(price)),
		Rows: c.paymentDoneRows(),
	}
}

func (c *Composer) paymentDoneRows() [][]adapter.InlineButton {
	return [][]adapter.InlineButton{
		{{Text: "✅ Paiement effectué", Data: "payment_done"}},
		menuRow(),
	}
}

func (c *Composer) PaymentDone() adapter.Reply {
	return adapter.Reply{
		Text: "🙏 *Merci !*\n\n" +
			"Votre paiement est en cours de vérification.\n" +
			"Notre équipe vous contactera dès sa validation.",
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

func (c *Composer) SupportPrompt() adapter.Reply {
	return adapter.Reply{
		Text: "💬 *Support Technique*\n\n" +
			"Notre équipe est disponible 24h/24.\n\n" +
			"*Tapez votre message ci-dessous :*",
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

func (c *Composer) SupportSent(threadRef string) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("✅ *Message envoyé avec succès*\n\n"+
			"*Référence :* #%s\n"+
			"*Temps de réponse :* Sous 2 heures\n\n"+
			"Notre équipe vous contactera rapidement.", threadRef),
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

// ---- recovery screens ----

func (c *Composer) SessionExpired() adapter.Reply {
	return adapter.Reply{
		Text: "⚠️ *Session expirée*\n\nVeuillez recommencer.",
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

func (c *Composer) TransientError() adapter.Reply {
	return adapter.Reply{
		Text: "⚠️ *Erreur temporaire*\n\nVeuillez réessayer.",
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

func (c *Composer) LostNavigation() adapter.Reply {
	return adapter.Reply{
		Text: "🤔 *Navigation perdue ?*\n\nUtilisez le menu ci-dessous :",
		Rows: c.mainRows(),
	}
}

func (c *Composer) RateLimited() adapter.Reply {
	return adapter.Reply{
		Text: "⏳ *Trop de requêtes*\n\nVeuillez patienter un instant.",
	}
}

func (c *Composer) InvalidPages() adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("⚠️ *Format incorrect*\n\nEntrez un nombre entre %d et %d.\n_Exemple : 5_",
			model.MinPages, model.MaxPages),
	}
}

func (c *Composer) FileNotExpected() adapter.Reply {
	return adapter.Reply{
		Text: "⚠️ *Fichier non attendu*\n\nUtilisez le menu pour naviguer.",
		Rows: [][]adapter.InlineButton{menuRow()},
	}
}

func (c *Composer) FileLimitReached() adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("⚠️ *Limite atteinte*\n\nMaximum %d fichiers par commande.", c.maxFiles),
	}
}

func (c *Composer) FileTooLarge(maxBytes int64) adapter.Reply {
	return adapter.Reply{
		Text: fmt.Sprintf("⚠️ *Fichier trop volumineux*\n\nTaille maximum : %s", FormatFileSize(maxBytes)),
	}
}

func (c *Composer) UnsupportedFile() adapter.Reply {
	return adapter.Reply{
		Text: "⚠️ *Type de fichier non supporté*\n\nEnvoyez des documents ou des images.",
	}
}

// ---- operator-facing content ----

func (c *Composer) OperatorOrder(user adapter.ChatUser, sess *model.Session, orderRef, methodLabel string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🆕 *NOUVELLE COMMANDE #%s*\n\n", orderRef))
	sb.WriteString(fmt.Sprintf("*👤 Client :* @%s (ID: %d)\n\n", orDefault(user.Username, "Sans username"), user.ID))
	sb.WriteString("*📋 Détails :*\n")
	sb.WriteString(fmt.Sprintf("• *Sujet :* %s\n", sess.Data.Subject))
	sb.WriteString(fmt.Sprintf("• *Niveau :* %s\n", c.levelLabel(sess.Data.Level)))
	sb.WriteString(fmt.Sprintf("• *Pages :* %d\n", sess.Data.Pages))
	sb.WriteString(fmt.Sprintf("• *Délai :* %s\n", c.deadlineLabel(sess.Data.Deadline)))
	sb.WriteString(fmt.Sprintf("• *Prix :* %s\n", FormatPrice(sess.Data.FinalPrice)))
	sb.WriteString(fmt.Sprintf("• *Paiement :* %s\n", methodLabel))
	sb.WriteString(fmt.Sprintf("• *Fichiers joints :* %d document(s)\n\n", len(sess.Files)))
	if instr := sess.Data.Instructions; instr != "" && !strings.EqualFold(instr, "aucune") {
		sb.WriteString(fmt.Sprintf("*📝 Instructions :*\n%s\n\n", instr))
	}
	sb.WriteString("⏳ _En attente de paiement..._")
	return sb.String()
}

func (c *Composer) OperatorFileCaption(index, total int, orderRef, fileName string) string {
	return fmt.Sprintf("📎 Fichier %d/%d - %s\n%s", index, total, orderRef, fileName)
}

func (c *Composer) OperatorSupport(user adapter.ChatUser, threadRef, body string) string {
	return fmt.Sprintf("💬 *MESSAGE SUPPORT* - Thread #%s\n\n"+
		"*👤 Client :* @%s (ID: %d)\n\n"+
		"*📝 Message :*\n%s",
		threadRef, orDefault(user.Username, "Utilisateur"), user.ID, body)
}

func (c *Composer) OperatorRelay(body string) string {
	return fmt.Sprintf("💬 *%s*\n\n%s", c.supportPseudo, body)
}

func (c *Composer) OperatorUsage() string {
	return "*Format :* `/reply user_id message`\n" +
		"*Exemple :* `/reply 123456789 Bonjour, comment puis-je vous aider ?`"
}

func (c *Composer) OperatorInvalidTarget() string {
	return "⚠️ *ID utilisateur invalide*"
}

func (c *Composer) OperatorReplySent(userID int64) string {
	return fmt.Sprintf("✅ *Réponse envoyée* à l'utilisateur %d", userID)
}

func (c *Composer) OperatorReplyFailed() string {
	return "⚠️ *Erreur d'envoi*\n\nVeuillez réessayer plus tard."
}

// ---- formatting helpers ----

func FormatPrice(price float64) string {
	return fmt.Sprintf("%.2f€", price)
}

func FormatFileSize(sizeBytes int64) string {
	switch {
	case sizeBytes < 1024:
		return fmt.Sprintf("%d B", sizeBytes)
	case sizeBytes < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(sizeBytes)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(sizeBytes)/(1024*1024))
	}
}

func (c *Composer) levelLabel(key string) string {
	if l, ok := c.cat.Level(key); ok {
		return l.Emoji + " " + l.Name
	}
	return key
}

func (c *Composer) deadlineLabel(key string) string {
	if d, ok := c.cat.Deadline(key); ok {
		return d.Label
	}
	return key
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
