package funnel

import (
	"fmt"
	"strings"

	"github.com/BTreeMap/LeadFunnel/internal/session"
)

// User-facing prompt texts. The funnel speaks Turkish; the texts mirror the
// coaching persona of the production bot.
const (
	welcomeBody = "Merhaba! Ben yaşam koçun 🌿 Sana nasıl yardımcı olabilirim?"

	timeMenuBody = "Harika ✅ Görüşmemizi en doğru zamana koyalım: hangi saat aralığı sana daha uygun?"

	contactAskBody = "Sana en doğru ve hızlı şekilde ulaşabilmem için iletişim bilgilerini paylaşır mısın?\n\n" +
		"• İsim Soyisim\n" +
		"• Telefon\n" +
		"• E-posta\n" +
		"• Instagram kullanıcı adı\n\n" +
		"Böylece sana özel dönüş yapabilirim 💚"

	goalNudgeBody    = "Bir seçenek seçmen yeterli 👇"
	timeNudgeBody    = "Saat aralığını seçmen yeterli 👇"
	contactNudgeBody = "Telefon numaranı veya e-postanı yazman yeterli 🙂"

	thanksBody = "Teşekkür ederim 🙏 Bilgini aldım. En kısa sürede seninle iletişime geçeceğim."

	// completionFallbackBody is sent whenever the completion service fails,
	// regardless of the failure kind.
	completionFallbackBody = "Şu an cevap veremedim 😕 Biraz sonra tekrar dener misin?"

	assistantPersona = "Türkçe konuş. Kısa, net ve ilgili cevap ver. Satış baskısı yapma. " +
		"Sağlık/tedavi vaadi verme. Kullanıcıyı önemseyen, sıcak ama abartısız bir dil kullan. " +
		"Gereksiz uzun yazma."
)

// assistantTemperature matches the production bot's completion settings.
const assistantTemperature = 0.7

// buildSystemPrompt grounds the assistant in what the funnel already knows
// about the user.
func buildSystemPrompt(sess *session.Session) string {
	var b strings.Builder
	b.WriteString(assistantPersona)

	var facts []string
	if sess.Goal != "" {
		facts = append(facts, fmt.Sprintf("hedefi: %s", sess.Goal.Label()))
	}
	if sess.TimeSlot != "" {
		facts = append(facts, fmt.Sprintf("uygun olduğu saat: %s", sess.TimeSlot.Label()))
	}
	if sess.Contact != nil && sess.Contact.Name != "" {
		facts = append(facts, fmt.Sprintf("ismi: %s", sess.Contact.Name))
	}
	if len(facts) > 0 {
		b.WriteString("\n\nKullanıcı hakkında bildiklerin — ")
		b.WriteString(strings.Join(facts, ", "))
		b.WriteString(".")
	}
	return b.String()
}
