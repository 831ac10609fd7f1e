package service

import "fmt"

// User-facing strings. Uzbek is the platform default; Russian and English are
// served when the bot owner's tier unlocks them.

const (
	langUz = "uz"
	langRu = "ru"
	langEn = "en"
)

func langName(lang string) string {
	switch lang {
	case langRu:
		return "Русский"
	case langEn:
		return "English"
	default:
		return "O'zbek"
	}
}

func welcomeText(botName string) string {
	return fmt.Sprintf("🤖 Salom! Men %s chatbot!\n\n"+
		"📝 Menga savolingizni yozing va men sizga yordam beraman.\n"+
		"🌐 Tilni tanlash uchun /language buyrug'ini ishlating.\n"+
		"❓ Yordam uchun /help buyrug'ini ishlating.", botName)
}

const helpText = `🤖 BotFactory AI Yordam

📋 Mavjud buyruqlar:
/start - Botni qayta ishga tushirish
/help - Yordam ma'lumotlari
/language - Tilni tanlash
/ping - Bot holatini tekshirish

💬 Oddiy xabar yuborib, men bilan suhbatlashishingiz mumkin!

🌐 Qo'llab-quvvatlanadigan tillar:
• O'zbek tili (bepul)
• Rus tili (Starter/Basic/Premium)
• Ingliz tili (Starter/Basic/Premium)`

func languagePrompt(current string) string {
	return fmt.Sprintf("🌐 Joriy til: %s\nTilni tanlang:", langName(current))
}

func languageChangedText(lang string) string {
	switch lang {
	case langRu:
		return fmt.Sprintf("✅ Язык изменен на %s!", langName(lang))
	case langEn:
		return fmt.Sprintf("✅ Language changed to %s!", langName(lang))
	default:
		return fmt.Sprintf("✅ Til %s ga o'zgartirildi!", langName(lang))
	}
}

const languageLockedText = "🔒 Bu til faqat Starter, Basic yoki Premium obunachi uchun mavjud!"

const accessDeniedText = "❌ Obunangiz tugagan yoki bepul 14 kunlik sinov muddati yakunlangan. Iltimos, obunani yangilang."

func trialReminderText(daysLeft int) string {
	return fmt.Sprintf("ℹ️ Bepul sinov muddati: yana %d kun qoldi.", daysLeft)
}

const pingText = "pong ✅"

const operatorAckText = "✅ Operatorga xabarnoma yuborildi. Tez orada bog'lanamiz."

const contactPromptText = "📞 Biz bilan bog'lanish usullari:"

// fallbackText is the reply served when generation fails outright.
func fallbackText(lang string) string {
	switch lang {
	case langRu:
		return "Привет! Я BotFactory AI бот. Сейчас настраивается AI сервис. Скоро смогу помочь вам! 🤖"
	case langEn:
		return "Hello! I'm BotFactory AI bot. AI service is being configured now. I'll be able to help you soon! 🤖"
	default:
		return "Salom! Men BotFactory AI botiman. Hozir AI xizmat sozlanmoqda. Tez orada sizga yordam bera olaman! 🤖"
	}
}

// voiceHeardText echoes the transcript back before answering it.
func voiceHeardText(transcript string) string {
	return "🎤 Eshitildi: " + transcript
}

// voiceFailText is the reply when a voice message cannot be transcribed.
func voiceFailText(lang string) string {
	switch lang {
	case langRu:
		return "Извините, не удалось распознать голосовое сообщение. Напишите текстом, пожалуйста. 🎤"
	case langEn:
		return "Sorry, I could not understand the voice message. Please type your question. 🎤"
	default:
		return "Kechirasiz, ovozli xabarni tushuna olmadim. Iltimos, savolingizni yozib yuboring. 🎤"
	}
}

// emptyReplyText replaces a reply that sanitization reduced to nothing.
const emptyReplyText = "Javob tayyor! 🤖"
