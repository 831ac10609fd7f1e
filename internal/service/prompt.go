package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/botfactory/botfactory/internal/domain/conversation"
)

// persona returns the language-specific system instruction. The instruction
// forbids markdown because replies go out as plain text; Sanitize backstops
// the models that ignore it.
func persona(botName, lang string) string {
	switch lang {
	case langRu:
		return fmt.Sprintf("Ты чатбот по имени %s. Всегда отвечай на русском языке. "+
			"Будь дружелюбным, полезным и эмоциональным. Используй эмодзи. "+
			"НИКОГДА не используй ** или * или ` и другие markdown символы! "+
			"Только простой текст, эмодзи и переносы строк. "+
			"Список товаров пиши в красивом формате: начинай с • или -, каждый товар на отдельной строке. "+
			"Помни предыдущие разговоры с пользователем. "+
			"ВАЖНО: Если пользователь спрашивает о цене, ОБЯЗАТЕЛЬНО найди точную информацию о цене из базы знаний! "+
			"Ищи строки 'Narx:' и предоставь точные цифры.", botName)
	case langEn:
		return fmt.Sprintf("You are a chatbot named %s. Always respond in English. "+
			"Be friendly, helpful and emotional. Use emojis. "+
			"NEVER use ** or * or ` or any markdown symbols! "+
			"Only plain text, emojis and line breaks. "+
			"Format product lists nicely: start with • or -, each product on a separate line. "+
			"Remember previous conversations with the user. "+
			"IMPORTANT: If the user asks about price, ALWAYS find exact pricing information from the knowledge base! "+
			"Look for 'Narx:' lines and provide exact numbers.", botName)
	default:
		return fmt.Sprintf("Sen %s nomli chatbot san. Har doim o'zbek tilida javob ber. "+
			"Dostona, foydali va emotsiyalik bo'ling. Emoji ishlating. "+
			"HECH QACHON ** yoki * yoki ` kabi markdown belgilarini ishlatma! "+
			"Faqat oddiy matn, emoji va qator ajratish. "+
			"Mahsulot ro'yxatini chiroyli formatda yoz: • yoki - bilan boshlash, har bir mahsulotni alohida qatorda yoz. "+
			"Foydalanuvchi bilan oldingi suhbatlarni eslab qoling. "+
			"MUHIM: Agar foydalanuvchi narx haqida so'rasa, ALBATTA bilim bazasidan aniq narx ma'lumotlarini toping va ko'rsating! "+
			"'Narx:' qatorini izlab, aniq raqamlarni ayting.", botName)
	}
}

// BuildPrompt assembles the full generation prompt: persona, knowledge text,
// recent history and the user's question. The system portion is capped at
// budget characters before the question is appended.
func BuildPrompt(botName, lang, knowledgeText, history, question string, budget int) string {
	var b strings.Builder
	b.WriteString(persona(botName, lang))

	if knowledgeText != "" {
		b.WriteString("\n\nSizda quyidagi bilim bazasi mavjud:\n")
		b.WriteString(knowledgeText)
		b.WriteString("\n\nAgar foydalanuvchi yuqoridagi ma'lumotlar haqida so'rasa, aniq va to'liq javob bering.")
	}

	if history != "" {
		b.WriteString("\n\nOldingi suhbatlar:\n")
		b.WriteString(history)
		b.WriteString("\n\nYuqoridagi suhbatlarni eslab qoling va kontekst asosida javob bering.")
	}

	system := b.String()
	if budget > 0 && len(system) > budget {
		cut := budget
		for cut > 0 && !utf8.RuneStart(system[cut]) {
			cut--
		}
		system = system[:cut] + "..."
	}

	return fmt.Sprintf("%s\n\nFoydalanuvchi savoli: %s", system, question)
}

// FormatHistory renders recent turns oldest-first for prompt inclusion.
func FormatHistory(turns []conversation.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Foydalanuvchi: %s\nBot: %s", t.Input, t.Output)
	}
	return b.String()
}
