package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// UI texts in English
const (
	startText = "👋 I send work check-in and check-out reminders on business days.\n\n" +
		"Morning: 07:25, 08:25, 09:25\nAfternoon: 15:30, 16:30\nEvening: 17:30\n\n" +
		"You are subscribed. Use /unsubscribe to stop and /help for all commands."
	subscribedText     = "✅ Subscribed. You will receive reminders on business days."
	unsubscribedText   = "⏸ Unsubscribed. Use /subscribe to come back."
	notRegisteredText  = "Please send /start first."
	adminOnlyText      = "⛔ This command is for administrators only."
	genericErrorText   = "Something went wrong. Please try again later."
	unknownCommandText = "Unknown command. See /help."

	myInfoFmt = "🧾 Your info:\n• Chat ID: %s\n• Name: %s\n• Role: %s\n• Subscribed: %s\n"
	statusFmt = "📊 Status:\n• Subscribed: %s\n• Today (%s): %s\n• Reminder mode: %s\n"
	serverFmt = "🕒 Server time (UTC): %s\n🇹🇭 Business time: %s\n📅 Today: %s\n⚙️ Scheduler: %s (%s)\n"
)

// mainMenuKeyboard builds a reply keyboard with a subscription toggle.
func mainMenuKeyboard(subscribed bool) tgbotapi.ReplyKeyboardMarkup {
	toggle := "/unsubscribe"
	if !subscribed {
		toggle = "/subscribe"
	}
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/list_holidays"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/myinfo"),
			tgbotapi.NewKeyboardButton(toggle),
		),
	)
}

func yesNo(b bool) string {
	if b {
		return "✅ yes"
	}
	return "❌ no"
}
