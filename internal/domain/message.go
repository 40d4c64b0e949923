package domain

import "time"

const (
	greetingText = "🌅 Good morning! Have a productive day."
	checkInText  = "⏰ Reminder: please check in for work."
	checkOutText = "🏁 Reminder: please check out before you leave."
	eveningText  = "🌆 Work day is over. Thanks for today!"
)

// ReminderMessage builds the text for a slot type on the given local date.
func ReminderMessage(t SlotType, now time.Time) string {
	date := "📅 " + FormatThaiDate(now)
	switch t {
	case SlotMorning:
		return greetingText + "\n\n" + checkInText + "\n" + date
	case SlotAfternoon:
		return checkOutText + "\n" + date
	case SlotEvening:
		return eveningText + "\n\n" + checkOutText + "\n" + date
	}
	return date
}
