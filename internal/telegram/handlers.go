package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/calendar"
	"github.com/Arnutt-N/time-reminder/internal/domain"
	"github.com/Arnutt-N/time-reminder/internal/store"
)

// maxListed caps holiday and admin listings in one reply.
const maxListed = 30

// --- User commands ---

func (r *Router) handleStart(ctx context.Context, req request) {
	u := &domain.User{ChatID: req.chatID, Role: domain.UserRoleUser, Subscribed: true, CreatedAt: r.now().UTC()}
	if req.from != nil {
		u.Username = req.from.UserName
		u.FirstName = req.from.FirstName
		u.LastName = req.from.LastName
	}
	if err := r.Repo.UpsertUser(ctx, u); err != nil {
		r.log.Error("UpsertUser failed", zap.Error(err))
		r.reply(ctx, req.chatID, "Profile initialization error. Please try again later.")
		return
	}
	stored, err := r.Repo.GetUser(ctx, req.chatID)
	subscribed := true
	if err == nil {
		subscribed = stored.Subscribed
	}
	if err := r.Messenger.SendMenu(ctx, req.chatID, startText, subscribed); err != nil {
		r.log.Warn("reply failed", zap.String("chat_id", req.chatID), zap.Error(err))
	}
}

func (r *Router) handleSubscription(ctx context.Context, req request, subscribed bool) {
	err := r.Repo.SetSubscribed(ctx, req.chatID, subscribed)
	if errors.Is(err, store.ErrNotFound) {
		// super admin without a row
		r.reply(ctx, req.chatID, notRegisteredText)
		return
	}
	if err != nil {
		r.log.Error("SetSubscribed failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	text := unsubscribedText
	if subscribed {
		text = subscribedText
	}
	if err := r.Messenger.SendMenu(ctx, req.chatID, text, subscribed); err != nil {
		r.log.Warn("reply failed", zap.String("chat_id", req.chatID), zap.Error(err))
	}
}

func (r *Router) handleMyInfo(ctx context.Context, req request) {
	u, err := r.Repo.GetUser(ctx, req.chatID)
	if err != nil {
		r.reply(ctx, req.chatID, notRegisteredText)
		return
	}
	role := string(u.Role)
	if req.chatID == r.SuperAdminID {
		role = "super admin"
	}
	r.reply(ctx, req.chatID, fmt.Sprintf(myInfoFmt, u.ChatID, u.DisplayName(), role, yesNo(u.Subscribed)))
}

func (r *Router) handleStatus(ctx context.Context, req request) {
	subscribed := false
	if u, err := r.Repo.GetUser(ctx, req.chatID); err == nil {
		subscribed = u.Subscribed
	}
	day := r.Calendar.Describe(ctx, r.now())
	mode := "unknown"
	if r.Scheduler != nil {
		mode = string(r.Scheduler.Status().Mode)
	}
	r.reply(ctx, req.chatID, fmt.Sprintf(statusFmt,
		yesNo(subscribed), domain.FormatThaiDate(day.Date), describeDay(day), mode))
}

func describeDay(d calendar.DayStatus) string {
	switch {
	case d.Weekend:
		return "weekend, no reminders"
	case d.Holiday != nil:
		return "holiday (" + d.Holiday.Name + "), no reminders"
	case d.Source == calendar.SourceFailOpen:
		return "business day (holiday data unavailable)"
	}
	return "business day"
}

func (r *Router) handleListHolidays(ctx context.Context, req request) {
	today := domain.DateOnly(r.now(), r.Calendar.Location())
	hs, err := r.Repo.ListHolidays(ctx, today)
	if err != nil {
		r.log.Error("ListHolidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	if len(hs) == 0 {
		r.reply(ctx, req.chatID, "No upcoming holidays.")
		return
	}
	r.reply(ctx, req.chatID, "📅 Upcoming holidays:\n"+formatHolidays(hs))
}

func (r *Router) handleSearchHoliday(ctx context.Context, req request) {
	q := strings.TrimSpace(req.args)
	if q == "" {
		r.reply(ctx, req.chatID, "Usage: /search_holiday <text|date>")
		return
	}
	// a date argument is searched by its storage key
	if d, err := domain.ParseHolidayDate(q, r.Calendar.Location()); err == nil {
		q = domain.DateKey(d)
	}
	hs, err := r.Repo.SearchHolidays(ctx, q)
	if err != nil {
		r.log.Error("SearchHolidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	if len(hs) == 0 {
		r.reply(ctx, req.chatID, "No holidays match "+q+".")
		return
	}
	r.reply(ctx, req.chatID, "🔎 Found:\n"+formatHolidays(hs))
}

func formatHolidays(hs []domain.Holiday) string {
	var b strings.Builder
	for i, h := range hs {
		if i == maxListed {
			fmt.Fprintf(&b, "… and %d more\n", len(hs)-maxListed)
			break
		}
		fmt.Fprintf(&b, "• %s %s\n", domain.FormatThaiDate(h.Date), h.Name)
	}
	return b.String()
}

// --- Admin commands ---

func (r *Router) handleServerTime(ctx context.Context, req request) {
	now := r.now()
	local := now.In(r.Calendar.Location())
	day := r.Calendar.Describe(ctx, now)
	mode, state := "unknown", "unknown"
	if r.Scheduler != nil {
		st := r.Scheduler.Status()
		mode, state = string(st.Mode), st.State
	}
	r.reply(ctx, req.chatID, fmt.Sprintf(serverFmt,
		now.UTC().Format(time.DateTime),
		local.Format(time.DateTime),
		describeDay(day),
		mode, state,
	))
}

func (r *Router) handlePreview(ctx context.Context, req request) {
	t, err := domain.ParseSlotType(strings.ToLower(req.args))
	if err != nil {
		r.reply(ctx, req.chatID, "Usage: /preview <morning|afternoon|evening>")
		return
	}
	r.reply(ctx, req.chatID, domain.ReminderMessage(t, r.now().In(r.Calendar.Location())))
}

func (r *Router) handleAddHoliday(ctx context.Context, req request) {
	rawDate, name := domain.SplitArgs(req.args)
	d, err := domain.ParseHolidayDate(rawDate, r.Calendar.Location())
	if err != nil {
		r.reply(ctx, req.chatID, "Usage: /add_holiday <YYYY-MM-DD|DD/MM/YYYY> [name]")
		return
	}
	if err := r.Repo.AddHoliday(ctx, domain.Holiday{Date: d, Name: name}); err != nil {
		r.log.Error("AddHoliday failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	r.log.Info("holiday added", zap.String("date", domain.DateKey(d)), zap.String("by", req.chatID))
	if name == "" {
		name = domain.DefaultHolidayName
	}
	r.reply(ctx, req.chatID, fmt.Sprintf("✅ Holiday saved: %s %s", domain.FormatThaiDate(d), name))
}

func (r *Router) handleDeleteHoliday(ctx context.Context, req request) {
	d, err := domain.ParseHolidayDate(req.args, r.Calendar.Location())
	if err != nil {
		r.reply(ctx, req.chatID, "Usage: /delete_holiday <YYYY-MM-DD|DD/MM/YYYY>")
		return
	}
	ok, err := r.Repo.DeleteHoliday(ctx, d)
	if err != nil {
		r.log.Error("DeleteHoliday failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	if !ok {
		r.reply(ctx, req.chatID, "No holiday on "+domain.FormatThaiDate(d)+".")
		return
	}
	r.log.Info("holiday deleted", zap.String("date", domain.DateKey(d)), zap.String("by", req.chatID))
	r.reply(ctx, req.chatID, "🗑 Holiday removed: "+domain.FormatThaiDate(d))
}

func (r *Router) loadHolidayFile() (*calendar.List, error) {
	if r.HolidaysFile == "" {
		return nil, errors.New("no holiday file configured")
	}
	return calendar.LoadFile(r.HolidaysFile, r.Calendar.Location())
}

func (r *Router) handleReloadHolidays(ctx context.Context, req request) {
	list, err := r.loadHolidayFile()
	if err != nil {
		r.log.Error("reload holidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, "❌ Could not load holiday file: "+err.Error())
		return
	}
	r.Calendar.SetFallback(list)
	r.log.Info("fallback holidays reloaded", zap.Int("count", list.Len()))
	r.reply(ctx, req.chatID, fmt.Sprintf("🔄 Fallback holiday list reloaded: %d dates.", list.Len()))
}

func (r *Router) handleImportHolidays(ctx context.Context, req request) {
	force := strings.EqualFold(strings.TrimSpace(req.args), "force")
	if !force {
		n, err := r.Repo.CountHolidays(ctx)
		if err != nil {
			r.log.Error("CountHolidays failed", zap.Error(err))
			r.reply(ctx, req.chatID, genericErrorText)
			return
		}
		if n > 0 {
			r.reply(ctx, req.chatID, fmt.Sprintf("Database already has %d holidays. Use /import_holidays force to replace them.", n))
			return
		}
	}
	list, err := r.loadHolidayFile()
	if err != nil {
		r.log.Error("import holidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, "❌ Could not load holiday file: "+err.Error())
		return
	}
	if err := r.Repo.ReplaceHolidays(ctx, list.Holidays()); err != nil {
		r.log.Error("ReplaceHolidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	r.log.Info("holidays imported", zap.Int("count", list.Len()), zap.Bool("force", force))
	r.reply(ctx, req.chatID, fmt.Sprintf("📥 Imported %d holidays.", list.Len()))
}

func (r *Router) handleSetAdmin(ctx context.Context, req request, grant bool) {
	target := strings.TrimSpace(req.args)
	if target == "" {
		r.reply(ctx, req.chatID, "Usage: /add_admin <chat_id> or /remove_admin <chat_id>")
		return
	}
	if !grant && target == r.SuperAdminID {
		r.reply(ctx, req.chatID, "The super admin cannot be removed.")
		return
	}
	role := domain.UserRoleUser
	if grant {
		role = domain.UserRoleAdmin
	}
	err := r.Repo.SetRole(ctx, target, role)
	if errors.Is(err, store.ErrNotFound) {
		r.reply(ctx, req.chatID, "Unknown chat "+target+". The user must send /start first.")
		return
	}
	if err != nil {
		r.log.Error("SetRole failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	r.log.Info("role changed", zap.String("chat_id", target), zap.String("role", string(role)), zap.String("by", req.chatID))
	r.reply(ctx, req.chatID, fmt.Sprintf("✅ %s is now %s.", target, role))
}

func (r *Router) handleListAdmins(ctx context.Context, req request) {
	admins, err := r.Repo.ListAdmins(ctx)
	if err != nil {
		r.log.Error("ListAdmins failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	var b strings.Builder
	b.WriteString("👮 Admins:\n")
	if r.SuperAdminID != "" {
		fmt.Fprintf(&b, "• %s (super admin)\n", r.SuperAdminID)
	}
	for i, u := range admins {
		if i == maxListed {
			fmt.Fprintf(&b, "… and %d more\n", len(admins)-maxListed)
			break
		}
		if u.ChatID == r.SuperAdminID {
			continue
		}
		fmt.Fprintf(&b, "• %s %s\n", u.ChatID, u.DisplayName())
	}
	r.reply(ctx, req.chatID, b.String())
}

func (r *Router) handleWebhookStatus(ctx context.Context, req request) {
	if r.Webhook == nil {
		r.reply(ctx, req.chatID, "Webhook is not used: the bot runs in polling mode.")
		return
	}
	r.reply(ctx, req.chatID, r.Webhook.Report(ctx))
}

func (r *Router) handleResetWebhook(ctx context.Context, req request) {
	if r.Webhook == nil {
		r.reply(ctx, req.chatID, "Webhook is not used: the bot runs in polling mode.")
		return
	}
	res, err := r.Webhook.Reset(ctx, r.WebhookURL, r.WebhookOptions)
	if err != nil {
		r.reply(ctx, req.chatID, fmt.Sprintf("❌ Webhook reset failed (%s): %v", res.State, err))
		return
	}
	r.reply(ctx, req.chatID, fmt.Sprintf("✅ Webhook reset: %s\nURL: %s", res.State, res.MaskedURL))
}

func (r *Router) handleDBStatus(ctx context.Context, req request) {
	if err := r.Repo.Ping(ctx); err != nil {
		r.log.Error("database ping failed", zap.Error(err))
		r.reply(ctx, req.chatID, "🗄 Database: unreachable")
		return
	}
	users, err := r.Repo.CountUsers(ctx)
	if err != nil {
		r.log.Error("CountUsers failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	subs, err := r.Repo.ListSubscribers(ctx)
	if err != nil {
		r.log.Error("ListSubscribers failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	holidays, err := r.Repo.CountHolidays(ctx)
	if err != nil {
		r.log.Error("CountHolidays failed", zap.Error(err))
		r.reply(ctx, req.chatID, genericErrorText)
		return
	}
	r.reply(ctx, req.chatID, fmt.Sprintf(
		"🗄 Database: connected\nUsers: %d\nSubscribers: %d\nHolidays: %d",
		users, len(subs), holidays))
}
