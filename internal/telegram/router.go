package telegram

import (
	"context"
	"errors"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Arnutt-N/time-reminder/internal/calendar"
	"github.com/Arnutt-N/time-reminder/internal/domain"
	"github.com/Arnutt-N/time-reminder/internal/scheduler"
	"github.com/Arnutt-N/time-reminder/internal/store"
	"github.com/Arnutt-N/time-reminder/internal/webhook"
)

// Messenger sends replies.
type Messenger interface {
	SendMessage(ctx context.Context, chatID string, text string) error
	SendMenu(ctx context.Context, chatID string, text string, subscribed bool) error
}

// WebhookControl is the admin surface of the webhook manager.
type WebhookControl interface {
	Reset(ctx context.Context, rawURL string, opts webhook.Options) (webhook.Result, error)
	Report(ctx context.Context) string
}

// SchedulerStatus reports the trigger coordinator state.
type SchedulerStatus interface {
	Status() scheduler.Status
}

// Deps wires the Router.
type Deps struct {
	Repo      store.Repo
	Messenger Messenger
	Calendar  *calendar.Resolver
	Scheduler SchedulerStatus
	Slots     *domain.SlotTable
	Webhook   WebhookControl // nil in polling mode

	SuperAdminID   string
	HolidaysFile   string
	WebhookURL     string
	WebhookOptions webhook.Options
}

// Router turns updates into commands and runs them.
type Router struct {
	Deps
	log *zap.Logger
	now func() time.Time
}

// NewRouter creates a new Telegram router.
func NewRouter(deps Deps, log *zap.Logger) *Router {
	return &Router{Deps: deps, log: log, now: time.Now}
}

// request is one command invocation.
type request struct {
	chatID string
	from   *tgbotapi.User
	args   string
}

// HandleUpdate routes a single update. Panics in handlers are logged and
// swallowed so a bad update never takes down the receiver.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("update handler panicked", zap.Int("update_id", upd.UpdateID), zap.Any("panic", p))
		}
	}()

	switch {
	case upd.Message != nil:
		r.handleMessage(ctx, upd.Message)
	case upd.MyChatMember != nil:
		m := upd.MyChatMember
		r.log.Info("bot membership changed",
			zap.Int64("chat_id", m.Chat.ID),
			zap.String("status", m.NewChatMember.Status),
		)
	case upd.CallbackQuery != nil:
		// no inline keyboards are sent; nothing to answer
	}
}

func (r *Router) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	cmd, args, ok := ParseCommand(msg.Text)
	if !ok {
		if msg.IsCommand() {
			r.reply(ctx, strconv.FormatInt(msg.Chat.ID, 10), unknownCommandText)
		}
		return
	}
	req := request{chatID: strconv.FormatInt(msg.Chat.ID, 10), from: msg.From, args: args}

	if !r.permitted(ctx, cmd, req) {
		return
	}
	r.log.Debug("command", zap.String("cmd", cmd.String()), zap.String("chat_id", req.chatID))
	r.execute(ctx, cmd, req)
}

// permitted enforces the command's permission and replies on refusal.
func (r *Router) permitted(ctx context.Context, cmd Command, req request) bool {
	switch cmd.Permission() {
	case PermPublic:
		return true
	case PermUser:
		if r.isAdmin(ctx, req.chatID) {
			return true
		}
		_, err := r.Repo.GetUser(ctx, req.chatID)
		if err == nil {
			return true
		}
		if errors.Is(err, store.ErrNotFound) {
			r.reply(ctx, req.chatID, notRegisteredText)
		} else {
			r.log.Error("GetUser failed", zap.Error(err))
			r.reply(ctx, req.chatID, genericErrorText)
		}
		return false
	case PermAdmin:
		if r.isAdmin(ctx, req.chatID) {
			return true
		}
		r.log.Warn("admin command refused", zap.String("cmd", cmd.String()), zap.String("chat_id", req.chatID))
		r.reply(ctx, req.chatID, adminOnlyText)
		return false
	}
	return false
}

// execute runs cmd. The switch covers every Command.
func (r *Router) execute(ctx context.Context, cmd Command, req request) {
	switch cmd {
	case CmdStart:
		r.handleStart(ctx, req)
	case CmdHelp:
		r.reply(ctx, req.chatID, helpText(r.isAdmin(ctx, req.chatID)))
	case CmdSubscribe:
		r.handleSubscription(ctx, req, true)
	case CmdUnsubscribe:
		r.handleSubscription(ctx, req, false)
	case CmdMyInfo:
		r.handleMyInfo(ctx, req)
	case CmdStatus:
		r.handleStatus(ctx, req)
	case CmdListHolidays:
		r.handleListHolidays(ctx, req)
	case CmdSearchHoliday:
		r.handleSearchHoliday(ctx, req)
	case CmdServerTime:
		r.handleServerTime(ctx, req)
	case CmdPreview:
		r.handlePreview(ctx, req)
	case CmdAddHoliday:
		r.handleAddHoliday(ctx, req)
	case CmdDeleteHoliday:
		r.handleDeleteHoliday(ctx, req)
	case CmdReloadHolidays:
		r.handleReloadHolidays(ctx, req)
	case CmdImportHolidays:
		r.handleImportHolidays(ctx, req)
	case CmdAddAdmin:
		r.handleSetAdmin(ctx, req, true)
	case CmdRemoveAdmin:
		r.handleSetAdmin(ctx, req, false)
	case CmdListAdmins:
		r.handleListAdmins(ctx, req)
	case CmdWebhookStatus:
		r.handleWebhookStatus(ctx, req)
	case CmdResetWebhook:
		r.handleResetWebhook(ctx, req)
	case CmdDBStatus:
		r.handleDBStatus(ctx, req)
	default:
		r.log.Error("unhandled command", zap.Int("cmd", int(cmd)))
	}
}

// isAdmin checks the super admin first, then the stored role. A store
// failure leaves only the super admin.
func (r *Router) isAdmin(ctx context.Context, chatID string) bool {
	if r.SuperAdminID != "" && chatID == r.SuperAdminID {
		return true
	}
	u, err := r.Repo.GetUser(ctx, chatID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.log.Warn("admin lookup failed", zap.String("chat_id", chatID), zap.Error(err))
		}
		return false
	}
	return u.IsAdmin()
}

func (r *Router) reply(ctx context.Context, chatID, text string) {
	if err := r.Messenger.SendMessage(ctx, chatID, text); err != nil {
		r.log.Warn("reply failed", zap.String("chat_id", chatID), zap.Error(err))
	}
}
