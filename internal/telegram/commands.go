package telegram

import "strings"

// Command is one bot command. The set is closed: every value below
// numCommands has a table entry and a case in Router.execute.
type Command int

const (
	CmdStart Command = iota
	CmdHelp
	CmdSubscribe
	CmdUnsubscribe
	CmdMyInfo
	CmdStatus
	CmdListHolidays
	CmdSearchHoliday
	CmdServerTime
	CmdPreview
	CmdAddHoliday
	CmdDeleteHoliday
	CmdReloadHolidays
	CmdImportHolidays
	CmdAddAdmin
	CmdRemoveAdmin
	CmdListAdmins
	CmdWebhookStatus
	CmdResetWebhook
	CmdDBStatus
	numCommands
)

// Permission is who may run a command.
type Permission int

const (
	PermPublic Permission = iota // anyone, even unknown chats
	PermUser                     // chats registered with /start
	PermAdmin
)

type commandSpec struct {
	name string
	perm Permission
	args string
	help string
}

var commands = [numCommands]commandSpec{
	CmdStart:          {"start", PermPublic, "", "register and subscribe"},
	CmdHelp:           {"help", PermPublic, "", "show commands"},
	CmdSubscribe:      {"subscribe", PermUser, "", "receive reminders"},
	CmdUnsubscribe:    {"unsubscribe", PermUser, "", "stop reminders"},
	CmdMyInfo:         {"myinfo", PermUser, "", "show your profile"},
	CmdStatus:         {"status", PermUser, "", "subscription and today's status"},
	CmdListHolidays:   {"list_holidays", PermUser, "", "upcoming holidays"},
	CmdSearchHoliday:  {"search_holiday", PermUser, "<text|date>", "find holidays"},
	CmdServerTime:     {"servertime", PermAdmin, "", "server clock and scheduler"},
	CmdPreview:        {"preview", PermAdmin, "<morning|afternoon|evening>", "send a reminder to yourself"},
	CmdAddHoliday:     {"add_holiday", PermAdmin, "<date> [name]", "add or rename a holiday"},
	CmdDeleteHoliday:  {"delete_holiday", PermAdmin, "<date>", "remove a holiday"},
	CmdReloadHolidays: {"reload_holidays", PermAdmin, "", "reload the fallback holiday file"},
	CmdImportHolidays: {"import_holidays", PermAdmin, "[force]", "copy the holiday file into the database"},
	CmdAddAdmin:       {"add_admin", PermAdmin, "<chat_id>", "grant admin"},
	CmdRemoveAdmin:    {"remove_admin", PermAdmin, "<chat_id>", "revoke admin"},
	CmdListAdmins:     {"list_admins", PermAdmin, "", "list admins"},
	CmdWebhookStatus:  {"webhook_status", PermAdmin, "", "webhook report"},
	CmdResetWebhook:   {"reset_webhook", PermAdmin, "", "delete and set the webhook again"},
	CmdDBStatus:       {"dbstatus", PermAdmin, "", "database counts"},
}

func (c Command) String() string {
	if c < 0 || c >= numCommands {
		return "unknown"
	}
	return commands[c].name
}

// Permission returns who may run c.
func (c Command) Permission() Permission { return commands[c].perm }

var commandByName = func() map[string]Command {
	m := make(map[string]Command, numCommands)
	for c := Command(0); c < numCommands; c++ {
		m[commands[c].name] = c
	}
	return m
}()

// ParseCommand splits "/name@bot args" into the command and its arguments.
func ParseCommand(text string) (cmd Command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return 0, "", false
	}
	head, rest, _ := strings.Cut(text[1:], " ")
	if i := strings.IndexByte(head, '@'); i >= 0 {
		head = head[:i]
	}
	cmd, ok = commandByName[strings.ToLower(head)]
	return cmd, strings.TrimSpace(rest), ok
}

// helpText lists the commands visible at the given permission.
func helpText(admin bool) string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for c := Command(0); c < numCommands; c++ {
		def := commands[c]
		if def.perm == PermAdmin && !admin {
			continue
		}
		b.WriteString("/" + def.name)
		if def.args != "" {
			b.WriteString(" " + def.args)
		}
		b.WriteString(" - " + def.help + "\n")
	}
	return b.String()
}
