package telegram

import (
	"strings"
	"testing"
)

func TestCommandTable_Complete(t *testing.T) {
	seen := map[string]bool{}
	for c := Command(0); c < numCommands; c++ {
		name := commands[c].name
		if name == "" {
			t.Fatalf("command %d has no table entry", c)
		}
		if seen[name] {
			t.Fatalf("duplicate command name %q", name)
		}
		seen[name] = true
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		in   string
		cmd  Command
		args string
		ok   bool
	}{
		{"/start", CmdStart, "", true},
		{"/add_holiday 13/04/2568 Songkran Day", CmdAddHoliday, "13/04/2568 Songkran Day", true},
		{"/Status@ReminderBot", CmdStatus, "", true},
		{"  /preview   morning ", CmdPreview, "morning", true},
		{"/unknown", 0, "", false},
		{"hello", 0, "", false},
	}
	for _, c := range cases {
		cmd, args, ok := ParseCommand(c.in)
		if ok != c.ok {
			t.Fatalf("%q: want ok=%v, got %v", c.in, c.ok, ok)
		}
		if !ok {
			continue
		}
		if cmd != c.cmd || args != c.args {
			t.Fatalf("%q: want %s/%q, got %s/%q", c.in, c.cmd, c.args, cmd, args)
		}
	}
}

func TestHelpText_HidesAdminCommands(t *testing.T) {
	user := helpText(false)
	admin := helpText(true)

	if strings.Contains(user, "/add_admin") {
		t.Fatalf("user help lists admin command")
	}
	if !strings.Contains(admin, "/add_admin <chat_id>") {
		t.Fatalf("admin help misses /add_admin")
	}
	if !strings.Contains(user, "/subscribe") {
		t.Fatalf("user help misses /subscribe")
	}
}
