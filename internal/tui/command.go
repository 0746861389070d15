package tui

import (
	"fmt"
	"strings"

	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/tui/ui"
)

// Command represents a parsed command.
type Command struct {
	Name string
	Args string
}

// ParseCommand parses a command string (without the leading ':'). Names are
// lowercased and aliases resolved to their full name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(input), ":"))
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	if full, ok := aliases[cmd.Name]; ok {
		cmd.Name = full
	}
	return cmd
}

var aliases = map[string]string{
	"q":    "quit",
	"h":    "help",
	"c":    "chat",
	"s":    "search",
	"n":    "notifications",
	"st":   "status",
	"dm":   "new",
	"a":    "attach",
	"vc":   "video",
	"ring": "call",
}

// commandHelp is listed on the help page, in this order.
var commandHelp = []ui.MenuHint{
	{Key: ":chat <name>", Description: "Open a chat, or start one with a contact"},
	{Key: ":new <contact id>", Description: "Start a direct chat"},
	{Key: ":group <name> <id>...", Description: "Create a group with contacts"},
	{Key: ":search <query>", Description: "Search messages in all chats"},
	{Key: ":chats / :calls / :status", Description: "Switch section"},
	{Key: ":notifications", Description: "Open the notification center"},
	{Key: ":attach <path>", Description: "Send a file to the open chat"},
	{Key: ":call / :video", Description: "Call the open chat"},
	{Key: ":hangup", Description: "End the call"},
	{Key: ":pin / :mute / :archive", Description: "Toggle on the open chat"},
	{Key: ":clear / :delete", Description: "Clear or delete the open chat"},
	{Key: ":exit", Description: "Leave the open group"},
	{Key: ":block / :unblock", Description: "Block or unblock the open contact"},
	{Key: ":previews on|off", Description: "Message previews in notifications"},
	{Key: ":help", Description: "Show this help"},
	{Key: ":quit", Description: "Quit"},
}

// execute runs a command from the prompt.
func (a *App) execute(cmd Command) {
	st := a.vm.Store
	active := st.ActiveChatID()
	needChat := func() bool {
		if active == "" {
			a.vm.Flash.Warn(":" + cmd.Name + " needs an open chat")
			return false
		}
		return true
	}

	switch cmd.Name {
	case "":
	case "quit":
		a.app.Stop()
	case "help":
		a.showHelp()
	case "chat":
		if _, err := a.vm.OpenByName(cmd.Args); err != nil {
			a.vm.Flash.Err(fmt.Errorf("%w: %s", err, cmd.Args))
			break
		}
		a.showThread()
	case "new":
		if _, ok := st.CreateChat(cmd.Args); !ok {
			a.vm.Flash.Warn("unknown contact " + cmd.Args)
			break
		}
		a.showThread()
	case "group":
		fields := strings.Fields(cmd.Args)
		if len(fields) < 2 {
			a.vm.Flash.Warn("usage: :group <name> <contact id>...")
			break
		}
		if _, ok := st.CreateGroup(fields[0], fields[1:]); !ok {
			a.vm.Flash.Warn("group needs at least one known contact")
			break
		}
		a.showThread()
	case "search":
		a.pages.Push(pageSearch)
		a.search.SetQuery(cmd.Args)
		if cmd.Args != "" {
			a.runSearch(cmd.Args)
		}
	case "chats":
		a.goSection(model.SectionChats)
	case "calls":
		a.goSection(model.SectionCalls)
	case "status":
		a.goSection(model.SectionStatus)
	case "notifications":
		a.openNotifications()
	case "call", "video":
		if !needChat() {
			break
		}
		typ := model.CallVoice
		if cmd.Name == "video" {
			typ = model.CallVideo
		}
		a.startCall(typ)
	case "attach":
		if !needChat() {
			break
		}
		msg, err := a.vm.Attach(cmd.Args)
		if err != nil {
			a.vm.Flash.Err(err)
			break
		}
		a.vm.Flash.Infof("sent %s as %s", msg.Payload.FileName, msg.Type)
	case "hangup":
		a.hangUp()
	case "pin":
		if needChat() {
			st.TogglePinChat(active)
		}
	case "mute":
		if needChat() {
			st.ToggleMuteChat(active)
		}
	case "archive":
		if needChat() {
			st.ToggleArchiveChat(active)
		}
	case "clear":
		if needChat() {
			st.ClearChat(active)
			a.vm.Flash.Info("chat cleared")
		}
	case "delete":
		if needChat() {
			st.DeleteChat(active)
			a.vm.Flash.Info("chat deleted")
		}
	case "exit":
		if !needChat() {
			break
		}
		if chat, ok := st.Chat(active); !ok || !chat.IsGroup {
			a.vm.Flash.Warn(":exit only works in groups")
			break
		}
		st.ExitGroup(active)
		a.vm.Flash.Info("left the group")
	case "block", "unblock":
		if !needChat() {
			break
		}
		if st.IsBlocked(active) == (cmd.Name == "block") {
			break
		}
		a.toggleBlock(active)
	case "previews":
		on := cmd.Args != "off"
		st.UpdateNotificationSettings(model.NotificationPatch{Previews: model.Ptr(on)})
		a.vm.Flash.Infof("notification previews %s", map[bool]string{true: "on", false: "off"}[on])
	default:
		a.vm.Flash.Warn("unknown command :" + cmd.Name)
	}
	a.refresh()
}
