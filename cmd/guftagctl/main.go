package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/matheus3301/guftagu/internal/api"
	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/session"
	"github.com/matheus3301/guftagu/internal/verify"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

func main() {
	sessionFlag := flag.String("session", "", "session name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	sessionName := session.Resolve(*sessionFlag)
	if err := session.ValidateName(sessionName); err != nil {
		fatalf("error: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	// The security code is computed locally; no daemon needed.
	if args[0] == "code" {
		cmdCode(args[1:])
		return
	}

	socketPath := session.SocketPath(sessionName)
	c, err := api.Dial(socketPath)
	if err != nil {
		fatalf("error: cannot connect to daemon for session %q: %v", sessionName, err)
	}
	defer func() { _ = c.Close() }()

	if args[0] == "watch" {
		cmdWatch(c, args[1:], *jsonFlag)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if len(args)-1 < cmd.minArgs {
		fatalf("usage: guftagctl %s %s", args[0], cmd.usage)
	}
	method, req := cmd.build(args[1:])
	resp, err := c.Call(ctx, method, req)
	if err != nil {
		fatalf("error: %v", err)
	}
	if *jsonFlag {
		outputJSON(resp)
		return
	}
	cmd.print(resp)
}

type command struct {
	usage   string
	help    string
	minArgs int
	build   func(args []string) (string, map[string]any)
	print   func(resp *structpb.Struct)
}

var commands = map[string]command{
	"status": {
		help: "Show session status",
		build: func([]string) (string, map[string]any) {
			return api.MethodGetStatus, nil
		},
		print: printStatus,
	},
	"chats": {
		usage: "[--archived] [query]",
		help:  "List chats, pinned first",
		build: func(args []string) (string, map[string]any) {
			req := map[string]any{}
			for _, a := range args {
				if a == "--archived" {
					req["archived"] = true
				} else {
					req["query"] = a
				}
			}
			return api.MethodListChats, req
		},
		print: printChats,
	},
	"messages": {
		usage: "[chat]",
		help:  "List messages of a chat (default: the open chat)",
		build: func(args []string) (string, map[string]any) {
			return api.MethodListMessages, map[string]any{"chat_id": argAt(args, 0)}
		},
		print: printMessages,
	},
	"open": {
		usage:   "<chat>",
		help:    "Open a chat",
		minArgs: 1,
		build: func(args []string) (string, map[string]any) {
			return api.MethodSelectChat, map[string]any{"chat_id": args[0]}
		},
		print: func(resp *structpb.Struct) {
			chat := object(resp, "chat")
			fmt.Printf("Opened %s\n", text(chat, "name"))
		},
	},
	"send": {
		usage:   "<chat> <text...>",
		help:    "Send a text message",
		minArgs: 2,
		build: func(args []string) (string, map[string]any) {
			return api.MethodSendMessage, map[string]any{
				"chat_id": args[0],
				"text":    strings.Join(args[1:], " "),
			}
		},
		print: func(resp *structpb.Struct) {
			msg := object(resp, "message")
			fmt.Printf("Sent %s (%s)\n", text(msg, "id"), text(msg, "status"))
		},
	},
	"search": {
		usage:   "<query> [chat]",
		help:    "Search messages across chats",
		minArgs: 1,
		build: func(args []string) (string, map[string]any) {
			return api.MethodSearchMessages, map[string]any{"query": args[0], "chat_id": argAt(args, 1)}
		},
		print: printHits,
	},
	"inbound": {
		usage:   "<chat> <sender> <text...>",
		help:    "Inject a message from a remote sender",
		minArgs: 3,
		build: func(args []string) (string, map[string]any) {
			return api.MethodInbound, map[string]any{
				"chat_id":   args[0],
				"sender_id": args[1],
				"text":      strings.Join(args[2:], " "),
			}
		},
		print: func(resp *structpb.Struct) {
			msg := object(resp, "message")
			fmt.Printf("Delivered %s to %s\n", text(msg, "id"), text(msg, "chat_id"))
		},
	},
	"typing": {
		usage:   "<chat> <on|off>",
		help:    "Inject a remote typing signal",
		minArgs: 2,
		build: func(args []string) (string, map[string]any) {
			return api.MethodTyping, map[string]any{"chat_id": args[0], "typing": args[1] == "on"}
		},
		print: printApplied,
	},
	"receipt": {
		usage:   "<message> <delivered|read>",
		help:    "Inject a delivery receipt",
		minArgs: 2,
		build: func(args []string) (string, map[string]any) {
			return api.MethodReceipt, map[string]any{"message_id": args[0], "status": args[1]}
		},
		print: printApplied,
	},
	"notifications": {
		help: "List in-app notifications",
		build: func([]string) (string, map[string]any) {
			return api.MethodListNotifications, nil
		},
		print: printNotifications,
	},
	"read-all": {
		help: "Mark every notification as read",
		build: func([]string) (string, map[string]any) {
			return api.MethodMarkAllRead, nil
		},
		print: func(*structpb.Struct) { fmt.Println("All notifications read.") },
	},
	"call": {
		usage:   "<user> [voice|video]",
		help:    "Start a call",
		minArgs: 1,
		build: func(args []string) (string, map[string]any) {
			return api.MethodStartCall, map[string]any{"user_id": args[0], "type": argAt(args, 1)}
		},
		print: func(resp *structpb.Struct) {
			fmt.Printf("Calling %s (%s)\n", text(resp, "name"), text(resp, "phase"))
		},
	},
	"hangup": {
		help: "End the active call",
		build: func([]string) (string, map[string]any) {
			return api.MethodEndCall, nil
		},
		print: func(resp *structpb.Struct) {
			c := object(resp, "call")
			if d := text(c, "duration"); d != "" {
				fmt.Printf("Call with %s ended after %s\n", text(c, "user_name"), d)
			} else {
				fmt.Printf("Call with %s ended\n", text(c, "user_name"))
			}
		},
	},
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: guftagctl [--session <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	names := []string{"status", "chats", "messages", "open", "send", "search", "inbound",
		"typing", "receipt", "notifications", "read-all", "call", "hangup"}
	for _, n := range names {
		c := commands[n]
		fmt.Fprintf(os.Stderr, "  %-36s %s\n", strings.TrimSpace(n+" "+c.usage), c.help)
	}
	fmt.Fprintf(os.Stderr, "  %-36s %s\n", "watch [namespace]", "Stream events (e.g. message., call.)")
	fmt.Fprintf(os.Stderr, "  %-36s %s\n", "code <user> [--qr]", "Show the security code for a chat")
}

func printStatus(resp *structpb.Struct) {
	fmt.Printf("Session:       %s\n", text(resp, "session"))
	fmt.Printf("Uptime:        %s\n", (time.Duration(num(resp, "uptime_ms")) * time.Millisecond).Round(time.Second))
	fmt.Printf("Chats:         %d (%d unread)\n", num(resp, "chats"), num(resp, "unread"))
	fmt.Printf("Messages:      %d\n", num(resp, "messages"))
	fmt.Printf("Notifications: %d\n", num(resp, "notifications"))
	fmt.Printf("Timers:        %d\n", num(resp, "timers"))
	if active := text(resp, "active_chat"); active != "" {
		fmt.Printf("Open chat:     %s\n", active)
	}
	if phase := text(resp, "call_phase"); phase != "" {
		fmt.Printf("Call:          %s with %s (%ds)\n", phase, text(resp, "call_with"), num(resp, "call_elapsed"))
	}
}

func printChats(resp *structpb.Struct) {
	pinned := list(resp, "pinned")
	chats := list(resp, "chats")
	if len(pinned)+len(chats) == 0 {
		fmt.Println("No chats.")
		return
	}
	for _, c := range pinned {
		printChat(c, "*")
	}
	for _, c := range chats {
		printChat(c, " ")
	}
}

func printChat(c *structpb.Struct, mark string) {
	unread := ""
	if n := num(c, "unread"); n > 0 {
		unread = fmt.Sprintf("(%d)", n)
	}
	at := time.UnixMilli(int64(num(c, "last_activity")))
	fmt.Printf("%s %-8s %-20s %-5s %s  %s\n", mark, text(c, "id"), text(c, "name"), unread,
		model.Relative(at, time.Now()), truncate(text(c, "last_message"), 40))
}

func printMessages(resp *structpb.Struct) {
	msgs := list(resp, "messages")
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	for _, m := range msgs {
		at := time.UnixMilli(int64(num(m, "sent_at")))
		sender := text(m, "sender_name")
		status := ""
		if boolField(m, "from_me") {
			sender = "You"
			status = " [" + text(m, "status") + "]"
		}
		star := ""
		if boolField(m, "starred") {
			star = " *"
		}
		body := text(m, "text")
		if t := text(m, "type"); t != string(model.TypeText) {
			body = "[" + t + "] " + text(m, "file_name") + body
		}
		fmt.Printf("%s  %-12s %s%s%s\n", model.Clock(at), sender, body, status, star)
	}
}

func printHits(resp *structpb.Struct) {
	hits := list(resp, "hits")
	if len(hits) == 0 {
		fmt.Println("No results.")
		return
	}
	for _, h := range hits {
		fmt.Printf("%-20s %-12s %s\n", text(h, "chat_name"), text(h, "sender_name"), text(h, "snippet"))
	}
	if boolField(resp, "has_more") {
		fmt.Println("...")
	}
}

func printNotifications(resp *structpb.Struct) {
	notes := list(resp, "notifications")
	if len(notes) == 0 {
		fmt.Println("No notifications.")
		return
	}
	for _, n := range notes {
		mark := " "
		if !boolField(n, "read") {
			mark = "*"
		}
		fmt.Printf("%s %-24s %s\n", mark, text(n, "title"), text(n, "body"))
	}
	fmt.Printf("%d unread\n", num(resp, "unread"))
}

func printApplied(resp *structpb.Struct) {
	if boolField(resp, "applied") {
		fmt.Println("Applied.")
	} else {
		fmt.Println("Ignored.")
	}
}

func cmdWatch(c *api.Client, args []string, jsonOut bool) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, err := c.Watch(ctx, argAt(args, 0))
	if err != nil {
		fatalf("error: %v", err)
	}
	for {
		env, err := stream.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fatalf("error: %v", err)
		}
		if jsonOut {
			b, _ := protojson.Marshal(env)
			fmt.Println(string(b))
			continue
		}
		at := time.UnixMilli(int64(num(env, "occurred_at_unix_ms")))
		payload, _ := protojson.Marshal(object(env, "payload"))
		fmt.Printf("%s %-22s %s\n", at.Format("15:04:05.000"), text(env, "kind"), payload)
	}
}

func cmdCode(args []string) {
	fs := flag.NewFlagSet("code", flag.ExitOnError)
	qr := fs.Bool("qr", false, "also print a QR code")
	_ = fs.Parse(args)
	if fs.NArg() < 1 {
		fatalf("usage: guftagctl code <user> [--qr]")
	}
	code := verify.Code(model.Me, fs.Arg(0))
	fmt.Println(verify.Format(code))
	if *qr {
		out, err := verify.RenderQR(code)
		if err != nil {
			fatalf("error: %v", err)
		}
		fmt.Print(out)
	}
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func text(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func num(s *structpb.Struct, key string) int {
	return int(s.GetFields()[key].GetNumberValue())
}

func boolField(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func object(s *structpb.Struct, key string) *structpb.Struct {
	return s.GetFields()[key].GetStructValue()
}

func list(s *structpb.Struct, key string) []*structpb.Struct {
	var out []*structpb.Struct
	for _, v := range s.GetFields()[key].GetListValue().GetValues() {
		out = append(out, v.GetStructValue())
	}
	return out
}

func outputJSON(m proto.Message) {
	b, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
		return
	}
	fmt.Println(string(b))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
