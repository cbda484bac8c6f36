package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Retry(ctx context.Context) error
	Page(ctx context.Context, arg string) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Find(ctx context.Context, name string) error
	ClearSearch(ctx context.Context) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Show(ctx context.Context, id string) error
	Export(ctx context.Context, format string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit", or until
// ctx is done.
//
// The first word of a line is the command; the rest are its arguments.
// Without a session only help, register, login and exit are accepted.
// Errors returned by the handlers are ignored here; handlers print their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}

		fmt.Fprintf(w, "sk%s> ", prefixed(statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(w, helpText(a.isLoggedIn()))
			continue
		case "register":
			_ = a.Register(ctx)
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnown(cmd) {
				fmt.Fprintln(w, "Please log in first.")
			} else {
				fmt.Fprintln(w, "Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "logout":
			_ = a.Logout(ctx)
		case "l", "list":
			_ = a.List(ctx)
		case "retry":
			_ = a.Retry(ctx)
		case "next":
			_ = a.Next(ctx)
		case "prev":
			_ = a.Prev(ctx)
		case "clear":
			_ = a.ClearSearch(ctx)
		case "add":
			_ = a.Add(ctx)
		case "page":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: page <n>")
				continue
			}
			_ = a.Page(ctx, args[0])
		case "find":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: find <name>")
				continue
			}
			_ = a.Find(ctx, strings.Join(args, " "))
		case "edit", "delete", "show":
			if len(args) != 1 {
				fmt.Fprintf(w, "Usage: %s <id>\n", cmd)
				continue
			}
			switch cmd {
			case "edit":
				_ = a.Edit(ctx, args[0])
			case "delete":
				_ = a.Delete(ctx, args[0])
			default:
				_ = a.Show(ctx, args[0])
			}
		case "export":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: export excel|pdf")
				continue
			}
			_ = a.Export(ctx, args[0])
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}

var sessionCommands = map[string]struct{}{
	"logout": {}, "l": {}, "list": {}, "retry": {}, "next": {}, "prev": {},
	"clear": {}, "add": {}, "page": {}, "find": {}, "edit": {}, "delete": {},
	"show": {}, "export": {},
}

func isKnown(cmd string) bool {
	_, ok := sessionCommands[cmd]
	return ok
}

func prefixed(status string) string {
	if status == "" {
		return ""
	}
	return " " + status
}
