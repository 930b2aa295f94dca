package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	SetTitle(ctx context.Context, args []string) error
	AddNode(ctx context.Context, args []string) error
	EditNode(ctx context.Context, args []string) error
	Describe(ctx context.Context, args []string) error
	MoveNode(ctx context.Context, args []string) error
	TagNode(ctx context.Context, args []string) error
	ColorNode(ctx context.Context, args []string) error
	SelectNode(ctx context.Context, args []string) error
	RemoveNode(ctx context.Context, args []string) error
	Connect(ctx context.Context, args []string) error
	Disconnect(ctx context.Context, args []string) error
	List(ctx context.Context) error
	Search(ctx context.Context, args []string) error

	Docs(ctx context.Context) error
	Open(ctx context.Context, args []string) error
	Generate(ctx context.Context, args []string) error
	Save(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, forgot, exit"
	helpLoggedIn  = "Available commands: whoami, logout, title, add, edit, desc, move, tag, color, select, rm, " +
		"connect, disconnect, (l)ist, search, docs, open, generate, save, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
//
// The first token is the command, the rest are its arguments. Editing
// commands require a logged-in user. Errors from handlers are printed and
// the loop continues; it ends on EOF, "exit"/"quit" or when ctx is done.
//
//	Not logged in:
//	  register | login | forgot | help | exit
//
//	Logged in:
//	  whoami, logout
//	  title <text>                 rename the document
//	  add [title]                  add a node
//	  edit <node> <title>          rename a node
//	  desc <node> [text]           set or clear a description
//	  move <node> <x> <y>
//	  tag <node> <tag>             toggle a tag
//	  color <node> <#hex>          background, border derived from it
//	  select <node>
//	  rm <node>                    remove a node and its connections
//	  connect <node> <node>
//	  disconnect <connection>
//	  list | l
//	  search [keyword]             highlight and print matches
//	  docs, open <document>
//	  generate <topic>             replace the document with a generated one
//	  save                         save now
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("mm%s> ", statusFn()))

		line, err := readLine(ctx, reader)
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}

		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

type lineResult struct {
	line string
	err  error
}

// readLine reads one line, giving up when ctx is done. Only one line is
// read per call so prompts issued by handlers see the following input.
func readLine(ctx context.Context, reader *bufio.Reader) (string, error) {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- lineResult{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		return r.line, r.err
	}
}

var errNotLoggedIn = errors.New("please log in first")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "forgot":
		return a.Forgot(ctx)
	}

	handlers := map[string]func() error{
		"whoami":     func() error { return a.WhoAmI(ctx) },
		"logout":     func() error { return a.Logout(ctx) },
		"title":      func() error { return a.SetTitle(ctx, args) },
		"add":        func() error { return a.AddNode(ctx, args) },
		"edit":       func() error { return a.EditNode(ctx, args) },
		"desc":       func() error { return a.Describe(ctx, args) },
		"move":       func() error { return a.MoveNode(ctx, args) },
		"tag":        func() error { return a.TagNode(ctx, args) },
		"color":      func() error { return a.ColorNode(ctx, args) },
		"select":     func() error { return a.SelectNode(ctx, args) },
		"rm":         func() error { return a.RemoveNode(ctx, args) },
		"connect":    func() error { return a.Connect(ctx, args) },
		"disconnect": func() error { return a.Disconnect(ctx, args) },
		"l":          func() error { return a.List(ctx) },
		"list":       func() error { return a.List(ctx) },
		"search":     func() error { return a.Search(ctx, args) },
		"docs":       func() error { return a.Docs(ctx) },
		"open":       func() error { return a.Open(ctx, args) },
		"generate":   func() error { return a.Generate(ctx, args) },
		"save":       func() error { return a.Save(ctx) },
	}

	h, ok := handlers[cmd]
	if !ok {
		printlnFn("Unknown command:", cmd)
		return nil
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	return h()
}
