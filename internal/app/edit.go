package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mindmap/internal/models"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveNode accepts a full node id or a unique prefix of one.
func (a *App) resolveNode(ref string) (string, error) {
	var ids []string
	for _, n := range a.editor.Nodes() {
		ids = append(ids, n.ID)
	}
	return resolve("node", ref, ids)
}

func (a *App) resolveConnection(ref string) (string, error) {
	var ids []string
	for _, c := range a.editor.Connections() {
		ids = append(ids, c.ID)
	}
	return resolve("connection", ref, ids)
}

func resolve(kind, ref string, ids []string) (string, error) {
	if slices.Contains(ids, ref) {
		return ref, nil
	}
	var match string
	for _, id := range ids {
		if strings.HasPrefix(id, ref) {
			if match != "" {
				return "", fmt.Errorf("%s %q is ambiguous", kind, ref)
			}
			match = id
		}
	}
	if match == "" {
		return "", fmt.Errorf("no %s matches %q", kind, ref)
	}
	return match, nil
}

func usage(u string) error {
	return errors.New("usage: " + u)
}

func (a *App) SetTitle(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usage("title <text>")
	}
	return a.editor.SetTitle(strings.Join(args, " "))
}

func (a *App) AddNode(_ context.Context, args []string) error {
	n, err := a.editor.AddNode(strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.printf("Added %s %q\n", shortID(n.ID), n.Title)
	return nil
}

func (a *App) EditNode(_ context.Context, args []string) error {
	if len(args) < 2 {
		return usage("edit <node> <title>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	title := strings.Join(args[1:], " ")
	return a.editor.UpdateNode(id, func(n *models.Node) { n.Title = title })
}

func (a *App) Describe(_ context.Context, args []string) error {
	if len(args) < 1 {
		return usage("desc <node> [text]")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	text := strings.Join(args[1:], " ")
	return a.editor.UpdateNode(id, func(n *models.Node) {
		if text == "" {
			n.Description = nil
			return
		}
		n.Description = &text
	})
}

func (a *App) MoveNode(_ context.Context, args []string) error {
	if len(args) != 3 {
		return usage("move <node> <x> <y>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	x, errX := strconv.ParseFloat(args[1], 64)
	y, errY := strconv.ParseFloat(args[2], 64)
	if errX != nil || errY != nil {
		return usage("move <node> <x> <y> (numbers)")
	}
	return a.editor.UpdateNode(id, func(n *models.Node) { n.X, n.Y = x, y })
}

// TagNode adds the tag, or removes it when already present.
func (a *App) TagNode(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usage("tag <node> <tag>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	tag := args[1]
	return a.editor.UpdateNode(id, func(n *models.Node) {
		if i := slices.Index(n.Tags, tag); i >= 0 {
			n.Tags = slices.Delete(n.Tags, i, i+1)
			return
		}
		n.Tags = append(n.Tags, tag)
	})
}

func (a *App) ColorNode(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usage("color <node> <#hex>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	c, err := models.ParseColor(args[1])
	if err != nil {
		return err
	}
	return a.editor.SetNodeColor(id, c)
}

func (a *App) SelectNode(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("select <node>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	return a.editor.Select(id)
}

func (a *App) RemoveNode(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rm <node>")
	}
	id, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	return a.editor.RemoveNode(id)
}

func (a *App) Connect(_ context.Context, args []string) error {
	if len(args) != 2 {
		return usage("connect <node> <node>")
	}
	src, err := a.resolveNode(args[0])
	if err != nil {
		return err
	}
	dst, err := a.resolveNode(args[1])
	if err != nil {
		return err
	}
	c, err := a.editor.AddConnection(src, dst)
	if err != nil {
		return err
	}
	a.printf("Connected %s -> %s (%s)\n", shortID(src), shortID(dst), shortID(c.ID))
	return nil
}

func (a *App) Disconnect(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("disconnect <connection>")
	}
	id, err := a.resolveConnection(args[0])
	if err != nil {
		return err
	}
	return a.editor.RemoveConnection(id)
}

func (a *App) List(_ context.Context) error {
	nodes := a.editor.Nodes()
	titles := make(map[string]string, len(nodes))
	selected := a.editor.Selected()

	a.printf("%s: %d nodes, %d connections\n", a.editor.Title(), len(nodes), len(a.editor.Connections()))
	for _, n := range nodes {
		titles[n.ID] = n.Title
		a.println(formatNode(n, n.ID == selected, a.editor.Highlighted(n.ID)))
	}
	for _, c := range a.editor.Connections() {
		a.printf("  %s  %s -> %s\n", shortID(c.ID), titles[c.SourceID], titles[c.TargetID])
	}
	return nil
}

// Search highlights matching nodes and prints them.
func (a *App) Search(_ context.Context, args []string) error {
	found := a.editor.Search(strings.Join(args, " "))
	ids := make([]string, 0, len(found))
	for _, n := range found {
		ids = append(ids, n.ID)
		a.println(formatNode(n, false, false))
	}
	a.editor.Highlight(ids...)
	a.printf("%d match(es)\n", len(found))
	return nil
}

func formatNode(n models.Node, selected, highlighted bool) string {
	mark := " "
	switch {
	case selected:
		mark = ">"
	case highlighted:
		mark = "*"
	}
	s := fmt.Sprintf("%s %s  %-24s (%g, %g) %s", mark, shortID(n.ID), n.Title, n.X, n.Y, n.BackgroundColor.Hex())
	if len(n.Tags) > 0 {
		s += " [" + strings.Join(n.Tags, ", ") + "]"
	}
	if n.Description != nil {
		s += "\n      " + *n.Description
	}
	return s
}
