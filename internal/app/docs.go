package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mindmap/internal/timex"
)

func (a *App) Docs(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	docs, err := a.documents.List(ctx, a.ownerID)
	if err != nil {
		return err
	}
	current := a.editor.DocumentID()
	for _, d := range docs {
		mark := " "
		if d.ID == current {
			mark = ">"
		}
		a.printf("%s %s  %-30s %s\n", mark, shortID(d.ID), d.Title, timex.FormatTimestamp(d.UpdatedAt))
	}
	return nil
}

// Open saves the current document and switches to another one.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("open <document>")
	}
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	docs, err := a.documents.List(ctx, a.ownerID)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	id, err := resolve("document", args[0], ids)
	if err != nil {
		return err
	}

	if err := a.autosave.Flush(ctx); err != nil {
		return fmt.Errorf("could not save current document: %w", err)
	}
	doc, err := a.documents.Open(ctx, a.ownerID, id)
	if err != nil {
		return err
	}
	a.load(doc)
	a.printf("Opened %q\n", doc.Title)
	return nil
}

// Generate replaces the current document with a generated skeleton for the
// topic, keeping the document id, and saves it.
func (a *App) Generate(ctx context.Context, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		return usage("generate <topic>")
	}

	a.println("Generating, please wait...")
	genCtx, cancel := context.WithTimeout(ctx, 2*a.config.OperationTimeout)
	doc, err := a.generator.Generate(genCtx, topic)
	cancel()
	if err != nil {
		return err
	}

	doc.ID = a.editor.DocumentID()
	doc.OwnerID = a.ownerID
	a.load(doc)

	ctx, cancel = a.opContext(ctx)
	defer cancel()
	if err := a.autosave.Flush(ctx); err != nil {
		return fmt.Errorf("generated document was not saved: %w", err)
	}
	a.printf("Generated %q with %d nodes\n", doc.Title, len(doc.Nodes))
	return nil
}

func (a *App) Save(ctx context.Context) error {
	ctx, cancel := a.opContext(ctx)
	defer cancel()

	if err := a.autosave.Flush(ctx); err != nil {
		return err
	}
	a.println("Saved")
	return nil
}
