// Package app provides the interactive mind map shell.
//
// It wires configuration, storage, services and the live editor, then runs
// a read-eval-print loop. Typical flow: restore a remembered session or log
// in, edit the current document with short commands, and let the autosave
// coordinator persist changes after a quiet period.
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See runREPL for the command surface.
package app
