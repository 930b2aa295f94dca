// Package graph holds the live, mutable mind map being edited.
//
// Editor is the only writer of the in-memory document. Every mutation of
// persisted state is announced to subscribers as a Change once the editor
// lock has been released, so subscribers may call back into the editor.
// Selection and highlight are view state and produce no Change.
package graph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/google/uuid"
)

// Palette cycled through by AddNode.
var Palette = []models.Color{
	models.RGB(0xE3, 0xF2, 0xFD),
	models.RGB(0xFC, 0xE4, 0xEC),
	models.RGB(0xE8, 0xF5, 0xE9),
	models.RGB(0xFF, 0xF3, 0xE0),
	models.RGB(0xF3, 0xE5, 0xF5),
	models.RGB(0xE0, 0xF7, 0xFA),
}

// BorderDarkening is the factor applied to a node's background to get its border.
const BorderDarkening = 0.8

type Editor struct {
	mu  sync.RWMutex
	doc *models.GraphDocument

	selected    string
	highlighted map[string]struct{}

	subMu  sync.Mutex
	subs   map[int]func(Change)
	nextID int

	newID func() string
}

func NewEditor() *Editor {
	return &Editor{
		highlighted: map[string]struct{}{},
		subs:        map[int]func(Change){},
		newID:       uuid.NewString,
	}
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (e *Editor) Subscribe(fn func(Change)) (unsubscribe func()) {
	e.subMu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[id] = fn
	e.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.subMu.Lock()
			delete(e.subs, id)
			e.subMu.Unlock()
		})
	}
}

func (e *Editor) notify(changes ...Change) {
	if len(changes) == 0 {
		return
	}
	e.subMu.Lock()
	keys := make([]int, 0, len(e.subs))
	for k := range e.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	fns := make([]func(Change), 0, len(keys))
	for _, k := range keys {
		fns = append(fns, e.subs[k])
	}
	e.subMu.Unlock()

	for _, c := range changes {
		for _, fn := range fns {
			fn(c)
		}
	}
}

// Load replaces the whole document with a copy of doc and clears view state.
func (e *Editor) Load(doc *models.GraphDocument) {
	cp := doc.Clone()

	e.mu.Lock()
	e.doc = cp
	e.selected = ""
	e.highlighted = map[string]struct{}{}
	e.mu.Unlock()

	e.notify(Change{Kind: DocumentLoaded, ID: cp.ID})
}

// Loaded reports whether a document is present.
func (e *Editor) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.doc != nil
}

// Snapshot returns a deep copy of the current document, or nil.
func (e *Editor) Snapshot() *models.GraphDocument {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return nil
	}
	return e.doc.Clone()
}

func (e *Editor) DocumentID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return ""
	}
	return e.doc.ID
}

func (e *Editor) Title() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return ""
	}
	return e.doc.Title
}

func (e *Editor) SetTitle(title string) error {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	if e.doc.Title == title {
		e.mu.Unlock()
		return nil
	}
	e.doc.Title = title
	id := e.doc.ID
	e.mu.Unlock()

	e.notify(Change{Kind: TitleChanged, ID: id})
	return nil
}

// AddNode appends a node with default styling, staggered from the previous
// ones and colored from Palette. A blank title becomes "Idea N". The new node
// is selected.
func (e *Editor) AddNode(title string) (models.Node, error) {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return models.Node{}, ErrNoDocument
	}

	count := len(e.doc.Nodes)
	if title == "" {
		title = fmt.Sprintf("Idea %d", count+1)
	}
	n := models.NewNode(e.newID(), title, float64(100+count*60), float64(100+count*40))
	bg := Palette[count%len(Palette)]
	n.BackgroundColor = bg
	n.BorderColor = bg.Darken(BorderDarkening)

	e.doc.Nodes = append(e.doc.Nodes, n)
	e.selected = n.ID
	e.mu.Unlock()

	e.notify(Change{Kind: NodeAdded, ID: n.ID})
	return n.Clone(), nil
}

// InsertNode appends n as given. The id is generated when empty.
func (e *Editor) InsertNode(n models.Node) (models.Node, error) {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return models.Node{}, ErrNoDocument
	}
	n = n.Clone()
	if n.ID == "" {
		n.ID = e.newID()
	}
	if e.nodeIndex(n.ID) >= 0 {
		e.mu.Unlock()
		return models.Node{}, fmt.Errorf("node %s already exists", n.ID)
	}
	e.doc.Nodes = append(e.doc.Nodes, n)
	e.mu.Unlock()

	e.notify(Change{Kind: NodeAdded, ID: n.ID})
	return n.Clone(), nil
}

// Node returns a copy of the node with id.
func (e *Editor) Node(id string) (models.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return models.Node{}, false
	}
	i := e.nodeIndex(id)
	if i < 0 {
		return models.Node{}, false
	}
	return e.doc.Nodes[i].Clone(), true
}

// UpdateNode applies fn to the node. fn must not keep the pointer; the id
// cannot be changed.
func (e *Editor) UpdateNode(id string, fn func(*models.Node)) error {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	i := e.nodeIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	fn(&e.doc.Nodes[i])
	e.doc.Nodes[i].ID = id
	e.mu.Unlock()

	e.notify(Change{Kind: NodeUpdated, ID: id})
	return nil
}

// SetNodeColor sets the background and derives a darker border from it.
func (e *Editor) SetNodeColor(id string, bg models.Color) error {
	return e.UpdateNode(id, func(n *models.Node) {
		n.BackgroundColor = bg
		n.BorderColor = bg.Darken(BorderDarkening)
	})
}

// RemoveNode deletes the node and every connection touching it.
func (e *Editor) RemoveNode(id string) error {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	i := e.nodeIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}

	var changes []Change
	kept := e.doc.Connections[:0]
	for _, c := range e.doc.Connections {
		if c.SourceID == id || c.TargetID == id {
			changes = append(changes, Change{Kind: ConnectionRemoved, ID: c.ID})
			delete(e.highlighted, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	clear(e.doc.Connections[len(kept):])
	e.doc.Connections = kept

	e.doc.Nodes = slices.Delete(e.doc.Nodes, i, i+1)
	if e.selected == id {
		e.selected = ""
	}
	delete(e.highlighted, id)
	e.mu.Unlock()

	changes = append(changes, Change{Kind: NodeRemoved, ID: id})
	e.notify(changes...)
	return nil
}

// AddConnection links two existing, distinct nodes.
func (e *Editor) AddConnection(sourceID, targetID string) (models.Connection, error) {
	if sourceID == targetID {
		return models.Connection{}, ErrSelfConnection
	}

	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return models.Connection{}, ErrNoDocument
	}
	for _, nid := range []string{sourceID, targetID} {
		if e.nodeIndex(nid) < 0 {
			e.mu.Unlock()
			return models.Connection{}, fmt.Errorf("%w: %s", ErrUnknownNode, nid)
		}
	}
	c := models.NewConnection(e.newID(), sourceID, targetID)
	e.doc.Connections = append(e.doc.Connections, c)
	e.mu.Unlock()

	e.notify(Change{Kind: ConnectionAdded, ID: c.ID})
	return c.Clone(), nil
}

// UpdateConnection applies fn to the connection. Endpoints and id are
// preserved.
func (e *Editor) UpdateConnection(id string, fn func(*models.Connection)) error {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	i := e.connectionIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	c := &e.doc.Connections[i]
	src, dst := c.SourceID, c.TargetID
	fn(c)
	c.ID, c.SourceID, c.TargetID = id, src, dst
	e.mu.Unlock()

	e.notify(Change{Kind: ConnectionUpdated, ID: id})
	return nil
}

func (e *Editor) RemoveConnection(id string) error {
	e.mu.Lock()
	if e.doc == nil {
		e.mu.Unlock()
		return ErrNoDocument
	}
	i := e.connectionIndex(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownConnection, id)
	}
	e.doc.Connections = slices.Delete(e.doc.Connections, i, i+1)
	delete(e.highlighted, id)
	e.mu.Unlock()

	e.notify(Change{Kind: ConnectionRemoved, ID: id})
	return nil
}

// Nodes returns copies of all nodes in insertion order.
func (e *Editor) Nodes() []models.Node {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return nil
	}
	out := make([]models.Node, len(e.doc.Nodes))
	for i, n := range e.doc.Nodes {
		out[i] = n.Clone()
	}
	return out
}

func (e *Editor) Connections() []models.Connection {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.doc == nil {
		return nil
	}
	out := make([]models.Connection, len(e.doc.Connections))
	for i, c := range e.doc.Connections {
		out[i] = c.Clone()
	}
	return out
}

// Select marks a node as selected. An empty id clears the selection.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" {
		if e.doc == nil {
			return ErrNoDocument
		}
		if e.nodeIndex(id) < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownNode, id)
		}
	}
	e.selected = id
	return nil
}

func (e *Editor) Selected() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.selected
}

// Highlight replaces the highlighted set. Unknown ids are ignored.
func (e *Editor) Highlight(ids ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.highlighted = make(map[string]struct{}, len(ids))
	if e.doc == nil {
		return
	}
	for _, id := range ids {
		if e.nodeIndex(id) >= 0 || e.connectionIndex(id) >= 0 {
			e.highlighted[id] = struct{}{}
		}
	}
}

func (e *Editor) Highlighted(id string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.highlighted[id]
	return ok
}

func (e *Editor) nodeIndex(id string) int {
	return slices.IndexFunc(e.doc.Nodes, func(n models.Node) bool { return n.ID == id })
}

func (e *Editor) connectionIndex(id string) int {
	return slices.IndexFunc(e.doc.Connections, func(c models.Connection) bool { return c.ID == id })
}
