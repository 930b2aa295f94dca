package models

import (
	"slices"
	"time"
)

// Node defaults used when a node is created without explicit styling.
const (
	DefaultNodeWidth  = 220.0
	DefaultNodeHeight = 120.0
	DefaultNodeShape  = "RoundedRectangle"
	DefaultFontSize   = 16.0
	DefaultFontFamily = "Segoe UI"
	DefaultThickness  = 2.0
)

var (
	DefaultBackground = RGB(0xE3, 0xF2, 0xFD)
	DefaultBorder     = RGB(0x4E, 0x89, 0xAE)
	DefaultText       = RGB(0x27, 0x3C, 0x4E)
	DefaultStroke     = RGB(0x4E, 0x89, 0xAE)
)

// Node is a box on the canvas.
type Node struct {
	ID              string
	Title           string
	Description     *string
	X, Y            float64
	Width, Height   float64
	Shape           string
	BackgroundColor Color
	BorderColor     Color
	TextColor       Color
	FontSize        float64
	FontFamily      string
	Tags            []string
}

// NewNode returns a node with the editor's default size and palette.
func NewNode(id, title string, x, y float64) Node {
	return Node{
		ID:              id,
		Title:           title,
		X:               x,
		Y:               y,
		Width:           DefaultNodeWidth,
		Height:          DefaultNodeHeight,
		Shape:           DefaultNodeShape,
		BackgroundColor: DefaultBackground,
		BorderColor:     DefaultBorder,
		TextColor:       DefaultText,
		FontSize:        DefaultFontSize,
		FontFamily:      DefaultFontFamily,
		Tags:            []string{},
	}
}

// Clone returns a deep copy.
func (n Node) Clone() Node {
	if n.Description != nil {
		d := *n.Description
		n.Description = &d
	}
	if n.Tags != nil {
		n.Tags = slices.Clone(n.Tags)
	}
	return n
}

// Connection is a directed edge between two nodes of the same document.
//
// DashArray nil means "no custom dash pattern", which is distinct from an
// empty non-nil slice. Both survive a save/load round-trip.
type Connection struct {
	ID          string
	SourceID    string
	TargetID    string
	StrokeColor Color
	Thickness   float64
	IsCurved    bool
	DashOffset  float64
	DashArray   []float64
}

// NewConnection returns a curved connection with the default stroke.
func NewConnection(id, sourceID, targetID string) Connection {
	return Connection{
		ID:          id,
		SourceID:    sourceID,
		TargetID:    targetID,
		StrokeColor: DefaultStroke,
		Thickness:   DefaultThickness,
		IsCurved:    true,
	}
}

// Clone returns a deep copy.
func (c Connection) Clone() Connection {
	if c.DashArray != nil {
		c.DashArray = slices.Clone(c.DashArray)
	}
	return c
}

// GraphDocument is one owner's mind map.
type GraphDocument struct {
	ID          string
	OwnerID     string
	Title       string
	Nodes       []Node
	Connections []Connection
}

// Clone returns a deep copy.
func (d *GraphDocument) Clone() *GraphDocument {
	out := &GraphDocument{ID: d.ID, OwnerID: d.OwnerID, Title: d.Title}
	out.Nodes = make([]Node, len(d.Nodes))
	for i, n := range d.Nodes {
		out.Nodes[i] = n.Clone()
	}
	out.Connections = make([]Connection, len(d.Connections))
	for i, c := range d.Connections {
		out.Connections[i] = c.Clone()
	}
	return out
}

// DanglingConnections returns connections whose endpoints are not in Nodes.
func (d *GraphDocument) DanglingConnections() []Connection {
	ids := make(map[string]struct{}, len(d.Nodes))
	for _, n := range d.Nodes {
		ids[n.ID] = struct{}{}
	}
	var out []Connection
	for _, c := range d.Connections {
		_, src := ids[c.SourceID]
		_, dst := ids[c.TargetID]
		if !src || !dst {
			out = append(out, c)
		}
	}
	return out
}

// DocumentRecord is a stored document row: the encoded snapshot plus
// its listing metadata.
type DocumentRecord struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	UpdatedAt time.Time
}
