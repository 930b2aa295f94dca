// Package snapshot converts GraphDocuments to and from the JSON text stored
// in the documents table.
//
// Field names are camelCase on write. Reads match names case-insensitively
// (encoding/json semantics), so older snapshots written with PascalCase keys
// still load. Colors are #AARRGGBB strings. A connection's dashArray key is
// omitted when the document has no custom pattern, written as [] when the
// pattern is explicitly empty, and as the values otherwise.
package snapshot

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/models"
)

// Stored is the persisted document shape.
type Stored struct {
	ID          string             `json:"id"`
	Nodes       []StoredNode       `json:"nodes"`
	Connections []StoredConnection `json:"connections"`
}

type StoredNode struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     *string      `json:"description,omitempty"`
	X               float64      `json:"x"`
	Y               float64      `json:"y"`
	Width           float64      `json:"width"`
	Height          float64      `json:"height"`
	Shape           string       `json:"shape"`
	BackgroundColor models.Color `json:"backgroundColor"`
	BorderColor     models.Color `json:"borderColor"`
	TextColor       models.Color `json:"textColor"`
	FontSize        float64      `json:"fontSize"`
	FontFamily      string       `json:"fontFamily"`
	Tags            []string     `json:"tags"`
}

type StoredConnection struct {
	ID          string       `json:"id"`
	SourceID    string       `json:"sourceId"`
	TargetID    string       `json:"targetId"`
	StrokeColor models.Color `json:"strokeColor"`
	Thickness   float64      `json:"thickness"`
	IsCurved    bool         `json:"isCurved"`
	DashOffset  float64      `json:"dashOffset"`
	// pointer so that absent and [] stay distinguishable
	DashArray *[]float64 `json:"dashArray,omitempty"`
}

// Styling used for keys missing from older or hand-edited snapshots. An
// explicit empty color string still decodes to transparent.
var (
	missingBackground = models.RGB(0xFF, 0xFF, 0xFF)
	missingForeground = models.RGB(0x00, 0x00, 0x00)
)

// UnmarshalJSON seeds the missing-key defaults before decoding.
func (n *StoredNode) UnmarshalJSON(b []byte) error {
	type plain StoredNode
	p := plain{
		Shape:           models.DefaultNodeShape,
		BackgroundColor: missingBackground,
		BorderColor:     missingForeground,
		TextColor:       missingForeground,
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*n = StoredNode(p)
	return nil
}

func (c *StoredConnection) UnmarshalJSON(b []byte) error {
	type plain StoredConnection
	p := plain{StrokeColor: missingForeground}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*c = StoredConnection(p)
	return nil
}

// FromDocument builds the stored shape. Title and owner live in table columns.
func FromDocument(doc *models.GraphDocument) *Stored {
	s := &Stored{
		ID:          doc.ID,
		Nodes:       make([]StoredNode, 0, len(doc.Nodes)),
		Connections: make([]StoredConnection, 0, len(doc.Connections)),
	}
	for _, n := range doc.Nodes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		s.Nodes = append(s.Nodes, StoredNode{
			ID:              n.ID,
			Title:           n.Title,
			Description:     n.Description,
			X:               n.X,
			Y:               n.Y,
			Width:           n.Width,
			Height:          n.Height,
			Shape:           n.Shape,
			BackgroundColor: n.BackgroundColor,
			BorderColor:     n.BorderColor,
			TextColor:       n.TextColor,
			FontSize:        n.FontSize,
			FontFamily:      n.FontFamily,
			Tags:            tags,
		})
	}
	for _, c := range doc.Connections {
		sc := StoredConnection{
			ID:          c.ID,
			SourceID:    c.SourceID,
			TargetID:    c.TargetID,
			StrokeColor: c.StrokeColor,
			Thickness:   c.Thickness,
			IsCurved:    c.IsCurved,
			DashOffset:  c.DashOffset,
		}
		if c.DashArray != nil {
			dash := append([]float64{}, c.DashArray...)
			sc.DashArray = &dash
		}
		s.Connections = append(s.Connections, sc)
	}
	return s
}

// ToDocument rebuilds a GraphDocument with the given owner and title.
func (s *Stored) ToDocument(ownerID, title string) *models.GraphDocument {
	doc := &models.GraphDocument{
		ID:          s.ID,
		OwnerID:     ownerID,
		Title:       title,
		Nodes:       make([]models.Node, 0, len(s.Nodes)),
		Connections: make([]models.Connection, 0, len(s.Connections)),
	}
	for _, n := range s.Nodes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		doc.Nodes = append(doc.Nodes, models.Node{
			ID:              n.ID,
			Title:           n.Title,
			Description:     n.Description,
			X:               n.X,
			Y:               n.Y,
			Width:           n.Width,
			Height:          n.Height,
			Shape:           n.Shape,
			BackgroundColor: n.BackgroundColor,
			BorderColor:     n.BorderColor,
			TextColor:       n.TextColor,
			FontSize:        n.FontSize,
			FontFamily:      n.FontFamily,
			Tags:            tags,
		})
	}
	for _, c := range s.Connections {
		conn := models.Connection{
			ID:          c.ID,
			SourceID:    c.SourceID,
			TargetID:    c.TargetID,
			StrokeColor: c.StrokeColor,
			Thickness:   c.Thickness,
			IsCurved:    c.IsCurved,
			DashOffset:  c.DashOffset,
		}
		if c.DashArray != nil {
			conn.DashArray = append([]float64{}, (*c.DashArray)...)
		}
		doc.Connections = append(doc.Connections, conn)
	}
	return doc
}

// Encode serializes the full document snapshot.
func Encode(doc *models.GraphDocument) (string, error) {
	b, err := json.Marshal(FromDocument(doc))
	if err != nil {
		return "", fmt.Errorf("encode snapshot %s: %w", doc.ID, err)
	}
	return string(b), nil
}

// Decode parses stored content. Malformed input wraps common.ErrCorruptSnapshot.
func Decode(content string) (*Stored, error) {
	var s Stored
	if err := json.Unmarshal([]byte(content), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptSnapshot, err)
	}
	return &s, nil
}
