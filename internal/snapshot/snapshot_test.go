package snapshot

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *models.GraphDocument {
	desc := "first idea"
	a := models.NewNode("a", "Root", 10, 20)
	a.Description = &desc
	a.Tags = []string{"core", "todo"}
	b := models.NewNode("b", "Child", 300.5, -40)
	b.BackgroundColor = models.Color{A: 0x80, R: 1, G: 2, B: 3}

	plain := models.NewConnection("c1", "a", "b")
	empty := models.NewConnection("c2", "b", "a")
	empty.DashArray = []float64{}
	dashed := models.NewConnection("c3", "a", "b")
	dashed.DashArray = []float64{4, 2.5}
	dashed.DashOffset = 1.5
	dashed.IsCurved = false
	dashed.Thickness = 3

	return &models.GraphDocument{
		ID:          "doc-1",
		OwnerID:     "owner-1",
		Title:       "Plans",
		Nodes:       []models.Node{a, b},
		Connections: []models.Connection{plain, empty, dashed},
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	doc := sampleDocument()

	content, err := Encode(doc)
	require.NoError(t, err)

	stored, err := Decode(content)
	require.NoError(t, err)

	got := stored.ToDocument("owner-1", "Plans")
	assert.Empty(t, cmp.Diff(doc, got))
}

func TestEncode_CamelCaseAndColors(t *testing.T) {
	content, err := Encode(sampleDocument())
	require.NoError(t, err)

	for _, key := range []string{`"id":"doc-1"`, `"sourceId":"a"`, `"targetId":"b"`, `"backgroundColor":"#FFE3F2FD"`,
		`"borderColor":"#FF4E89AE"`, `"textColor":"#FF273C4E"`, `"strokeColor":"#FF4E89AE"`, `"isCurved":true`,
		`"fontFamily":"Segoe UI"`, `"backgroundColor":"#80010203"`} {
		assert.Contains(t, content, key)
	}
	assert.NotContains(t, content, `"Title"`)
	assert.NotContains(t, content, `"ownerId"`)
}

func TestEncode_DashArrayPresence(t *testing.T) {
	content, err := Encode(sampleDocument())
	require.NoError(t, err)

	var raw struct {
		Connections []map[string]json.RawMessage `json:"connections"`
	}
	require.NoError(t, json.Unmarshal([]byte(content), &raw))
	require.Len(t, raw.Connections, 3)

	_, has := raw.Connections[0]["dashArray"]
	assert.False(t, has, "nil dash array must be omitted")
	assert.Equal(t, "[]", string(raw.Connections[1]["dashArray"]))
	assert.Equal(t, "[4,2.5]", string(raw.Connections[2]["dashArray"]))
}

func TestDecode_DashArrayStates(t *testing.T) {
	content := `{"id":"d","nodes":[{"id":"a"},{"id":"b"}],"connections":[
		{"id":"absent","sourceId":"a","targetId":"b"},
		{"id":"null","sourceId":"a","targetId":"b","dashArray":null},
		{"id":"empty","sourceId":"a","targetId":"b","dashArray":[]},
		{"id":"values","sourceId":"a","targetId":"b","dashArray":[1,2]}]}`

	stored, err := Decode(content)
	require.NoError(t, err)
	doc := stored.ToDocument("o", "t")

	assert.Nil(t, doc.Connections[0].DashArray)
	assert.Nil(t, doc.Connections[1].DashArray)
	assert.NotNil(t, doc.Connections[2].DashArray)
	assert.Empty(t, doc.Connections[2].DashArray)
	assert.Equal(t, []float64{1, 2}, doc.Connections[3].DashArray)
}

func TestDecode_CaseInsensitiveKeys(t *testing.T) {
	content := `{"Id":"d","Nodes":[{"ID":"a","Title":"Root","BackgroundColor":"#FF112233","Tags":null}],
		"Connections":[{"Id":"c","SourceId":"a","TargetId":"a","IsCurved":true,"DashArray":[3]}]}`

	stored, err := Decode(content)
	require.NoError(t, err)
	doc := stored.ToDocument("o", "t")

	require.Len(t, doc.Nodes, 1)
	assert.Equal(t, "d", doc.ID)
	assert.Equal(t, "Root", doc.Nodes[0].Title)
	assert.Equal(t, models.RGB(0x11, 0x22, 0x33), doc.Nodes[0].BackgroundColor)
	assert.NotNil(t, doc.Nodes[0].Tags)
	require.Len(t, doc.Connections, 1)
	assert.True(t, doc.Connections[0].IsCurved)
	assert.Equal(t, []float64{3}, doc.Connections[0].DashArray)
}

func TestDecode_ShortColorForms(t *testing.T) {
	stored, err := Decode(`{"id":"d","nodes":[{"id":"a","textColor":"#123456","borderColor":"","backgroundColor":"#F00"}],"connections":[]}`)
	require.NoError(t, err)
	n := stored.ToDocument("o", "t").Nodes[0]

	assert.Equal(t, "#FF123456", n.TextColor.Hex())
	assert.Equal(t, models.Color{}, n.BorderColor)
	assert.Equal(t, "#FFFF0000", n.BackgroundColor.Hex())
}

func TestDecode_MissingKeysGetVisibleDefaults(t *testing.T) {
	stored, err := Decode(`{"id":"d","nodes":[{"id":"n","title":"t"}],"connections":[{"id":"c","sourceId":"n","targetId":"n"}]}`)
	require.NoError(t, err)

	doc := stored.ToDocument("o", "T")
	require.Len(t, doc.Nodes, 1)
	n := doc.Nodes[0]
	assert.Equal(t, "#FFFFFFFF", n.BackgroundColor.Hex())
	assert.Equal(t, "#FF000000", n.BorderColor.Hex())
	assert.Equal(t, "#FF000000", n.TextColor.Hex())
	assert.Equal(t, models.DefaultNodeShape, n.Shape)
	assert.Equal(t, []string{}, n.Tags)

	require.Len(t, doc.Connections, 1)
	assert.Equal(t, "#FF000000", doc.Connections[0].StrokeColor.Hex())
	assert.Nil(t, doc.Connections[0].DashArray)
}

func TestDecode_ExplicitEmptyValuesKept(t *testing.T) {
	stored, err := Decode(`{"id":"d","nodes":[{"id":"n","shape":"","backgroundColor":"","borderColor":"","textColor":""}],` +
		`"connections":[{"id":"c","strokeColor":""}]}`)
	require.NoError(t, err)

	n := stored.Nodes[0]
	assert.Equal(t, "", n.Shape)
	assert.Equal(t, models.Color{}, n.BackgroundColor)
	assert.Equal(t, models.Color{}, n.BorderColor)
	assert.Equal(t, models.Color{}, n.TextColor)
	assert.Equal(t, models.Color{}, stored.Connections[0].StrokeColor)
}

func TestDecode_Corrupt(t *testing.T) {
	for _, content := range []string{`not json`, `{"id":"d","nodes":[{"id":"a","textColor":"#XYZXYZ"}]}`, ``} {
		_, err := Decode(content)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrCorruptSnapshot), content)
	}
}

func TestEncode_EmptyDocumentHasArrays(t *testing.T) {
	content, err := Encode(&models.GraphDocument{ID: "x"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(content, `"nodes":[]`))
	assert.True(t, strings.Contains(content, `"connections":[]`))
}
