package graph

// ChangeKind classifies an edit to the live document.
type ChangeKind int

const (
	DocumentLoaded ChangeKind = iota + 1
	TitleChanged
	NodeAdded
	NodeUpdated
	NodeRemoved
	ConnectionAdded
	ConnectionUpdated
	ConnectionRemoved
)

var changeKindNames = map[ChangeKind]string{
	DocumentLoaded:    "document_loaded",
	TitleChanged:      "title_changed",
	NodeAdded:         "node_added",
	NodeUpdated:       "node_updated",
	NodeRemoved:       "node_removed",
	ConnectionAdded:   "connection_added",
	ConnectionUpdated: "connection_updated",
	ConnectionRemoved: "connection_removed",
}

func (k ChangeKind) String() string {
	if s, ok := changeKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Change is delivered to subscribers after every persisted-state mutation.
// ID is the affected node or connection, or the document id for
// DocumentLoaded and TitleChanged.
type Change struct {
	Kind ChangeKind
	ID   string
}
