package common

// SessionMetadataKey is the metadata key holding the remembered session token.
const SessionMetadataKey = "session"

// DefaultDocumentTitle is used when an owner has no documents yet.
const DefaultDocumentTitle = "My Mindmap"
