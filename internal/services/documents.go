package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mindmap/internal/common"
	"github.com/dmitrijs2005/mindmap/internal/logging"
	"github.com/dmitrijs2005/mindmap/internal/models"
	"github.com/dmitrijs2005/mindmap/internal/repositories/repomanager"
	"github.com/dmitrijs2005/mindmap/internal/snapshot"
	"github.com/google/uuid"
)

// SnapshotArchiver mirrors saved snapshots to secondary storage.
type SnapshotArchiver interface {
	Archive(ctx context.Context, ownerID, documentID string, content []byte) error
}

// DocumentService loads and saves whole-document snapshots.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	archiver    SnapshotArchiver
	logger      logging.Logger

	now func() time.Time
}

// NewDocumentService builds the service. archiver may be nil.
func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager, archiver SnapshotArchiver, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:          db,
		repomanager: m,
		archiver:    archiver,
		logger:      logger.With("service", "documents"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// LoadLatestOrCreate returns the owner's most recently updated document.
// When the owner has none, a new empty document titled defaultTitle is
// stored and returned.
func (s *DocumentService) LoadLatestOrCreate(ctx context.Context, ownerID, defaultTitle string) (*models.GraphDocument, error) {
	if ownerID == "" {
		return nil, common.ErrMissingOwner
	}

	rec, err := s.repomanager.Documents(s.db).GetLatestByOwner(ctx, ownerID)
	if err == nil {
		return s.decode(rec)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		s.logger.Error(ctx, "load latest document failed", "owner_id", ownerID, "error", err)
		return nil, fmt.Errorf("load document for %s: %w", ownerID, err)
	}

	doc := &models.GraphDocument{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       defaultTitle,
		Nodes:       []models.Node{},
		Connections: []models.Connection{},
	}
	if err := s.Save(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "created document", "owner_id", ownerID, "document_id", doc.ID)
	return doc, nil
}

// Open loads a specific document of the owner.
func (s *DocumentService) Open(ctx context.Context, ownerID, id string) (*models.GraphDocument, error) {
	if ownerID == "" {
		return nil, common.ErrMissingOwner
	}

	rec, err := s.repomanager.Documents(s.db).GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("open document %s: %w", id, err)
	}
	return s.decode(rec)
}

// List returns the owner's documents newest first, without content.
func (s *DocumentService) List(ctx context.Context, ownerID string) ([]models.DocumentRecord, error) {
	if ownerID == "" {
		return nil, common.ErrMissingOwner
	}

	recs, err := s.repomanager.Documents(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents for %s: %w", ownerID, err)
	}
	return recs, nil
}

// Save writes the full snapshot of doc, inserting or overwriting by id.
// A document without an owner is rejected with common.ErrMissingOwner.
func (s *DocumentService) Save(ctx context.Context, doc *models.GraphDocument) error {
	if doc == nil || doc.OwnerID == "" {
		return common.ErrMissingOwner
	}

	content, err := snapshot.Encode(doc)
	if err != nil {
		return err
	}

	rec := &models.DocumentRecord{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Title:     doc.Title,
		Content:   content,
		UpdatedAt: s.now(),
	}
	if err := s.repomanager.Documents(s.db).Upsert(ctx, rec); err != nil {
		s.logger.Error(ctx, "save document failed", "document_id", doc.ID, "error", err)
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}

	s.logger.Debug(ctx, "document saved", "document_id", doc.ID, "nodes", len(doc.Nodes), "connections", len(doc.Connections))

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, doc.OwnerID, doc.ID, []byte(content)); err != nil {
			s.logger.Warn(ctx, "archive snapshot failed", "document_id", doc.ID, "error", err)
		}
	}
	return nil
}

func (s *DocumentService) decode(rec *models.DocumentRecord) (*models.GraphDocument, error) {
	stored, err := snapshot.Decode(rec.Content)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", rec.ID, err)
	}
	doc := stored.ToDocument(rec.OwnerID, rec.Title)
	// the row id is authoritative
	doc.ID = rec.ID
	return doc, nil
}
