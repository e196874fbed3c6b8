package pgvector

import (
	"context"
	"fmt"
	"time"

	"admissions-rag-be/pkg/embedding"
	"admissions-rag-be/pkg/retrieval"

	"github.com/google/uuid"
	pgv "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// AdmissionDocument is a knowledge-base chunk with its embedding vector.
type AdmissionDocument struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Content   string     `gorm:"type:text;not null"`
	Source    string     `gorm:"type:varchar(512)"`
	Embedding pgv.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (AdmissionDocument) TableName() string {
	return "admission_documents"
}

// Store searches admission documents by cosine similarity over pgvector.
type Store struct {
	db       *gorm.DB
	embedder embedding.EmbeddingProvider
}

func NewStore(db *gorm.DB, embedder embedding.EmbeddingProvider) *Store {
	return &Store{db: db, embedder: embedder}
}

func (s *Store) Search(ctx context.Context, query string, topK int) ([]retrieval.Document, error) {
	if topK <= 0 {
		topK = 5
	}

	resp, err := s.embedder.Generate(ctx, query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Cosine distance in pgvector is 1 - cosine_similarity,
	// so 1 - (embedding <=> query_vector) recovers the similarity.
	type result struct {
		Content string
		Source  string
		Score   float64
	}
	var results []result

	queryVector := pgv.NewVector(resp.Embedding.Values)

	err = s.db.WithContext(ctx).
		Table("admission_documents").
		Select("content, source, 1 - (embedding <=> ?) as score", queryVector).
		Where("deleted_at IS NULL").
		Order("score DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	docs := make([]retrieval.Document, len(results))
	for i, res := range results {
		docs[i] = retrieval.Document{
			Content: res.Content,
			Source:  res.Source,
			Score:   res.Score,
		}
	}
	return docs, nil
}

// Insert stores a document chunk with a freshly generated embedding.
func (s *Store) Insert(ctx context.Context, content string, source string) (*AdmissionDocument, error) {
	resp, err := s.embedder.Generate(ctx, content, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return nil, fmt.Errorf("embed document: %w", err)
	}

	doc := &AdmissionDocument{
		Content:   content,
		Source:    source,
		Embedding: pgv.NewVector(resp.Embedding.Values),
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}
