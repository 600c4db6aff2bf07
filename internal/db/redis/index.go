package redis

import (
	"context"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/confradar/confradar/internal/db"
	"github.com/confradar/confradar/internal/domain"
)

// Document index layout. Documents are hashes under docPrefix with TEXT
// title/content, TAG country/language, NUMERIC published/authority, and an
// HNSW cosine vector.
const (
	IndexName = domain.KeyPrefix + "docs:idx"
	docPrefix = domain.KeyPrefix + "doc:"
)

// EnsureDocumentIndex creates the document FT index when missing.
func (s *Store) EnsureDocumentIndex(ctx context.Context, vectorDim int) error {
	exists, err := s.indexExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	args := []string{
		IndexName, "ON", "HASH", "PREFIX", "1", docPrefix, "SCHEMA",
		"title", "TEXT",
		"content", "TEXT",
		"url", "TAG",
		"country", "TAG",
		"language", "TAG",
		"published", "NUMERIC", "SORTABLE",
		"authority", "NUMERIC",
		"vector", "VECTOR", "HNSW", "6",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(vectorDim),
		"DISTANCE_METRIC", "COSINE",
	}
	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreate, Err: err}
	}
	return nil
}

func (s *Store) indexExists(ctx context.Context) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(IndexName).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpInfo, Err: err}
	}
	return true, nil
}

// isRedisErr checks whether err is a Redis server error containing substr.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
