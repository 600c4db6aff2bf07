package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/confradar/confradar/internal/db"
)

var returnFields = []string{"url", "title", "content", "country", "language", "published", "authority"}

// SearchLexical runs a BM25 full-text rank over the document index,
// pre-filtered by country, languages, and publish window.
func (s *Store) SearchLexical(ctx context.Context, q *db.LexicalQuery) (*db.SearchResult, error) {
	if q.Text == "" {
		return nil, fmt.Errorf("text is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	var clauses []string
	if q.Country != "" {
		clauses = append(clauses, fmt.Sprintf("@country:{%s}", escapeTag(q.Country)))
	}
	if len(q.Languages) > 0 {
		escaped := make([]string, 0, len(q.Languages))
		for _, l := range q.Languages {
			escaped = append(escaped, escapeTag(l))
		}
		clauses = append(clauses, fmt.Sprintf("@language:{%s}", strings.Join(escaped, "|")))
	}
	if q.PublishedFrom > 0 || q.PublishedTo > 0 {
		from, to := "-inf", "+inf"
		if q.PublishedFrom > 0 {
			from = strconv.FormatInt(q.PublishedFrom, 10)
		}
		if q.PublishedTo > 0 {
			to = strconv.FormatInt(q.PublishedTo, 10)
		}
		clauses = append(clauses, fmt.Sprintf("@published:[%s %s]", from, to))
	}
	clauses = append(clauses, fmt.Sprintf("@title|content:(%s)", escapeText(q.Text)))

	args := []string{IndexName, strings.Join(clauses, " ")}
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)))
	args = append(args, returnFields...)
	args = append(args, "WITHSCORES", "LIMIT", "0", strconv.Itoa(q.TopK), "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseScoredResult(raw)
}

// SearchSemantic runs a KNN cosine similarity search, pre-filtered by country.
func (s *Store) SearchSemantic(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	knn := fmt.Sprintf("[KNN %d @vector $BLOB AS __vector_score]", q.K)
	queryStr := "*=>" + knn
	if q.Country != "" {
		queryStr = fmt.Sprintf("(@country:{%s})=>%s", escapeTag(q.Country), knn)
	}

	args := []string{IndexName, queryStr}
	args = append(args, "RETURN", strconv.Itoa(len(returnFields)+1))
	args = append(args, returnFields...)
	args = append(args, "__vector_score")
	args = append(args, "SORTBY", "__vector_score",
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"LIMIT", "0", strconv.Itoa(q.K),
		"DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	return parseKNNResult(raw)
}

// parseScoredResult parses the WITHSCORES 3-stride reply:
// [total, key1, score1, fields1, ...].
func parseScoredResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	hits := make([]db.Hit, 0, total)
	for i := 1; i+2 < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			continue
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			continue
		}
		fields, err := raw[i+2].ToArray()
		if err != nil {
			continue
		}
		hits = append(hits, db.Hit{Key: key, Score: score, Fields: parseFieldPairs(fields)})
	}
	return &db.SearchResult{Total: int(total), Hits: hits}, nil
}

// parseKNNResult parses the 2-stride reply [total, key1, fields1, ...] and
// converts the cosine distance into a similarity in [0,1].
func parseKNNResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	hits := make([]db.Hit, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		hit := db.Hit{Key: key, Fields: parseFieldPairs(fields)}
		if distStr, ok := hit.Fields["__vector_score"]; ok {
			if dist, err := strconv.ParseFloat(distStr, 64); err == nil {
				hit.Score = math.Max(0, 1.0-dist)
			}
			delete(hit.Fields, "__vector_score")
		}
		hits = append(hits, hit)
	}
	return &db.SearchResult{Total: int(total), Hits: hits}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		k, err := fields[i].ToString()
		if err != nil {
			continue
		}
		v, err := fields[i+1].ToString()
		if err != nil {
			continue
		}
		m[k] = v
	}
	return m
}

// escapeText escapes FT.SEARCH query syntax inside free text.
func escapeText(s string) string {
	r := strings.NewReplacer(
		"-", "\\-", "@", "\\@", ":", "\\:", "(", "\\(", ")", "\\)",
		"{", "\\{", "}", "\\}", "[", "\\[", "]", "\\]", "|", "\\|",
		"\"", "\\\"", "'", "\\'", "~", "\\~", "*", "\\*", "%", "\\%",
	)
	return r.Replace(s)
}

// escapeTag escapes TAG field separators.
func escapeTag(s string) string {
	r := strings.NewReplacer(",", "\\,", ".", "\\.", "-", "\\-", " ", "\\ ")
	return r.Replace(s)
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return rueidis.BinaryString(buf)
}
