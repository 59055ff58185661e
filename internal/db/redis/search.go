package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/casesearch/internal/db"
)

// scanBatch is the number of keys fetched per JSON.MGET during pattern search.
const scanBatch = 100

// SupportsTextSearch returns true: Redis 8+ supports TEXT fields and BM25 scoring.
func (s *Store) SupportsTextSearch(_ context.Context) bool {
	return true
}

// SearchText runs a BM25 text search via FT.SEARCH over the collection's JSON index.
// Query terms are OR-ed; hits come back best first.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	query := buildTextQuery(q.Query)
	if query == "" {
		return &db.SearchResult{}, nil
	}

	args := []string{
		s.IndexName(q.Collection), query,
		"RETURN", "1", "$",
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isTextSearchRefusal(err) {
			return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("%w: %w", db.ErrTextSearchUnsupported, err)}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	res, err := parseTextResult(raw)
	if err != nil {
		return nil, err
	}
	for i := range res.Entries {
		res.Entries[i].Doc = db.Project(res.Entries[i].Doc, q.Fields)
	}
	return res, nil
}

// isTextSearchRefusal reports whether the server cannot run FT.SEARCH on this
// collection: no index, or no search module. Auth and other errors are not.
func isTextSearchRefusal(err error) bool {
	return isMissingIndex(err) || isRedisErr(err, "unknown command")
}

// SearchPattern scans the collection's keys in lexical order and keeps records
// whose fields contain the pattern, up to the limit.
func (s *Store) SearchPattern(ctx context.Context, q *db.PatternQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}
	if q.Pattern == "" || len(q.Fields) == 0 {
		return &db.SearchResult{}, nil
	}

	keys, err := s.Scan(ctx, s.KeyPrefix(q.Collection)+"*")
	if err != nil {
		return nil, err
	}
	sort.Strings(keys) // deterministic ordering

	entries := make([]db.SearchEntry, 0, q.Limit)
	for start := 0; start < len(keys) && len(entries) < q.Limit; start += scanBatch {
		end := min(start+scanBatch, len(keys))
		raws, err := s.JSONMGet(ctx, keys[start:end], "$")
		if err != nil {
			return nil, err
		}
		for i, raw := range raws {
			if raw == nil {
				continue // key may have been deleted between SCAN and MGET
			}
			doc, err := decodeDoc(raw)
			if err != nil {
				continue
			}
			if !db.MatchPattern(doc, q.Pattern, q.Fields) {
				continue
			}
			entries = append(entries, db.SearchEntry{Key: keys[start+i], Doc: doc})
			if len(entries) == q.Limit {
				break
			}
		}
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// --- Result parsing ---

func parseTextResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
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

	entries := make([]db.SearchEntry, 0, min(int(total), (len(raw)-1)/3))
	// 3-stride: [total, key1, score1, fields1, key2, score2, fields2, ...]
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
		body, ok := parseFieldPairs(fields)["$"]
		if !ok {
			continue
		}
		doc, err := decodeDoc([]byte(body))
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:   key,
			Score: score,
			Doc:   doc,
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// decodeDoc accepts both a bare JSON object and the single-element array
// returned for the "$" path.
func decodeDoc(raw []byte) (db.Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("empty document")
	}
	if trimmed[0] == '[' {
		var docs []db.Record
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		if len(docs) == 0 || docs[0] == nil {
			return nil, errors.New("empty document")
		}
		return docs[0], nil
	}
	var doc db.Record
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// --- Query helpers ---

// tokenSeparators mirrors the RediSearch default tokenizer.
const tokenSeparators = ",.<>{}[]\"':;!@#$%^&*()-+=~|/\\?`"

// buildTextQuery splits free text the way the index tokenizes it and ORs the terms.
func buildTextQuery(q string) string {
	terms := strings.FieldsFunc(q, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tokenSeparators, r)
	})
	for i, t := range terms {
		terms[i] = escapeQuery(t)
	}
	return strings.Join(terms, " | ")
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
