package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kailas-cloud/casesearch/internal/db"
)

var aliasReplacer = strings.NewReplacer("[*]", "", ".", "_")

// TextIndex builds the JSON FT index definition for a collection.
// Field "issues[*]" becomes "$.issues[*] AS issues TEXT".
func (s *Store) TextIndex(collection string, fields []string) (*db.IndexDefinition, error) {
	b := db.NewIndex(s.IndexName(collection)).
		Prefix(s.KeyPrefix(collection))
	for _, f := range fields {
		b = b.TextAs("$."+f, aliasReplacer.Replace(f))
	}
	return b.Build()
}

// EnsureTextIndex creates the collection's text index unless it already exists.
func (s *Store) EnsureTextIndex(ctx context.Context, collection string, fields []string) error {
	def, err := s.TextIndex(collection, fields)
	if err != nil {
		return fmt.Errorf("text index: %w", err)
	}
	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil || exists {
		return err
	}
	return s.CreateIndex(ctx, def)
}

// Upsert writes records as JSON documents keyed by their _id.
func (s *Store) Upsert(ctx context.Context, collection string, docs []db.Record) error {
	items := make([]db.JSONSetItem, 0, len(docs))
	for i, doc := range docs {
		id, ok := db.RecordID(doc)
		if !ok {
			return fmt.Errorf("record %d: _id is required", i)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("record %s: marshal: %w", id, err)
		}
		items = append(items, db.JSONSetItem{
			Key:  s.KeyPrefix(collection) + id,
			Path: "$",
			Data: data,
		})
	}
	return s.JSONSetMulti(ctx, items)
}
