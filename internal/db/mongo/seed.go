package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/casesearch/internal/db"
)

const textIndexName = "casesearch_text"

func textIndexModel(fields []string) mongo.IndexModel {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: db.FieldPath(f), Value: "text"})
	}
	return mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(textIndexName),
	}
}

// EnsureTextIndex creates the collection's text index. Recreating an identical index is a no-op.
func (s *Store) EnsureTextIndex(ctx context.Context, collection string, fields []string) error {
	if len(fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	_, err := s.db.Collection(collection).Indexes().CreateOne(ctx, textIndexModel(fields))
	if err != nil {
		return &db.Error{Op: db.OpCreateText, Err: err}
	}
	return nil
}

// Upsert replaces records by _id; records without one are inserted and get a generated id.
func (s *Store) Upsert(ctx context.Context, collection string, docs []db.Record) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for _, doc := range docs {
		id, ok := doc["_id"]
		if !ok || id == nil {
			fresh := make(db.Record, len(doc))
			for k, v := range doc {
				if k != "_id" {
					fresh[k] = v
				}
			}
			models = append(models, mongo.NewInsertOneModel().SetDocument(fresh))
			continue
		}
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": id}).
			SetReplacement(doc).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := s.open(collection).BulkWrite(ctx, models, opts); err != nil {
		return &db.Error{Op: db.OpBulkWrite, Err: err}
	}
	return nil
}
