package mongo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/casesearch/internal/db"
)

const scoreField = "score"

// SearchText runs a $text query sorted by textScore. The score is projected as "score".
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	cur, err := s.open(q.Collection).Find(ctx, textFilter(q.Query), textFindOptions(q.Fields, q.TopK))
	if err != nil {
		return nil, classifyText(db.OpFind, err)
	}
	return drain(ctx, cur)
}

// SearchPattern runs a case-insensitive literal $regex OR-ed across q.Fields.
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

	opts := options.Find().SetLimit(int64(q.Limit))
	cur, err := s.open(q.Collection).Find(ctx, patternFilter(q.Pattern, q.Fields), opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpFind, Err: err}
	}
	return drain(ctx, cur)
}

func textFilter(query string) bson.M {
	return bson.M{"$text": bson.M{"$search": query}}
}

func textFindOptions(fields []string, limit int) *options.FindOptions {
	projection := bson.M{scoreField: bson.M{"$meta": "textScore"}}
	for _, f := range fields {
		projection[db.FieldPath(f)] = 1
	}
	return options.Find().
		SetProjection(projection).
		SetSort(bson.M{scoreField: bson.M{"$meta": "textScore"}}).
		SetLimit(int64(limit))
}

func patternFilter(pattern string, fields []string) bson.M {
	re := primitive.Regex{Pattern: regexp.QuoteMeta(pattern), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{db.FieldPath(f): re})
	}
	return bson.M{"$or": or}
}

func drain(ctx context.Context, cur *mongo.Cursor) (*db.SearchResult, error) {
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, &db.Error{Op: db.OpMongoDecode, Err: err}
	}

	entries := make([]db.SearchEntry, 0, len(docs))
	for _, d := range docs {
		rec, _ := plain(d).(map[string]any)
		entry := db.SearchEntry{Doc: rec}
		if id, ok := db.RecordID(rec); ok {
			entry.Key = id
		}
		if score, ok := rec[scoreField].(float64); ok {
			entry.Score = score
		}
		entries = append(entries, entry)
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

// plain converts driver values into the generic map/slice/string shapes the
// rest of the service works with.
func plain(v any) any {
	switch val := v.(type) {
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = plain(item)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = plain(e.Value)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = plain(item)
		}
		return out
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	default:
		return val
	}
}
