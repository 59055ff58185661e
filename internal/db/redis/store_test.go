package redis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/casesearch/internal/db"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Ping(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestNaming(t *testing.T) {
	s := NewStoreForTest(nil)
	if got := s.KeyPrefix("cases"); got != "casesearch:cases:" {
		t.Errorf("KeyPrefix = %q", got)
	}
	if got := s.IndexName("cases"); got != "casesearch:cases:idx" {
		t.Errorf("IndexName = %q", got)
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		s, sub string
		want   bool
	}{
		{"Index Already Exists", "index already exists", true},
		{"UNKNOWN INDEX NAME", "unknown index name", true},
		{"hello world", "world", true},
		{"short", "longer than input", false},
		{"exact", "exact", true},
		{"", "", true},
		{"notempty", "", true},
	}
	for _, tc := range tests {
		got := containsIgnoreCase(tc.s, tc.sub)
		if got != tc.want {
			t.Errorf("containsIgnoreCase(%q, %q) = %v, want %v", tc.s, tc.sub, got, tc.want)
		}
	}
}

// --- json.go tests ---

func TestJSONSetMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisString("OK")),
			mock.ErrorResult(context.DeadlineExceeded),
		})

	s := NewStoreForTest(c)
	err := s.JSONSetMulti(context.Background(), []db.JSONSetItem{
		{Key: "k1", Path: "$", Data: []byte(`{}`)},
		{Key: "k2", Path: "$", Data: []byte(`{}`)},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "k2") {
		t.Errorf("error should name the failing key: %v", err)
	}
}

func TestJSONSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.JSONSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestJSONMGet_MissingKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.MGET", "k1", "k2", "$")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`[{"_id":"1"}]`),
			mock.RedisNil(),
		)))

	s := NewStoreForTest(c)
	out, err := s.JSONMGet(context.Background(), []string{"k1", "k2"}, "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] == nil || out[1] != nil {
		t.Errorf("unexpected slots: %q", out)
	}
}

func TestScan_MultiPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	first := true
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		DoAndReturn(func(_ context.Context, _ rueidis.Completed) rueidis.RedisResult {
			if first {
				first = false
				return mock.Result(mock.RedisArray(
					mock.RedisInt64(42), // cursor=42 means more
					mock.RedisArray(mock.RedisString("key1")),
				))
			}
			return mock.Result(mock.RedisArray(
				mock.RedisInt64(0), // cursor=0 means done
				mock.RedisArray(mock.RedisString("key2")),
			))
		}).Times(2)

	s := NewStoreForTest(c)
	keys, err := s.Scan(context.Background(), "prefix:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d", len(keys))
	}
}

// --- kv.go tests ---

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "300")).
		Return(mock.Result(mock.RedisString("OK")))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 300*1e9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go / seed.go tests ---

func TestCreateIndex_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	def, err := db.NewIndex("x:idx").TextAs("$.t", "t").Build()
	if err != nil {
		t.Fatal(err)
	}
	err = s.CreateIndex(context.Background(), def)
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpCreateIndex {
		t.Errorf("expected db.Error{FT.CREATE}, got %v", err)
	}
}

func TestIndexExists_False(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "casesearch:cases:idx")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), s.IndexName("cases"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}

func TestTextIndex(t *testing.T) {
	s := NewStoreForTest(nil)
	def, err := s.TextIndex("cases", []string{"case_title", "issues[*]", "search_metadata.summary"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	args, err := buildCreateArgs(def)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(args, " ")
	want := "casesearch:cases:idx ON JSON PREFIX 1 casesearch:cases: SCHEMA " +
		"$.case_title AS case_title TEXT " +
		"$.issues[*] AS issues TEXT " +
		"$.search_metadata.summary AS search_metadata_summary TEXT"
	if got != want {
		t.Errorf("args =\n%s\nwant\n%s", got, want)
	}
}

func TestEnsureTextIndex_Existing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl) // FT.CREATE must not be sent

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "casesearch:cases:idx")).
		Return(mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("casesearch:cases:idx"))))

	s := NewStoreForTest(c)
	if err := s.EnsureTextIndex(context.Background(), "cases", []string{"case_title"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureTextIndex_Creates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.INFO", "casesearch:cases:idx")).
			Return(mock.Result(mock.RedisError("Unknown index name"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("FT.CREATE", "casesearch:cases:idx", "ON", "JSON",
				"PREFIX", "1", "casesearch:cases:", "SCHEMA", "$.case_title", "AS", "case_title", "TEXT")).
			Return(mock.Result(mock.RedisString("OK"))),
	)

	s := NewStoreForTest(c)
	if err := s.EnsureTextIndex(context.Background(), "cases", []string{"case_title"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureTextIndex_InfoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.INFO" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.EnsureTextIndex(context.Background(), "cases", []string{"case_title"})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestUpsert(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, cmds ...rueidis.Completed) []rueidis.RedisResult {
			if len(cmds) != 1 {
				t.Fatalf("expected 1 command, got %d", len(cmds))
			}
			parts := cmds[0].Commands()
			if parts[0] != "JSON.SET" || parts[1] != "casesearch:cases:2368453" {
				t.Errorf("unexpected command %v", parts)
			}
			return []rueidis.RedisResult{mock.Result(mock.RedisString("OK"))}
		})

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), "cases", []db.Record{{"_id": float64(2368453), "case_title": "T"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_MissingID(t *testing.T) {
	s := NewStoreForTest(nil)
	if err := s.Upsert(context.Background(), "cases", []db.Record{{"case_title": "T"}}); err == nil {
		t.Fatal("expected error")
	}
}

// --- search.go tests ---

func TestSupportsTextSearch(t *testing.T) {
	s := &Store{}
	if !s.SupportsTextSearch(context.Background()) {
		t.Error("Redis store should support text search")
	}
}

func TestSearchText_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" &&
				cmd[1] == "casesearch:cases:idx" &&
				cmd[2] == "limitation | debt"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("casesearch:cases:a"),
			mock.RedisString("2.5"),
			mock.RedisArray(
				mock.RedisString("$"),
				mock.RedisString(`{"_id":"a","case_title":"A","parties":"x"}`),
			),
			mock.RedisString("casesearch:cases:b"),
			mock.RedisString("1.25"),
			mock.RedisArray(
				mock.RedisString("$"),
				mock.RedisString(`{"_id":"b","case_title":"B"}`),
			),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchText(context.Background(), &db.TextQuery{
		Collection: "cases",
		Query:      "limitation, debt",
		Fields:     []string{"case_title"},
		TopK:       5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	first := res.Entries[0]
	if first.Score != 2.5 || first.Doc["_id"] != "a" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if _, ok := first.Doc["parties"]; ok {
		t.Error("unprojected field returned")
	}
}

func TestSearchText_MissingIndexIsUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisError("casesearch:cases:idx: no such index")))

	s := NewStoreForTest(c)
	_, err := s.SearchText(context.Background(), &db.TextQuery{Collection: "cases", Query: "x", TopK: 5})
	if !errors.Is(err, db.ErrTextSearchUnsupported) {
		t.Errorf("expected ErrTextSearchUnsupported, got %v", err)
	}
}

func TestSearchText_NetworkErrorIsNotUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchText(context.Background(), &db.TextQuery{Collection: "cases", Query: "x", TopK: 5})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrTextSearchUnsupported) {
		t.Error("network failure must not read as unsupported")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestSearchText_AuthErrorIsNotUnsupported(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("NOAUTH Authentication required.")))

	s := NewStoreForTest(c)
	_, err := s.SearchText(context.Background(), &db.TextQuery{Collection: "cases", Query: "x", TopK: 5})
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrTextSearchUnsupported) {
		t.Error("auth failure must not read as unsupported")
	}
}

func TestSearchText_PunctuationOnlyQuery(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	res, err := s.SearchText(context.Background(), &db.TextQuery{Collection: "cases", Query: "?!", TopK: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(res.Entries))
	}
}

func TestSearchText_Validation(t *testing.T) {
	s := &Store{}
	ctx := context.Background()

	if _, err := s.SearchText(ctx, &db.TextQuery{Query: "x", TopK: 10}); err == nil {
		t.Error("expected error for empty collection")
	}
	if _, err := s.SearchText(ctx, &db.TextQuery{Collection: "c", Query: "x"}); err == nil {
		t.Error("expected error for topK=0")
	}
}

func TestSearchPattern(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SCAN"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(
				mock.RedisString("casesearch:cases:c"),
				mock.RedisString("casesearch:cases:a"),
				mock.RedisString("casesearch:cases:b"),
			),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.Match("JSON.MGET",
			"casesearch:cases:a", "casesearch:cases:b", "casesearch:cases:c", "$")).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`[{"_id":"a","case_title":"Limitation dispute"}]`),
			mock.RedisString(`[{"_id":"b","case_title":"Tax"}]`),
			mock.RedisString(`[{"_id":"c","issues":["LIMITATION period"]}]`),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchPattern(context.Background(), &db.PatternQuery{
		Collection: "cases",
		Pattern:    "limitation",
		Fields:     []string{"case_title", "issues[*]"},
		Limit:      5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(res.Entries))
	}
	if res.Entries[0].Doc["_id"] != "a" || res.Entries[1].Doc["_id"] != "c" {
		t.Errorf("unexpected order: %v, %v", res.Entries[0].Doc, res.Entries[1].Doc)
	}
}

func TestSearchPattern_RespectsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "SCAN" })).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(0),
			mock.RedisArray(mock.RedisString("casesearch:cases:a"), mock.RedisString("casesearch:cases:b")),
		)))
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "JSON.MGET" })).
		Return(mock.Result(mock.RedisArray(
			mock.RedisString(`[{"_id":"a","court":"High Court"}]`),
			mock.RedisString(`[{"_id":"b","court":"High Court"}]`),
		)))

	s := NewStoreForTest(c)
	res, err := s.SearchPattern(context.Background(), &db.PatternQuery{
		Collection: "cases", Pattern: "court", Fields: []string{"court"}, Limit: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(res.Entries))
	}
}

func TestBuildTextQuery(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"limitation", "limitation"},
		{"  Section 138 NI Act ", "Section | 138 | NI | Act"},
		{"2025 INSC 1017", "2025 | INSC | 1017"},
		{"o'brien-smith", "o | brien | smith"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := buildTextQuery(tc.in); got != tc.want {
			t.Errorf("buildTextQuery(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeDoc(t *testing.T) {
	for _, raw := range []string{`{"_id":"x"}`, `[{"_id":"x"}]`, ` [ {"_id":"x"} ] `} {
		doc, err := decodeDoc([]byte(raw))
		if err != nil {
			t.Fatalf("decodeDoc(%s): %v", raw, err)
		}
		if doc["_id"] != "x" {
			t.Errorf("decodeDoc(%s) = %v", raw, doc)
		}
	}
	if _, err := decodeDoc([]byte(`[]`)); err == nil {
		t.Error("expected error for empty array")
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
