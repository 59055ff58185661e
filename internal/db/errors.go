package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound           = errors.New("db: key not found")
	ErrTextSearchUnsupported = errors.New("db: text search unsupported")
)

// Op constants map to store command names for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpScan        = "SCAN"
	OpGet         = "GET"
	OpSet         = "SET"
	OpJSONSet     = "JSON.SET"
	OpJSONMGet    = "JSON.MGET"
	OpPing        = "PING"

	OpFind        = "find"
	OpCreateText  = "createIndexes"
	OpBulkWrite   = "bulkWrite"
	OpMongoPing   = "ping"
	OpMongoDecode = "decode"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
