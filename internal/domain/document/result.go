package document

// Status is the outcome class of one store query.
type Status int

const (
	// StatusOK means the query ran; Documents may be empty.
	StatusOK Status = iota
	// StatusUnsupported means the store cannot execute this kind of query (e.g. no text index).
	StatusUnsupported
	// StatusUnavailable means the store could not be reached.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnsupported:
		return "unsupported"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result carries the documents of one store query or the reason there are none.
type Result struct {
	Status    Status
	Documents []Document
	Err       error
}

// Found wraps a successful query.
func Found(docs []Document) Result {
	return Result{Status: StatusOK, Documents: docs}
}

// Unsupported reports a query kind the store cannot run.
func Unsupported(err error) Result {
	return Result{Status: StatusUnsupported, Err: err}
}

// Unavailable reports an unreachable store.
func Unavailable(err error) Result {
	return Result{Status: StatusUnavailable, Err: err}
}
