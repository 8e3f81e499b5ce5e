package domain

import "errors"

// ErrTotalRetrievalFailure is surfaced when every similarity search for a
// request failed, filtered and unfiltered alike. Partial failures are
// recovered inside the pipeline; this one is a hard failure because no
// recommendation can honestly be produced.
var ErrTotalRetrievalFailure = errors.New("all similarity searches failed")

// ErrEmptyQuery rejects requests with a blank query before any external
// call is made.
var ErrEmptyQuery = errors.New("query is empty")
