package search

// expansionQuota counts expansions and enforces an optional limit.
//
// A limit of zero or less disables enforcement.
type expansionQuota struct {
	limit   int
	current int
}

func newExpansionQuota(limit int) *expansionQuota {
	return &expansionQuota{limit: limit}
}

// check increments the counter and validates it against the limit.
func (q *expansionQuota) check() error {
	q.current++
	if q.limit > 0 && q.current > q.limit {
		return &QuotaExceededError{Expansions: q.current, Limit: q.limit}
	}
	return nil
}
