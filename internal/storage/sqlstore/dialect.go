package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between supported databases.
// Queries are written with ? placeholders and the tokens {now},
// {lock_debts} and {lock_payments}, which compile expands per dialect.
type Dialect struct {
	Name string

	// Numbered selects $1, $2, ... placeholders instead of ?.
	Numbered bool

	// Now is an expression yielding the current unix time in seconds.
	Now string

	// LockDebts is appended to the debt/payment join that computes remaining debt.
	LockDebts string

	// LockPayments is appended to pending and unpaid payment queries.
	LockPayments string

	// Retryable reports whether a driver error is a lock timeout, deadlock or
	// serialization failure.
	Retryable func(err error) bool

	TxOptions *sql.TxOptions
}

func (d Dialect) compile(query string) string {
	q := strings.NewReplacer(
		"{now}", d.Now,
		"{lock_debts}", d.LockDebts,
		"{lock_payments}", d.LockPayments,
	).Replace(query)
	if !d.Numbered {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) retryable(err error) bool {
	return d.Retryable != nil && d.Retryable(err)
}
