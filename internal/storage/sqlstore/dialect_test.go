package sqlstore

import (
	"errors"
	"testing"
)

func TestDialectCompile(t *testing.T) {
	numbered := Dialect{
		Numbered:     true,
		Now:          "EXTRACT(EPOCH FROM now())::BIGINT",
		LockDebts:    " FOR UPDATE OF d",
		LockPayments: " FOR UPDATE OF p, d",
	}
	plain := Dialect{Now: "unixepoch()"}

	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{
			name:    "numbered placeholders",
			dialect: numbered,
			query:   "SELECT * FROM debts WHERE bill_id = ? AND debtor_id = ? AND creditor_id = ?",
			want:    "SELECT * FROM debts WHERE bill_id = $1 AND debtor_id = $2 AND creditor_id = $3",
		},
		{
			name:    "tokens expand before numbering",
			dialect: numbered,
			query:   "UPDATE payments SET confirmed_at = {now} WHERE id = ?",
			want:    "UPDATE payments SET confirmed_at = EXTRACT(EPOCH FROM now())::BIGINT WHERE id = $1",
		},
		{
			name:    "lock clauses",
			dialect: numbered,
			query:   "SELECT 1 ORDER BY d.id{lock_debts}; SELECT 2{lock_payments}",
			want:    "SELECT 1 ORDER BY d.id FOR UPDATE OF d; SELECT 2 FOR UPDATE OF p, d",
		},
		{
			name:    "plain dialect keeps question marks and drops locks",
			dialect: plain,
			query:   "SELECT {now} FROM debts WHERE id = ?{lock_debts}",
			want:    "SELECT unixepoch() FROM debts WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.compile(tt.query); got != tt.want {
				t.Errorf("compile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDialectRetryable(t *testing.T) {
	busy := errors.New("busy")
	d := Dialect{Retryable: func(err error) bool { return errors.Is(err, busy) }}

	if !d.retryable(busy) {
		t.Error("expected busy to be retryable")
	}
	if d.retryable(errors.New("other")) {
		t.Error("expected other errors not to be retryable")
	}
	if (Dialect{}).retryable(busy) {
		t.Error("expected a dialect without a classifier to retry nothing")
	}
}
