// Package ledger implements the debt ledger and payment reconciliation engine.
//
// Every operation runs inside a transaction supplied by the caller through
// storage.Store.WithTx. The ledger never opens, commits or retries
// transactions itself; an error returned from any operation is meant to be
// returned from the WithTx callback so the whole unit of work rolls back.
//
// Concurrent reconciliation for the same (bill, debtor, creditor) triple is
// serialized by the row locks taken in RemainingDebt and held until the
// caller's transaction ends.
package ledger
