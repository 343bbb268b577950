// Package models defines the domain records shared by the ledger, storage and
// service layers.
//
// # Bills
//
// A Bill is owned by the user who paid it. Items and percentage taxes are
// attached while the bill is open; participants opt into items through
// shares. Completing a bill freezes its content so debts can be registered.
//
// # Ledger
//
//   - Debt: one obligation increment owed by a debtor to a creditor within a
//     bill. Several rows may exist for the same parties (one per settlement
//     attempt); they are always summed.
//   - Payment: a settlement attempt against one Debt. State lives in two
//     fields rather than an enum, see Payment.State.
//
// # Design Principles
//
//  1. Users are identified by int64 ids issued by the user directory.
//  2. Timestamps are unix seconds taken from the database clock; zero means unset.
//  3. Relationships are expressed with ids, never pointers between records.
package models
