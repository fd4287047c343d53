// Package core provides the business logic for storing and looking up
// certificate records.
//
// This package holds all domain logic independent of any transport or
// storage engine. Web handlers and the CLI call [Service]; storage drivers
// implement [Store].
//
// # Operations
//
//   - [Service.AddCertificate]: strict single insert. Missing fields and
//     duplicate codes are errors.
//   - [Service.ImportCertificates]: bulk insert. Malformed items and
//     duplicate codes are skipped; the first occurrence of a code wins.
//   - [Service.GetCertificate]: lookup by code.
//
// # Uniqueness
//
// The storage engine's unique constraint on code is the source of truth.
// [Store.ExistsByCode] is a pre-check for a cleaner error path only; a
// constraint violation at write time is reported as [ErrDuplicateCode].
//
// # Error Handling
//
// Domain failures are sentinel errors ([ErrMissingFields], [ErrDuplicateCode],
// [ErrNotFound], ...) wrapped with context. [MapError] turns any error into a
// [UserMessage] with a support code.
package core
