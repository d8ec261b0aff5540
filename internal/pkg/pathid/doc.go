// Package pathid turns free-form credential names into object path segments.
//
// Credential names come straight from the token ("GitHub:alice@example.com")
// while object paths only accept a small alphabet. Encode transliterates the
// name into [a-z0-9_] so the same name always lands on the same path.
package pathid
