// Package memstore provides mutex-guarded in-process implementations of
// [authgate.UserStore] and [refresh.Store].
//
// Intended for tests and single-process demos. The maps live and die with
// the process; nothing is durable. Consume and Create hold the store lock
// for their whole critical section, so the single-use and unique-email
// guarantees hold under concurrent callers exactly as they do in the
// production stores.
package memstore
