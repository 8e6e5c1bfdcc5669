// Package repository defines the storage contract for JJ Game Plan.
//
// The service persists one thing: the tap log, serialized as JSON under a
// single namespaced key. The Store interface is therefore a plain get/set
// key-value contract, and the drivers differ only in where the bytes live.
//
// # Drivers
//
// - MemoryStore (this package): process-local map, used by tests and by
//   `store.driver: memory`
// - sqlite: a kv table in a SQLite file (modernc.org/sqlite, no cgo)
// - badger: a BadgerDB directory, or an in-memory instance when no path is
//   given
//
// Open picks the driver from configuration.
package repository
