// Package world owns the single mutable container behind System Builder
// Studio: placed components, wires, the mock database, server and router
// configuration, the simulation clock state and the log stream.
//
// # Ownership
//
// Everything else reads the world through Store.Snapshot, which returns a
// deep copy, and changes it through Store.Update or one of the named
// operations. Every change replaces the whole value under the store's lock,
// so a reader never observes a half-applied tick.
//
// Power status is not stored here. Store.Evaluate derives it from the
// current components and wires on every call.
//
// # Layouts
//
// A Layout is the portable part of a world (components, wires, router,
// server and code). Built-in scenarios are layouts embedded as YAML; users
// can save their own through a Repository, which SQLiteRepository implements
// with sqlx over the application database.
//
// # Thread Safety
//
// Store is safe for concurrent use. The function passed to Update runs with
// the lock held and must not call back into the store.
package world
