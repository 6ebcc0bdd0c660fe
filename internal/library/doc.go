// Package library is the application state controller shared by every front end.
//
// A [Library] owns the playlist [models.Collection] and the [models.Recent] list.
// All mutations go through it:
//
//  1. validate and apply the change to a working copy
//  2. persist the full state through the [Store]
//  3. commit the copy and publish an [Event] to subscribers
//
// A failure at any step leaves the previous state in place and publishes nothing.
// Mutations are serialized behind a mutex, so the web UI can call into a single
// Library from concurrent requests.
//
// # Subscriptions
//
// Renderers call [Library.Subscribe] and re-project on each [Event]. Delivery uses
// buffered channels and non-blocking sends: a subscriber that falls behind misses
// events rather than stalling mutations. Every event carries a full [Snapshot], so
// a missed event is healed by the next one.
package library
