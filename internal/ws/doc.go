// Package ws provides WebSocket connection handling and the in-process
// broadcast hub for the shared canvas.
//
// The package implements:
//   - Hub: fans new-stroke and delete events out to every connected
//     session except the originator
//   - Client: one WebSocket connection's server-side session, identified
//     by a fresh uuid for the connection's lifetime
//   - Handler: upgrades connections and routes inbound frames (the
//     "delete" sentinel or a serialized stroke)
//
// Delivery is at-most-once per connected session, in publish order, with
// no replay and no acknowledgments. A stroke received over the socket is
// the authoritative persistence trigger; the delete sentinel is a live
// notification only, with durable deletion reserved to the HTTP endpoints.
package ws
