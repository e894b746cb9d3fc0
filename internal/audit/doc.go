// Package audit implements async event dispatching for security-relevant
// operations.
//
// # Components
//
//   - [Kind] — closed enumeration of the engine operations that produce
//     audit records.
//   - [Event] — structured audit record with timestamp, kind, user, IP,
//     and metadata.
//   - [Sink] — interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher] — buffered async relay; emission never blocks, overflow
//     is counted as dropped.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide
// which events to emit — that responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import authcore or any sibling internal package.
//   - Log or carry plaintext tokens or passwords in event metadata.
package audit
