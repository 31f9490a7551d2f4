// Package domain contains the core entities of the aesdsocket service.
//
// It has no dependencies on infrastructure (sockets, files, logging) and holds
// only the pieces every other layer agrees on:
//
//   - [FrameBuffer]: the growable receive buffer of one connection
//   - [Phase]: the per-connection state machine labels
//   - [Error] and [Kind]: the failure taxonomy and its handling policy
package domain
