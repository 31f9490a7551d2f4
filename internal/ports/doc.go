// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the server core and the outside world.
// They state what the accept loop and connection handler need from logging,
// storage and process management without specifying how those needs are met.
//
// # Port Interfaces
//
//   - [Logger]: Structured logging abstraction (severity + message + fields)
//   - [LogStore]: The append-only persisted byte sequence
//   - [LogHandle]: One open session against the LogStore
//   - [Detacher]: Foreground/background process strategy
//   - [Plugin]: Optional components started alongside the listener
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (files, syslog, zerolog, process re-exec).
package ports
