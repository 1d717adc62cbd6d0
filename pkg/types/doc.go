// Package types defines the contracts shared by every part of the kernel:
// property, model and component definitions, entity types, the command
// context and its payload, handlers and strategies, the Store interface for
// storage adapters, execution results, configuration, and the standard
// errors.
package types
