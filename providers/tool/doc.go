// Package tool provides the typed tool abstraction and the registry through
// which the agent dispatches tool calls.
//
// A [Tool] binds a name to a strongly-typed Go function and derives JSON
// schemas for its input and output via reflection. [GenericTool] erases the
// type parameters so tools of different shapes can live together in a
// [Catalog], keyed case-insensitively by name.
package tool
