// Package jsonschema derives JSON Schema documents from Go types via
// reflection. Tools use it to advertise their input and output shapes to
// the model provider.
//
// Field schemas are customised with `jsonschema` struct tags:
//
//	Expression string `json:"expression" jsonschema:"description=Math expression,required"`
//	Op         string `json:"op"         jsonschema:"enum=add,enum=sub"`
//
// Tool inputs are flat structs; nested structs are inlined and recursive
// types are not supported.
package jsonschema
