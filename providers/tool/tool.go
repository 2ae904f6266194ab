package tool

import (
	"context"
	"encoding/json"

	"github.com/leofalp/agentics/core/parse"
	"github.com/leofalp/agentics/internal/jsonschema"
)

// Description is the metadata used to advertise a tool to the model
// provider: its name, what it does, and the shape of its arguments.
type Description struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// GenericTool is the provider-agnostic interface for all tools. It erases
// the concrete generic parameters of [Tool] so tools can be stored,
// dispatched, and introspected without knowing their input/output types.
type GenericTool interface {
	// ToolInfo returns the metadata used to advertise this tool.
	ToolInfo() Description

	// Call invokes the tool with a JSON-encoded input string and returns a
	// JSON-encoded output string. Returns an error if parsing or execution
	// fails.
	Call(ctx context.Context, inputJSON string) (string, error)
}

// Tool is a typed, callable tool. Use [NewTool] to construct one; schemas
// for the input type I and output type O are derived via reflection.
type Tool[I, O any] struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Output      *jsonschema.Schema
	Function    func(ctx context.Context, input I) (O, error)
}

type toolOptions struct {
	Description string
}

// WithDescription sets the human-readable description surfaced to the model
// so it can decide when to invoke the tool.
func WithDescription(description string) func(*toolOptions) {
	return func(o *toolOptions) {
		o.Description = description
	}
}

// NewTool constructs a [Tool] with the given name and handler function.
//
// Example:
//
//	calc := tool.NewTool("calculator", evaluate,
//	    tool.WithDescription("Useful for when you need to answer questions about math."),
//	)
func NewTool[I, O any](name string, function func(ctx context.Context, input I) (O, error), options ...func(*toolOptions)) *Tool[I, O] {
	opts := &toolOptions{}
	for _, option := range options {
		option(opts)
	}

	return &Tool[I, O]{
		Name:        name,
		Description: opts.Description,
		Parameters:  jsonschema.GenerateJSONSchema[I](),
		Output:      jsonschema.GenerateJSONSchema[O](),
		Function:    function,
	}
}

// ToolInfo returns the metadata used to advertise this tool.
func (t *Tool[I, O]) ToolInfo() Description {
	return Description{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Call deserialises inputJSON into the tool's input type (repairing
// malformed model-emitted JSON where possible), executes the function, and
// returns the result serialised as JSON.
func (t *Tool[I, O]) Call(ctx context.Context, inputJSON string) (string, error) {
	input, err := parse.ParseStringAs[I](inputJSON)
	if err != nil {
		return "", err
	}

	output, err := t.Function(ctx, input)
	if err != nil {
		return "", err
	}

	encoded, err := json.Marshal(output)
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}
