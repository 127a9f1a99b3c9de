package agent

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Tool is a function a model can call.
type Tool interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse
}

// Toolbox serves function calls.
type Toolbox func(context.Context, *genai.FunctionCall) *genai.FunctionResponse

// NewToolbox dispatches calls to the tool of the same name.
func NewToolbox[T Tool](tools []T) Toolbox {
	return func(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse {
		for _, t := range tools {
			if t.Declaration().Name == call.Name {
				return t.Call(ctx, call.ID, call.Args)
			}
		}
		return failure(call.ID, call.Name, fmt.Errorf("unknown function %s", call.Name))
	}
}

// Declarations returns the declarations of tools.
func Declarations[T Tool](tools []T) []*genai.FunctionDeclaration {
	result := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		result = append(result, t.Declaration())
	}
	return result
}

// Func is a Tool made of a declaration and a function.
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return failure(id, f.Decl.Name, err)
	}
	return success(id, f.Decl.Name, out)
}

func success(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

func failure(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}
