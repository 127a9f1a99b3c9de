package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// maxCalls bounds the function calls an expert can chain before answering.
const maxCalls = 8

// Expert is a chat with a model specialized by its system instruction and tools.
type Expert struct {
	Name        string
	Description string // tells the facilitator when to ask this expert
	Model       string
	Config      *genai.GenerateContentConfig
	Tools       Toolbox
	chat        *genai.Chat
}

// Start opens the expert's chat.
func (e *Expert) Start(ctx context.Context, client *genai.Client) error {
	chat, err := client.Chats.Create(ctx, e.Model, e.Config, nil)
	if err != nil {
		return err
	}
	e.chat = chat
	return nil
}

// Ask sends parts to the expert, serves its function calls, and returns its text answer.
func (e *Expert) Ask(ctx context.Context, parts ...*genai.Part) (string, error) {
	for range maxCalls {
		resp, err := e.chat.Send(ctx, parts...)
		if err != nil {
			return "", err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", fmt.Errorf("no response from %s", e.Name)
		}

		var calls []*genai.FunctionCall
		var text strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.FunctionCall != nil {
				calls = append(calls, p.FunctionCall)
			}
			text.WriteString(p.Text)
		}
		if len(calls) == 0 {
			return text.String(), nil
		}
		if e.Tools == nil {
			return "", fmt.Errorf("%s has no tool to call %s", e.Name, calls[0].Name)
		}

		parts = make([]*genai.Part, 0, len(calls))
		for _, call := range calls {
			logger.Debug("function call", zap.String("expert", e.Name), zap.String("function", call.Name), zap.Any("args", call.Args))
			parts = append(parts, &genai.Part{FunctionResponse: e.Tools(ctx, call)})
		}
	}
	return "", fmt.Errorf("%s made more than %d function calls", e.Name, maxCalls)
}

// Declaration declares the expert as a function other experts can call.
func (e *Expert) Declaration() *genai.FunctionDeclaration {
	return &genai.FunctionDeclaration{
		Name:        e.Name,
		Description: e.Description,
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"question": {Type: genai.TypeString, Description: "The question to ask the expert."},
			},
			Required: []string{"question"},
		},
		Response: &genai.Schema{Type: genai.TypeString, Description: "The expert's answer."},
	}
}

// Call asks the question in args to the expert.
func (e *Expert) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	question, ok := args["question"].(string)
	if !ok {
		return failure(id, e.Name, fmt.Errorf("argument 'question' must be a string, got %T", args["question"]))
	}
	answer, err := e.Ask(ctx, &genai.Part{Text: question})
	if err != nil {
		return failure(id, e.Name, fmt.Errorf("asking %s: %w", e.Name, err))
	}
	logger.Debug("expert answered", zap.String("expert", e.Name), zap.String("question", question), zap.String("answer", answer))
	return success(id, e.Name, answer)
}
