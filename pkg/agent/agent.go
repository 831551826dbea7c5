package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-assistant-be/internal/constant"
	"ai-assistant-be/pkg/llm"
	"ai-assistant-be/pkg/tools"
)

// Result is the outcome of one agent turn.
type Result struct {
	// Answer is the final text handed back to the user.
	Answer string
	// ToolsUsed names every tool call the model declared, in declaration
	// order, even though only the first one is executed.
	ToolsUsed []string
	// ToolResult is the raw JSON payload of the executed tool, nil when the
	// model answered directly.
	ToolResult json.RawMessage
}

// Agent routes a user query through the model's tool-calling decision: it
// either returns the model's direct answer, or runs the first declared tool
// and synthesizes an answer from its output.
type Agent struct {
	llm        llm.Provider
	searchTool tools.Runner
	dbTool     tools.Runner
	logger     *log.Logger
}

func New(provider llm.Provider, searchTool, dbTool tools.Runner, logger *log.Logger) *Agent {
	return &Agent{
		llm:        provider,
		searchTool: searchTool,
		dbTool:     dbTool,
		logger:     logger,
	}
}

// Handle runs one turn. History carries the prior conversation in
// chronological order, without the system prompt; Handle prepends it.
func (a *Agent) Handle(ctx context.Context, query string, history []llm.Message) (*Result, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: constant.SystemPolicyPrompt,
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: query,
	})

	response, err := a.llm.ChatWithTools(ctx, messages, tools.Schemas())
	if err != nil {
		return nil, fmt.Errorf("tool routing call failed: %w", err)
	}

	if len(response.ToolCalls) == 0 {
		return &Result{Answer: response.Content, ToolsUsed: []string{}}, nil
	}

	toolsUsed := make([]string, 0, len(response.ToolCalls))
	for _, call := range response.ToolCalls {
		toolsUsed = append(toolsUsed, call.Name)
	}

	// Only the first declared call is executed; the rest are recorded in
	// ToolsUsed and otherwise ignored.
	call := response.ToolCalls[0]
	kind, ok := tools.KindFromName(call.Name)
	if !ok {
		return nil, fmt.Errorf("model requested unknown tool %q", call.Name)
	}

	var (
		toolResult json.RawMessage
		template   string
	)
	switch kind {
	case tools.KindSearchDocuments:
		a.logger.Printf("[AGENT] dispatching %s", call.Name)
		toolResult = a.searchTool.Run(ctx, call.StringArg("query"))
		template = constant.SynthesisDocumentsTemplate
	case tools.KindQueryDatabase:
		a.logger.Printf("[AGENT] dispatching %s", call.Name)
		toolResult = a.dbTool.Run(ctx, call.StringArg("natural_language_query"))
		template = constant.SynthesisDatabaseTemplate
	}

	answer, err := a.synthesize(ctx, template, query, toolResult)
	if err != nil {
		return nil, fmt.Errorf("answer synthesis failed: %w", err)
	}

	return &Result{
		Answer:     answer,
		ToolsUsed:  toolsUsed,
		ToolResult: toolResult,
	}, nil
}

// synthesize asks the model for a final answer grounded in the tool output.
// Error payloads from the tool flow through unchanged; the model is expected
// to relay them to the user.
func (a *Agent) synthesize(ctx context.Context, template, query string, toolResult json.RawMessage) (string, error) {
	prompt := fmt.Sprintf(template, query, string(toolResult))
	return a.llm.Generate(ctx, prompt)
}
