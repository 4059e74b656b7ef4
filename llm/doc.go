// Package llm defines a provider-neutral chat model contract.
//
// The package provides:
//   - A closed chat message set: [SystemMessage], [UserMessage], [AssistantMessage], [ToolResultMessage]
//   - Tool types: [ToolCall], [ToolSpec], and [NewID] for locally generated call ids
//   - Request and result types: [CompletionRequest], [CompletionResult], [Generation], [UsageMetadata]
//   - The [Model] interface implemented by provider packages such as llm/foundation
//   - Middleware over Model: [WithLogging], [WithTracing], [WithMetrics], composed with [Chain]
//   - Convenience helpers: [Complete], [CompleteJSON]
//
// # Usage
//
//	client, err := foundation.New(cfg)
//	model := llm.Chain(client, llm.WithLogging(log), llm.WithTracing())
//
//	res, err := model.Generate(ctx, llm.CompletionRequest{
//	    Messages: []llm.ChatMessage{
//	        llm.System("You are terse."),
//	        llm.User("Hello!"),
//	    },
//	})
package llm
