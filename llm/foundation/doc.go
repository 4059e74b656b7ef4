// Package foundation implements llm.Model for the Yandex foundation models
// completion API.
//
// Two transports share one wire codec:
//
//   - Complete posts to {base_url}/completion and blocks for the answer.
//   - CompleteAsync posts to {base_url}/completionAsync, then polls
//     {operations_url}/{id} with the IAM token until the operation is done.
//
// Generate picks between them from Config.Mode. ConcurrentClient runs calls
// on background goroutines and fans out batches.
//
// Every failure is an *errors.AppError. Nothing is retried internally.
//
//	client, err := foundation.New(foundation.Config{
//	    FolderID: folder,
//	    APIKey:   key,
//	    Model:    foundation.ModelPro,
//	})
//	res, err := client.Generate(ctx, llm.CompletionRequest{
//	    Messages: []llm.ChatMessage{llm.User("Hello!")},
//	})
package foundation
