/*
Package ports defines the driven ports (interfaces) of the banking assistant.

These interfaces decouple the conversation logic from external implementations,
allowing it to work with various storage backends and language-model providers.

# Key Interfaces

  - StateStore: Responsible for persisting and loading ConversationState.
  - DistributedLocker: Provides distributed locking for concurrent session access.
  - Oracle: A text-completion backend whose output is never trusted.
  - Answerer: The retrieval-augmented fallback for questions outside the flows.
*/
package ports
