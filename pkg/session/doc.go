/*
Package session implements session management and persistence orchestration.

A Manager serializes access to one session's ConversationState across goroutines
and, with a DistributedLocker, across replicas sharing the same store.
*/
package session
