/*
Package domain contains the core types of the banking assistant.

It has no dependencies on adapters. ConversationState is the only mutable entity
threaded through a turn; Slots carries the typed answers collected by a flow.
*/
package domain
