// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ContentRepository: Help-center article corpus (Zendesk, local file)
//   - ConfigStore: Application configuration
//   - PromptStore: LLM prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Generates vector embeddings. Without it, relevance falls back to lexical matching.
//   - LLMService: Language model operations. Without it, drafting and impact analysis are disabled.
//   - Cache: TTL cache for embeddings and results. Without it, every call goes upstream.
//   - ReleaseNotesSource: Remote release-note sources (GitHub, Google Drive).
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
