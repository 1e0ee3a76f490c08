// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under ~/.docgap.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with environment overrides
//   - PromptStore: user-editable LLM prompt templates
//   - StopWordsWatcher: hot-reloaded stop-word list for topic extraction
package file
