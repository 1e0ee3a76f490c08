// Package topics derives candidate topics from release-note text.
//
// The Extractor is driven by data: its stop-word set, punctuation set,
// minimum length and cap are all configuration. The stop-word set can be
// swapped at runtime, which the config adapter uses to hot-reload a
// stopwords.txt file.
//
// # Import Rules
//
//   - Can Import: domain package only
package topics
