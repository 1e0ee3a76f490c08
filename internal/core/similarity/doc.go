// Package similarity scores text relevance.
//
// Cosine and Rank score embedding vectors; Tokenize and LexicalScore are the
// token-overlap fallback used when no embedding service is available.
// Everything here is pure and deterministic and safe for concurrent use.
//
// # Import Rules
//
//   - Can Import: standard library only
package similarity
