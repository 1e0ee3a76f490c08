// Package domain defines the core business entities for docgap.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A help-center article as seen by the analysis pipeline
//   - ScoredDocument: A Document with a canonical 0-1 relevance score
//   - Topic and Gap: Candidate features from release notes and the ones lacking coverage
//   - AnalysisResult: The output of one analysis run
//   - ThresholdTable: The update-suggestion classifier
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
