// Package connectors holds the release notes sources that read from
// remote systems. Each subpackage implements driven.ReleaseNotesSource:
//
//   - github: release descriptions, by owner/repo@tag
//   - google/drive: Google Docs and text files, by file ID or link
//   - web: the readable text of a public page
//   - local: a file on disk or standard input
package connectors
