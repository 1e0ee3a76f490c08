// Package github fetches release notes from GitHub releases.
//
// A reference names a repository and optionally a tag:
//
//	owner/repo           latest published release
//	owner/repo@latest    same as above
//	owner/repo@v2.4.0    the release tagged v2.4.0
//
// # Authentication
//
// A personal access token raises the limit from 60 to 5,000 requests per
// hour and is required for private repositories. Without a token the
// client runs unauthenticated.
//
// # Rate Limiting
//
// Calls share a throttle paced under the hourly quota. When the
// X-RateLimit-* headers show the quota nearly spent, calls wait for the
// reported reset.
package github
