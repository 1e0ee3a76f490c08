// Package google builds Drive services and maps Google API errors onto
// domain errors for the Drive release notes source.
//
// Credentials come from one of an OAuth access token, a service account
// JSON file or an API key (public files only). Tokens need the
// https://www.googleapis.com/auth/drive.readonly scope.
package google
