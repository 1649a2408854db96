// Package httpapi exposes the campusride engine as a JSON HTTP API.
//
// Every mutating endpoint answers {success, message}. Engine errors are
// mapped to status codes by middleware.StatusFor; wrapped backend details
// never reach the client.
package httpapi
