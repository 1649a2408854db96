// Package jwt signs and verifies the compact tokens stored in the session
// cookie. A token only carries the session id and user id; the session record
// itself stays server side.
package jwt
