// Package middleware adapts HTTP requests to campusride.Engine calls.
//
// [RequireSession] rejects requests that carry no live session with a 401
// JSON body. [LoadSession] attaches the session when one is present and
// lets anonymous requests through. [RequestContext] stamps every request
// with a request id, the client IP and the User-Agent so engine audit
// events can be correlated with access logs.
//
// Session tokens are read from the session cookie first and from an
// "Authorization: Bearer" header second. All decisions are delegated to
// Engine.Authenticate; this package never parses tokens itself.
package middleware
