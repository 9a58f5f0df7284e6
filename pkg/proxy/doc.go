// Package proxy forwards gateway requests to the backend.
//
// Every resource endpoint is described by a Route and served by the same
// handler:
//
//  1. path variables are validated ([A-Za-z0-9_-], not "undefined" or "null")
//  2. only allow-listed query parameters are forwarded, optionally renamed
//  3. JSON bodies are validated and passed through an optional BodyTransform
//  4. exactly one backend call is made with the caller's Authorization header
//  5. 2xx responses are relayed byte for byte; other statuses are mirrored
//     inside a {success:false, message} envelope
//
// Transport failures become 500 "Internal server error".
package proxy
