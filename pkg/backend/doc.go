// Package backend is the outbound HTTP client for the NewtonBotics backend.
//
// Every proxied request results in exactly one call through Client.Do. There
// are no retries: a transport failure is reported to the caller, and non-2xx
// statuses are returned as ordinary responses so the gateway can mirror them.
//
// The transport is wrapped with otelhttp, so outbound calls join any trace
// started by the inbound request.
package backend
