// Package gateway is a typed client for the Livy REST endpoints that manage
// interactive sessions and their statements.
//
// Every method performs exactly one HTTP request and decodes the response.
// Non-2xx responses, transport failures and malformed bodies are all
// reported as *GatewayError. The client never retries; retry and polling
// policy belong to the caller.
package gateway
