// Package api defines the request and response payloads of the diacritfix
// HTTP API.
//
// # API Overview
//
// diacritfix exposes a small REST surface for the paid document-repair flow:
//   - POST /process-and-pay — submit a document, receive a checkout URL
//   - POST /verify-payment  — confirm a completed checkout session
//   - GET  /get-file        — download the repaired document (one-shot)
//   - POST /webhook         — signed payment gateway event delivery
//   - Health monitoring and metrics
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
