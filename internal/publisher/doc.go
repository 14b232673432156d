// Package publisher is the HTTP client for the Irys upload sidecar. The
// sidecar holds the funded wallet and performs the actual chain uploads;
// this client only ships payloads and tags to it and relays receipts back.
package publisher
