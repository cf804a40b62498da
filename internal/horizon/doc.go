// Package horizon provides the Stellar Horizon API client core: one-shot
// request dispatch and resumable Server-Sent Events streams.
//
// REST endpoints:
//   - Public network: https://horizon.stellar.org
//   - Test network: https://horizon-testnet.stellar.org
//
// Streamable endpoints send SSE frames named "message" whose data field
// carries the JSON resource; the frame id doubles as the resume cursor.
package horizon
