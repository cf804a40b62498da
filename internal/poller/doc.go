// Package poller implements the fee stats poller.
//
// The poller fetches /fee_stats on a fixed interval and hands the result
// to a handler, giving the gatherer a periodic view of network fee
// pressure alongside the streamed data.
package poller
