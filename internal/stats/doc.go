// Package stats keeps process-wide encode counters for the /stats endpoint.
//
// Counters live in memory and reset on restart; the job history database
// is the durable record. Every encode request calls Recorder.Start once and
// finishes the returned Job exactly once, so that
//
//	total == successful + failed
//
// holds whenever no request is in flight.
package stats
