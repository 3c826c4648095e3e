// Package channel provides byte channels that compose by delegation: wrappers that
// forward to an underlying reader or writer, stateless null and broken sentinels, and a
// pushback decorator that lets callers return already read bytes to the stream.
//
// Wrapper and pushback types are meant for a single owner and are not safe for
// concurrent use. The sentinels hold no state and may be shared freely.
package channel
