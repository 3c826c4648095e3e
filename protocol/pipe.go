package protocol

import (
	"io"

	"github.com/fossnova/nio/channel"
	"github.com/fossnova/nio/stat"
)

const statsFlushBytes = 2 * 1024

// countingWriter reports written bytes in batches of at least bufferLimit.
type countingWriter struct {
	*channel.DelegatingWritable[channel.Writable]
	buffered    int64
	bufferLimit int64
	onWrite     func(n int64)
}

func newCountingWriter(w channel.Writable, onWrite func(n int64)) (*countingWriter, error) {
	d, err := channel.NewDelegatingWritable(w)
	if err != nil {
		return nil, err
	}
	return &countingWriter{
		DelegatingWritable: d,
		bufferLimit:        statsFlushBytes,
		onWrite:            onWrite,
	}, nil
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.DelegatingWritable.Write(p)
	if n > 0 {
		cw.buffered += int64(n)
		if cw.buffered >= cw.bufferLimit {
			cw.flush()
		}
	}
	return n, err
}

func (cw *countingWriter) flush() {
	if cw.buffered > 0 && cw.onWrite != nil {
		cw.onWrite(cw.buffered)
	}
	cw.buffered = 0
}

type copyResult struct {
	dst channel.Writable
	err error
}

// pipe copies src to dst and dst to src until both directions end. A direction that
// hits end-of-stream half-closes its destination; any error closes both sides.
func pipe(src, dst channel.ByteChannel, ruleKey string) error {
	stat.GlobalStats.AddConn(ruleKey)
	defer stat.GlobalStats.RemoveConn(ruleKey)

	closeBoth := func() {
		_ = dst.Close()
		_ = src.Close()
	}
	defer closeBoth()

	results := make(chan copyResult, 2)
	copyCounted := func(w channel.Writable, r io.Reader, record func(n int64)) {
		cw, err := newCountingWriter(w, record)
		if err == nil {
			_, err = io.Copy(cw, r)
			cw.flush()
		}
		results <- copyResult{dst: w, err: err}
	}

	go copyCounted(dst, src, func(n int64) { stat.GlobalStats.AddBytes(ruleKey, 0, n) })
	go copyCounted(src, dst, func(n int64) { stat.GlobalStats.AddBytes(ruleKey, n, 0) })

	var firstErr error
	for i := 0; i < 2; i++ {
		res := <-results
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			closeBoth()
			continue
		}
		if cw, ok := res.dst.(interface{ CloseWrite() error }); ok {
			_ = cw.CloseWrite()
		}
	}
	return firstErr
}
