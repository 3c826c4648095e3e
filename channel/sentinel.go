package channel

import "io"

var (
	// NullReadable reports end-of-stream on every read.
	NullReadable Readable = nullChannel{}
	// NullWritable accepts and discards every write.
	NullWritable Writable = nullChannel{}
	// Null discards writes and reports end-of-stream on reads.
	Null ByteChannel = nullChannel{}
	// Broken fails every read, write and close with ErrBroken.
	Broken ByteChannel = brokenChannel{}
)

type nullChannel struct{}

func (nullChannel) IsOpen() bool { return true }

func (nullChannel) Close() error { return nil }

func (nullChannel) Read([]byte) (int, error) { return 0, io.EOF }

func (nullChannel) Write(p []byte) (int, error) { return len(p), nil }

// ReadFrom drains r without buffering, so io.Copy into a null channel consumes the source.
func (nullChannel) ReadFrom(r io.Reader) (int64, error) {
	return io.Copy(io.Discard, r)
}

type brokenChannel struct{}

func (brokenChannel) IsOpen() bool { return true }

func (brokenChannel) Close() error { return ErrBroken }

func (brokenChannel) Read([]byte) (int, error) { return 0, ErrBroken }

func (brokenChannel) Write([]byte) (int, error) { return 0, ErrBroken }
