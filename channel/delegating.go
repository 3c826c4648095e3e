package channel

import "fmt"

var (
	_ Closable    = (*Delegating[Closable])(nil)
	_ Readable    = (*DelegatingReadable[Readable])(nil)
	_ Writable    = (*DelegatingWritable[Writable])(nil)
	_ ByteChannel = (*DelegatingByteChannel[ByteChannel])(nil)
)

// Delegating forwards IsOpen and Close to its delegate.
type Delegating[C Closable] struct {
	delegate C
}

func NewDelegating[C Closable](delegate C) (*Delegating[C], error) {
	if isNil(delegate) {
		return nil, fmt.Errorf("%w: delegate cannot be nil", ErrInvalidArgument)
	}
	return &Delegating[C]{delegate: delegate}, nil
}

// Delegate returns the wrapped channel.
func (d *Delegating[C]) Delegate() C {
	return d.delegate
}

func (d *Delegating[C]) IsOpen() bool {
	return d.delegate.IsOpen()
}

func (d *Delegating[C]) Close() error {
	return d.delegate.Close()
}

// DelegatingReadable forwards every call to a Readable.
type DelegatingReadable[R Readable] struct {
	Delegating[R]
}

func NewDelegatingReadable[R Readable](delegate R) (*DelegatingReadable[R], error) {
	d, err := NewDelegating(delegate)
	if err != nil {
		return nil, err
	}
	return &DelegatingReadable[R]{Delegating: *d}, nil
}

func (d *DelegatingReadable[R]) Read(p []byte) (int, error) {
	return d.delegate.Read(p)
}

// DelegatingWritable forwards every call to a Writable. Decorators that only care about
// writes embed it and override Write.
type DelegatingWritable[W Writable] struct {
	Delegating[W]
}

func NewDelegatingWritable[W Writable](delegate W) (*DelegatingWritable[W], error) {
	d, err := NewDelegating(delegate)
	if err != nil {
		return nil, err
	}
	return &DelegatingWritable[W]{Delegating: *d}, nil
}

func (d *DelegatingWritable[W]) Write(p []byte) (int, error) {
	return d.delegate.Write(p)
}

// DelegatingByteChannel forwards every call to a ByteChannel.
type DelegatingByteChannel[C ByteChannel] struct {
	Delegating[C]
}

func NewDelegatingByteChannel[C ByteChannel](delegate C) (*DelegatingByteChannel[C], error) {
	d, err := NewDelegating(delegate)
	if err != nil {
		return nil, err
	}
	return &DelegatingByteChannel[C]{Delegating: *d}, nil
}

func (d *DelegatingByteChannel[C]) Read(p []byte) (int, error) {
	return d.delegate.Read(p)
}

func (d *DelegatingByteChannel[C]) Write(p []byte) (int, error) {
	return d.delegate.Write(p)
}
