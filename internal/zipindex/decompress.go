package zipindex

import (
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/meigma/apk/internal/apktype"
)

// DecompressPool manages reusable entry decoders to reduce allocation overhead.
//
// DEFLATE readers and zstd decoders are pooled separately; both are safe to
// share between goroutines because each Get hands out exclusive ownership
// until the release function runs.
type DecompressPool struct {
	flatePool        sync.Pool
	zstdPool         sync.Pool
	maxDecoderMemory uint64
}

// NewDecompressPool creates a pool for entry decoders.
// If maxMemory is 0, no memory limit is applied to zstd decoders.
func NewDecompressPool(maxMemory uint64) *DecompressPool {
	p := &DecompressPool{maxDecoderMemory: maxMemory}
	p.zstdPool.New = func() any {
		dec, err := p.newZstd(nil)
		if err != nil {
			return nil
		}
		return dec
	}
	return p
}

// Get returns a reader that decodes r according to method.
// The caller must call the returned release function when done.
// If an error is returned, no release function needs to be called.
func (p *DecompressPool) Get(method apktype.Compression, r io.Reader) (io.Reader, func(), error) {
	switch method {
	case apktype.CompressionStore:
		return r, func() {}, nil
	case apktype.CompressionDeflate:
		return p.getFlate(r)
	case apktype.CompressionZstd, apktype.CompressionZstdPKWare:
		return p.getZstd(r)
	default:
		return nil, nil, fmt.Errorf("%w: method %d", zip.ErrAlgorithm, uint16(method))
	}
}

func (p *DecompressPool) getFlate(r io.Reader) (io.Reader, func(), error) {
	if v, ok := p.flatePool.Get().(io.ReadCloser); ok {
		if err := v.(flate.Resetter).Reset(r, nil); err == nil {
			return v, func() { p.flatePool.Put(v) }, nil
		}
	}
	fr := flate.NewReader(r)
	return fr, func() { p.flatePool.Put(fr) }, nil
}

func (p *DecompressPool) getZstd(r io.Reader) (io.Reader, func(), error) {
	dec, ok := p.zstdPool.Get().(*zstd.Decoder)
	if !ok {
		// Pool's New function failed, try directly
		newDec, err := p.newZstd(r)
		if err != nil {
			return nil, nil, err
		}
		return newDec, newDec.Close, nil
	}

	if err := dec.Reset(r); err != nil {
		dec.Close()
		newDec, err := p.newZstd(r)
		if err != nil {
			return nil, nil, err
		}
		return newDec, newDec.Close, nil
	}

	return dec, func() {
		_ = dec.Reset(nil) //nolint:errcheck // clearing state before pool return
		p.zstdPool.Put(dec)
	}, nil
}

// newZstd creates a single-threaded zstd decoder with the configured memory limit.
func (p *DecompressPool) newZstd(r io.Reader) (*zstd.Decoder, error) {
	opts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
	if p.maxDecoderMemory != 0 {
		opts = append(opts, zstd.WithDecoderMaxMemory(p.maxDecoderMemory))
	}
	return zstd.NewReader(r, opts...)
}
