package storage

import (
	"errors"
	"io"
	"sync/atomic"
)

// progressReader counts bytes as they pass through Read and reports them
type progressReader struct {
	r     io.Reader
	total int64
	sent  atomic.Int64
	fn    ProgressFunc
}

func newProgressReader(r io.Reader, total int64, fn ProgressFunc) *progressReader {
	return &progressReader{r: r, total: total, fn: fn}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.report(int64(n))
	}
	return n, err
}

// Seek is needed by request signers that rewind the body. Rewinding to the
// start resets the counter.
func (p *progressReader) Seek(offset int64, whence int) (int64, error) {
	s, ok := p.r.(io.Seeker)
	if !ok {
		return 0, errors.New("progress reader: underlying body is not seekable")
	}
	pos, err := s.Seek(offset, whence)
	if err != nil {
		return pos, err
	}
	p.sent.Store(pos)
	return pos, nil
}

func (p *progressReader) report(n int64) {
	sent := p.sent.Add(n)
	if p.fn != nil {
		p.fn(sent, p.total)
	}
}

// progressSink is handed to minio, which calls Read with each chunk it sent
// instead of reading from it
type progressSink struct {
	total int64
	sent  int64
	fn    ProgressFunc
}

func (p *progressSink) Read(b []byte) (int, error) {
	p.sent += int64(len(b))
	if p.fn != nil {
		p.fn(p.sent, p.total)
	}
	return len(b), nil
}

// Percent converts a progress report into 0..100
func Percent(sent, total int64) float64 {
	if total <= 0 {
		return 0
	}
	if sent >= total {
		return 100
	}
	return 100.0 * float64(sent) / float64(total)
}

// TrackProgress wraps r so fn is called as bytes are read from it. The
// result stays seekable when r is.
func TrackProgress(r io.Reader, total int64, fn ProgressFunc) io.Reader {
	return newProgressReader(r, total, fn)
}
