package assets

import (
	"context"
	"io"
)

// ctxReader fails reads once its context is done so decoders stop early.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// progressReader counts bytes and reports whenever the whole percentage
// changes, and once more at EOF.
type progressReader struct {
	r           io.Reader
	loaded      int64
	total       int64
	report      ProgressFunc
	lastPercent int64
	done        bool
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	p.loaded += int64(n)

	if err == io.EOF {
		if !p.done {
			p.done = true
			p.report(p.loaded, p.total)
		}
		return n, err
	}
	if n > 0 && p.total > 0 {
		percent := p.loaded * 100 / p.total
		if percent != p.lastPercent {
			p.lastPercent = percent
			p.report(p.loaded, p.total)
		}
	}
	return n, err
}
