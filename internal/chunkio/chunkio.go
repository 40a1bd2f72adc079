// Package chunkio moves bytes between handles and standard library streams
// in chunks bounded by an algorithm's block size.
package chunkio

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytepress/bytepress/handle"
)

// Pump copies src to dst in chunks of at most blockSize bytes until the
// handle reports end-of-data, returning the total bytes read from src.
func Pump(dst io.Writer, src handle.Handle, blockSize int) (int64, error) {
	var total int64
	for {
		chunk, err := src.Read(blockSize)
		if err != nil {
			return total, fmt.Errorf("reading input: %w", err)
		}
		if len(chunk) == 0 {
			return total, nil
		}
		if _, err := dst.Write(chunk); err != nil {
			return total, fmt.Errorf("writing output: %w", err)
		}
		total += int64(len(chunk))
	}
}

// CopyLimit copies src to dst in chunks bounded both by blockSize and by the
// remaining allowance, stopping exactly at limit even mid-chunk. It returns
// the bytes produced, which is smaller than limit when src is exhausted
// first. End-of-stream is not an error.
func CopyLimit(dst handle.Handle, src io.Reader, blockSize int, limit int64) (int64, error) {
	var produced int64
	buf := make([]byte, blockSize)

	for produced < limit {
		want := int64(blockSize)
		if remaining := limit - produced; remaining < want {
			want = remaining
		}

		n, err := io.ReadFull(src, buf[:want])
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return produced, fmt.Errorf("writing output: %w", werr)
			}
			produced += int64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return produced, nil
			}
			return produced, fmt.Errorf("reading input: %w", err)
		}
	}
	return produced, nil
}
