package utils

import (
	"errors"
	"fmt"
	"io"
)

var ErrIOLimitReached = fmt.Errorf("read size limit reached")

// ReadAllLimit reads up to n bytes, returning ErrIOLimitReached along with the
// first n bytes if r has more.
func ReadAllLimit(r io.Reader, n int) ([]byte, error) {
	limit := n + 1
	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)))
	if err != nil {
		return buf, err
	}
	if len(buf) >= limit {
		return buf[:limit-1], ErrIOLimitReached
	}
	return buf, nil
}

// CopyLimit copies up to `limit+1`, if it copies more than `limit`, it returns ErrIOLimitReached
func CopyLimit(dst io.Writer, src io.Reader, limit int64) (written int64, err error) {
	n, err := io.CopyN(dst, src, limit+1)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("copying: %w", err)
	}

	if n > limit {
		return n, ErrIOLimitReached
	}

	return n, nil
}

// Truncate shortens s to at most max runes, appending suffix when it cuts.
// The suffix counts towards max.
func Truncate(s string, max int, suffix string) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	keep := max - len([]rune(suffix))
	if keep < 0 {
		keep = 0
	}
	return string(runes[:keep]) + suffix
}
