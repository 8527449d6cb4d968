package download

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// MaxLineLength bounds one line of fetcher output
const MaxLineLength = 64 * 1024

// ErrLineTooLong is returned for a line longer than MaxLineLength. The line
// has been consumed and reading can continue.
var ErrLineTooLong = errors.New("fetcher output line too long")

type lineReader struct {
	r *bufio.Reader
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// Next returns the next line without its line ending, or io.EOF
func (l *lineReader) Next() (string, error) {
	line, err := l.r.ReadSlice('\n')
	switch {
	case err == nil:
		return strings.TrimRight(string(line), "\r\n"), nil
	case errors.Is(err, bufio.ErrBufferFull):
		if err := l.discardLine(); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return "", ErrLineTooLong
	case errors.Is(err, io.EOF) && len(line) > 0:
		return strings.TrimRight(string(line), "\r\n"), nil
	default:
		return "", err
	}
}

func (l *lineReader) discardLine() error {
	for {
		_, err := l.r.ReadSlice('\n')
		if !errors.Is(err, bufio.ErrBufferFull) {
			return err
		}
	}
}
