// Package encoding converts uploaded statement files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var boms = []struct {
	mark    []byte
	decoder func() transform.Transformer // nil strips the mark only
}{
	{[]byte{0xEF, 0xBB, 0xBF}, nil},
	{[]byte{0xFF, 0xFE}, func() transform.Transformer {
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	}},
	{[]byte{0xFE, 0xFF}, func() transform.Transformer {
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	}},
}

// charsets maps chardet names to decoders. Arabic code pages are common in
// exports from Gulf banks; the Latin ones in exports from European software.
var charsets = map[string]xencoding.Encoding{
	"windows-1256": charmap.Windows1256,
	"ISO-8859-6":   charmap.ISO8859_6,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-1":   charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
}

// NewUTF8Reader returns a reader that decodes r to UTF-8. A byte order mark
// wins, then valid UTF-8 is passed through, then chardet guesses the code
// page. Anything unrecognised is read as Windows-1252.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	head, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, b := range boms {
		if !bytes.HasPrefix(head, b.mark) {
			continue
		}

		if b.decoder == nil {
			_, _ = br.Discard(len(b.mark))
			return br, nil
		}

		return transform.NewReader(br, b.decoder()), nil
	}

	if utf8.Valid(trimPartialRune(head, len(head) == sniffSize)) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if result.Charset == "UTF-8" {
			return br, nil
		}

		if enc, ok := charsets[result.Charset]; ok {
			return transform.NewReader(br, enc.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}

// trimPartialRune drops a multi-byte rune cut off at the end of a sniffed prefix.
func trimPartialRune(b []byte, truncated bool) []byte {
	if !truncated || len(b) == 0 {
		return b
	}

	i := len(b) - 1
	for i > 0 && len(b)-i < utf8.UTFMax && !utf8.RuneStart(b[i]) {
		i--
	}

	if !utf8.FullRune(b[i:]) {
		return b[:i]
	}

	return b
}
