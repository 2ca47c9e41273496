package printer

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	imgInternal "github.com/AlexStarov/escpos-raster/image"
)

var encodings = map[string]encoding.Encoding{
	"cp437":  charmap.CodePage437,
	"cp850":  charmap.CodePage850,
	"cp858":  charmap.CodePage858,
	"cp1252": charmap.Windows1252,
	"latin1": charmap.ISO8859_1,
}

// LookupEncoding returns the code page text is converted to before it is
// written. "" and "utf-8" leave text bytes untouched.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch name {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	e, ok := encodings[name]
	if !ok {
		return nil, fmt.Errorf("unknown text encoding %q", name)
	}
	return e, nil
}

// Document is an ESC/POS byte stream under construction. BoldOn/BoldOff and
// alignment changes are written as given; nothing is balanced automatically.
type Document struct {
	buf bytes.Buffer
	enc *encoding.Encoder
	err error
}

// NewDocument starts an empty document. Text is encoded with enc; runes the
// code page lacks become its replacement byte. A nil enc writes UTF-8.
func NewDocument(enc encoding.Encoding) *Document {
	d := &Document{}
	if enc != nil {
		d.enc = encoding.ReplaceUnsupported(enc.NewEncoder())
	}
	return d
}

// Command appends control sequences.
func (d *Document) Command(cmds ...Command) *Document {
	for _, c := range cmds {
		d.buf.Write(c.Bytes())
	}
	return d
}

// Text appends s without a line break. Text the code page cannot encode is
// dropped and recorded; see Err.
func (d *Document) Text(s string) *Document {
	if d.enc != nil {
		out, err := d.enc.String(s)
		if err != nil {
			if d.err == nil {
				d.err = fmt.Errorf("encode text %q: %w", s, err)
			}
			return d
		}
		s = out
	}
	d.buf.WriteString(s)
	return d
}

// Err returns the first text encoding error, if any.
func (d *Document) Err() error {
	return d.err
}

// Line appends s and a line feed.
func (d *Document) Line(s string) *Document {
	return d.Text(s).Feed(1)
}

// Lines appends each line followed by a line feed.
func (d *Document) Lines(lines []string) *Document {
	for _, l := range lines {
		d.Line(l)
	}
	return d
}

// Feed appends n line feeds.
func (d *Document) Feed(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte('\n')
	}
	return d
}

// Raster appends an encoded raster block. Document implements image.Target.
func (d *Document) Raster(r *imgInternal.Raster, mode imgInternal.Mode) error {
	d.buf.Write(r.Bytes(mode))
	return nil
}

// Write appends raw bytes.
func (d *Document) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

// Bytes returns the document so far.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

func (d *Document) Len() int {
	return d.buf.Len()
}

// HardWrap cuts s into lines of at most n characters without regard for
// words. Newlines end a line; empty lines are dropped. An empty s yields a
// single empty line. With n < 1 lines are only broken at newlines.
func HardWrap(s string, n int) []string {
	if n < 1 {
		n = math.MaxInt
	}
	var lines []string
	for _, para := range strings.FieldsFunc(s, isLineBreak) {
		r := []rune(para)
		for len(r) > n {
			lines = append(lines, string(r[:n]))
			r = r[n:]
		}
		if len(r) > 0 {
			lines = append(lines, string(r))
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

// WordWrap fills lines of at most n characters with whole words, moving to a
// new line when the next word would overflow. A word longer than n gets a
// line of its own. Newlines start a new paragraph.
func WordWrap(s string, n int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			if line != "" && utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) > n {
				lines = append(lines, line)
				line = ""
			}
			if line != "" {
				line += " "
			}
			line += word
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// padRight pads s with spaces to n characters.
func padRight(s string, n int) string {
	if c := utf8.RuneCountInString(s); c < n {
		return s + strings.Repeat(" ", n-c)
	}
	return s
}
