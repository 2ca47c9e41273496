package printer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

func TestHardWrap(t *testing.T) {
	for _, test := range []struct {
		in   string
		n    int
		want []string
	}{
		{in: "", n: 28, want: []string{""}},
		{in: "short", n: 28, want: []string{"short"}},
		{in: "abcdefghij", n: 4, want: []string{"abcd", "efgh", "ij"}},
		{in: "buy milk and eggs", n: 8, want: []string{"buy milk", " and egg", "s"}},
		{in: "one\ntwo\n\nthree", n: 28, want: []string{"one", "two", "three"}},
		{in: "æøåæøå", n: 3, want: []string{"æøå", "æøå"}},
		{in: "abc", n: 0, want: []string{"abc"}},
		{in: "abc\ndef", n: -4, want: []string{"abc", "def"}},
	} {
		if diff := cmp.Diff(test.want, HardWrap(test.in, test.n)); diff != "" {
			t.Errorf("HardWrap(%q, %d) (-want +got):\n%s", test.in, test.n, diff)
		}
	}
}

func TestWordWrap(t *testing.T) {
	for _, test := range []struct {
		in   string
		n    int
		want []string
	}{
		{in: "", n: 32, want: nil},
		{
			in:   "The only way to do great work is to love what you do.",
			n:    32,
			want: []string{"The only way to do great work is", "to love what you do."},
		},
		{in: "a bb ccc", n: 4, want: []string{"a bb", "ccc"}},
		{in: "tiny incomprehensibilities x", n: 10, want: []string{"tiny", "incomprehensibilities", "x"}},
		{in: "first\nsecond line", n: 32, want: []string{"first", "second line"}},
		{in: "a bb", n: 0, want: []string{"a", "bb"}},
	} {
		if diff := cmp.Diff(test.want, WordWrap(test.in, test.n)); diff != "" {
			t.Errorf("WordWrap(%q, %d) (-want +got):\n%s", test.in, test.n, diff)
		}
	}
}

func TestWordWrapWidth(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 20)
	for _, line := range WordWrap(text, 32) {
		if len(line) > 32 {
			t.Errorf("line %q longer than 32", line)
		}
	}
}

func TestDocumentEncoding(t *testing.T) {
	enc, err := LookupEncoding("cp437")
	if err != nil {
		t.Fatal(err)
	}
	got := NewDocument(enc).Text("Ä€").Bytes()
	// Ä is 0x8e in code page 437; the euro sign is not in it
	if len(got) != 2 || got[0] != 0x8e || got[1] == 0xe2 {
		t.Errorf("cp437 text = % x", got)
	}

	utf := NewDocument(nil).Text("Ä").Bytes()
	if !bytes.Equal(utf, []byte("Ä")) {
		t.Errorf("utf-8 text = % x", utf)
	}

	if _, err := LookupEncoding("ebcdic"); err == nil {
		t.Error("LookupEncoding(\"ebcdic\"): expected error")
	}
}

func TestDocumentCommands(t *testing.T) {
	d := NewDocument(nil).Command(Init, BoldOn).Line("hi").Command(BoldOff).Feed(2).Command(Cut)
	want := []byte{0x1b, 0x40, 0x1b, 0x45, 0x01, 'h', 'i', '\n', 0x1b, 0x45, 0x00, '\n', '\n', 0x1d, 0x56, 0x00}
	if diff := cmp.Diff(want, d.Bytes()); diff != "" {
		t.Errorf("document (-want +got):\n%s", diff)
	}
	if d.Len() != len(want) {
		t.Errorf("Len() = %d, want %d", d.Len(), len(want))
	}
}

var errEncoder = errors.New("encoder failed")

type failingTransformer struct{ transform.NopResetter }

func (failingTransformer) Transform(dst, src []byte, atEOF bool) (int, int, error) {
	return 0, 0, errEncoder
}

// failingEncoding fails with an error that is not a repertoire error, so the
// replacement handler passes it through.
type failingEncoding struct{}

func (failingEncoding) NewDecoder() *encoding.Decoder {
	return &encoding.Decoder{Transformer: transform.Nop}
}

func (failingEncoding) NewEncoder() *encoding.Encoder {
	return &encoding.Encoder{Transformer: failingTransformer{}}
}

func TestDocumentEncodingError(t *testing.T) {
	d := NewDocument(failingEncoding{}).Command(Init).Line("first").Line("second")
	if err := d.Err(); !errors.Is(err, errEncoder) {
		t.Fatalf("Err() = %v, want %v", err, errEncoder)
	}
	if strings.Contains(string(d.Bytes()), "first") {
		t.Errorf("unencoded text written: %q", d.Bytes())
	}

	tr := &recordingTransport{}
	if err := NewPrinter(tr, nil).Print(context.Background(), d); !errors.Is(err, errEncoder) {
		t.Errorf("Print: got %v, want %v", err, errEncoder)
	}
	if len(tr.jobs) != 0 {
		t.Error("document with an encoding error was sent")
	}

	if err := NewDocument(nil).Line("ok").Err(); err != nil {
		t.Errorf("utf-8 document: Err() = %v", err)
	}
}
