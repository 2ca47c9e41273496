package printer

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	imgInternal "github.com/AlexStarov/escpos-raster/image"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func testAssembler() *Assembler {
	return &Assembler{Now: func() time.Time { return fixedTime }}
}

func checkFrame(t *testing.T, name string, doc []byte) {
	t.Helper()
	if !bytes.HasPrefix(doc, Init.Bytes()) {
		t.Errorf("%s: document does not start with Init: % x", name, doc[:min(len(doc), 8)])
	}
	tail := append(bytes.Repeat([]byte{'\n'}, defaultFeedLines), Cut.Bytes()...)
	if !bytes.HasSuffix(doc, tail) {
		t.Errorf("%s: document does not end with feed and Cut: % x", name, doc[max(0, len(doc)-10):])
	}
	if n := bytes.Count(doc, Cut.Bytes()); n != 1 {
		t.Errorf("%s: %d cut commands, want 1", name, n)
	}
}

func TestTemplatesFrame(t *testing.T) {
	a := testAssembler()
	r := &imgInternal.Raster{Width: 8, Height: 1, WidthBytes: 1, Data: []byte{0xff}}
	list, err := a.ShoppingList([]string{"milk"})
	if err != nil {
		t.Fatal(err)
	}
	for name, doc := range map[string]*Document{
		"image":        a.Image(r),
		"reminder":     a.Reminder("water the plants"),
		"message":      a.Message("ana", "hello"),
		"notification": a.Notification("Build", "passed", "*"),
		"quote":        a.Quote("stay hungry", "someone"),
		"shopping":     list,
		"qrcode":       a.QRCode("https://example.com", r),
	} {
		checkFrame(t, name, doc.Bytes())
	}
}

func TestImageDocument(t *testing.T) {
	a := testAssembler()
	r := &imgInternal.Raster{Width: 10, Height: 1, WidthBytes: 2, Data: []byte{0xff, 0xc0}}
	doc := a.Image(r).Bytes()

	block := r.BitImage()
	i := bytes.Index(doc, block)
	if i < 0 {
		t.Fatalf("raster block % x not found in document", block)
	}
	if !bytes.Contains(doc[:i], []byte("10 x 1 pixels\n")) {
		t.Error("size annotation missing before raster")
	}
	if got, want := doc[i+len(block):], append(bytes.Repeat([]byte{'\n'}, defaultFeedLines), Cut.Bytes()...); !bytes.Equal(got, want) {
		t.Errorf("after raster: got % x, want % x", got, want)
	}
}

func TestImageDocumentGraphics(t *testing.T) {
	a := testAssembler()
	a.RasterMode = imgInternal.Graphics
	r := &imgInternal.Raster{Width: 8, Height: 1, WidthBytes: 1, Data: []byte{0x80}}
	doc := a.Image(r).Bytes()
	if !bytes.Contains(doc, r.Graphics()) {
		t.Error("graphics block not found in document")
	}
	if bytes.Contains(doc, r.Header()) {
		t.Error("document contains a GS v 0 header in graphics mode")
	}
}

func TestReminderBox(t *testing.T) {
	a := testAssembler()
	a.BoxedColumns = 8
	doc := string(a.Reminder("abcdefghij").Bytes())

	want := []string{
		"+----------+",
		"|          |",
		"| abcdefgh |",
		"| ij       |",
		"|          |",
		"+----------+",
	}
	if !strings.Contains(doc, strings.Join(want, "\n")+"\n") {
		t.Errorf("box not found in document:\n%s", doc)
	}
	if !strings.Contains(doc, ">> DON'T FORGET IT! <<") {
		t.Error("footer missing")
	}
	if !strings.Contains(doc, "2024-03-09 14:05:07\n") {
		t.Error("timestamp missing")
	}
}

func TestMessageBodySplit(t *testing.T) {
	body := "The only way to do great work is to love what you do."
	want := "The only way to do great work is\n to love what you do.\n"

	a := testAssembler()
	for name, doc := range map[string]*Document{
		"message":      a.Message("ana", body),
		"notification": a.Notification("Quote", body, ""),
	} {
		if !strings.Contains(string(doc.Bytes()), want) {
			t.Errorf("%s: body not cut at 32 columns:\n%s", name, doc.Bytes())
		}
	}

	quote := string(a.Quote(body, "").Bytes())
	if !strings.Contains(quote, "The only way to do great work is\nto love what you do.\n") {
		t.Errorf("quote: body not word wrapped:\n%s", quote)
	}
}

func TestShoppingList(t *testing.T) {
	a := testAssembler()
	if _, err := a.ShoppingList(nil); !errors.Is(err, ErrNoItems) {
		t.Errorf("ShoppingList(nil): got %v, want ErrNoItems", err)
	}
	d, err := a.ShoppingList([]string{"milk", "eggs"})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(d.Bytes(), []byte("[ ] 1. milk\n[ ] 2. eggs\n")) {
		t.Errorf("items missing:\n%s", d.Bytes())
	}
}

func TestQuoteAttribution(t *testing.T) {
	doc := testAssembler().Quote("words", "Author").Bytes()
	want := append(AlignRight.Bytes(), "- Author\n"...)
	if !bytes.Contains(doc, want) {
		t.Error("right-aligned attribution missing")
	}
}

func TestQRCodeCaption(t *testing.T) {
	r := &imgInternal.Raster{Width: 8, Height: 1, WidthBytes: 1, Data: []byte{0}}
	for _, test := range []struct {
		caption string
		want    string
	}{
		{caption: "short", want: "short"},
		{caption: strings.Repeat("x", 40), want: strings.Repeat("x", 40)},
		{caption: strings.Repeat("y", 41), want: strings.Repeat("y", 37) + "..."},
	} {
		doc := testAssembler().QRCode(test.caption, r).Bytes()
		if !bytes.Contains(doc, []byte("\n"+test.want+"\n")) {
			t.Errorf("QRCode(%q): caption %q not found", test.caption, test.want)
		}
	}
}

func TestRender(t *testing.T) {
	a := testAssembler()
	for _, test := range []struct {
		job     TextJob
		want    string
		wantErr bool
	}{
		{job: TextJob{Template: TemplateReminder, Text: "call mom"}, want: "** YOUR REMINDER **"},
		{job: TextJob{Template: TemplateMessage, From: "bob", Text: "hi"}, want: "From: bob"},
		{job: TextJob{Template: TemplateNotification, Title: "Deploy", Text: "done"}, want: "Deploy"},
		{job: TextJob{Template: TemplateQuote, Text: "q", From: "me"}, want: "- me"},
		{job: TextJob{Template: TemplateShopping, Items: []string{"tea"}}, want: "[ ] 1. tea"},
		{job: TextJob{Template: TemplateQRCode, Text: "https://example.com"}, want: "https://example.com\n"},
		{job: TextJob{Template: TemplateQRCode}, wantErr: true},
		{job: TextJob{Template: TemplateShopping}, wantErr: true},
		{job: TextJob{Template: "poem"}, wantErr: true},
	} {
		d, err := a.Render(test.job)
		if test.wantErr {
			if err == nil {
				t.Errorf("Render(%+v): expected error", test.job)
			}
			continue
		}
		if err != nil {
			t.Errorf("Render(%+v): %v", test.job, err)
			continue
		}
		if !bytes.Contains(d.Bytes(), []byte(test.want)) {
			t.Errorf("Render(%+v): %q not found", test.job, test.want)
		}
	}
}

func TestNewAssembler(t *testing.T) {
	for _, test := range []struct {
		encoding, mode string
		wantErr        bool
	}{
		{encoding: "cp437", mode: "bit-image"},
		{encoding: "", mode: "graphics"},
		{encoding: "klingon", mode: "bit-image", wantErr: true},
		{encoding: "cp437", mode: "sixel", wantErr: true},
	} {
		a, err := NewAssembler(testPrinterConfig(test.encoding, test.mode))
		if gotErr := err != nil; gotErr != test.wantErr {
			t.Errorf("NewAssembler(%q, %q): err = %v, wantErr %v", test.encoding, test.mode, err, test.wantErr)
			continue
		}
		if err == nil {
			if diff := cmp.Diff(imgInternal.Mode(test.mode), a.RasterMode); diff != "" {
				t.Errorf("RasterMode (-want +got):\n%s", diff)
			}
		}
	}
}

func TestRenderQRCode(t *testing.T) {
	a := testAssembler()
	a.Converter = &imgInternal.Converter{}
	text := "https://example.com/a/very/long/address/that/needs/truncating"
	d, err := a.Render(TextJob{Template: TemplateQRCode, Text: text})
	if err != nil {
		t.Fatal(err)
	}
	doc := d.Bytes()
	if !bytes.Contains(doc, []byte("\n"+text[:37]+"...\n")) {
		t.Error("truncated caption missing")
	}
	// 300x300 code fitted to 150x150: 19 bytes per row
	if !bytes.Contains(doc, []byte{0x1d, 0x76, 0x30, 0x00, 19, 0, 150, 0}) {
		t.Error("GS v 0 header for a 150x150 code missing")
	}
	if !bytes.HasPrefix(doc, Init.Bytes()) || !bytes.HasSuffix(doc, Cut.Bytes()) {
		t.Error("document not framed by Init and Cut")
	}
}
