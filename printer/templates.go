package printer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/encoding"

	"github.com/AlexStarov/escpos-raster/config"
	imgInternal "github.com/AlexStarov/escpos-raster/image"
)

const (
	defaultBoxedColumns = 28
	defaultProseColumns = 32
	defaultFeedLines    = 5

	// TimestampLayout is how templates stamp the print time.
	TimestampLayout = "2006-01-02 15:04:05"

	maxCaption = 40
)

// Assembler lays out the documents the printer knows how to print. Each
// document starts with Init and ends with feed lines and Cut.
type Assembler struct {
	// Text code page; nil writes UTF-8
	Encoding encoding.Encoding

	// Width of the text inside a box
	BoxedColumns int
	// Width of word-wrapped text and of the rules
	ProseColumns int
	// Blank lines fed before the cut
	FeedLines int

	RasterMode imgInternal.Mode

	// Converter renders the qrcode template; nil uses the default pipeline
	Converter *imgInternal.Converter

	// Now stamps documents; nil means time.Now
	Now func() time.Time
}

// NewAssembler builds an Assembler from printer configuration.
func NewAssembler(cfg config.PrinterConfig) (*Assembler, error) {
	enc, err := LookupEncoding(cfg.Encoding)
	if err != nil {
		return nil, err
	}
	mode, err := imgInternal.ParseMode(cfg.RasterMode)
	if err != nil {
		return nil, err
	}
	return &Assembler{
		Encoding:     enc,
		BoxedColumns: cfg.BoxedColumns,
		ProseColumns: cfg.ProseColumns,
		FeedLines:    cfg.FeedLines,
		RasterMode:   mode,
	}, nil
}

func (a *Assembler) boxedColumns() int {
	if a.BoxedColumns <= 0 {
		return defaultBoxedColumns
	}
	return a.BoxedColumns
}

func (a *Assembler) proseColumns() int {
	if a.ProseColumns <= 0 {
		return defaultProseColumns
	}
	return a.ProseColumns
}

func (a *Assembler) converter() *imgInternal.Converter {
	if a.Converter == nil {
		return &imgInternal.Converter{}
	}
	return a.Converter
}

func (a *Assembler) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Assembler) rule(c byte) string {
	return strings.Repeat(string(c), a.proseColumns())
}

// begin writes Init and the centered bold banner. Alignment is left centered.
func (a *Assembler) begin(title string) *Document {
	d := NewDocument(a.Encoding)
	d.Command(Init, AlignCenter, BoldOn).
		Feed(1).
		Line(a.rule('=')).
		Line(title).
		Line(a.rule('=')).
		Command(BoldOff)
	return d
}

// end writes the feed lines and the cut.
func (a *Assembler) end(d *Document) *Document {
	feed := a.FeedLines
	if feed <= 0 {
		feed = defaultFeedLines
	}
	return d.Feed(feed).Command(Cut)
}

// stamp writes the centered timestamp and closing rule.
func (a *Assembler) stamp(d *Document) {
	d.Command(AlignCenter).
		Line(a.now().Format(TimestampLayout)).
		Line(a.rule('='))
}

// Image wraps a raster block: banner, size annotation, raster, cut. The
// raster prints centered.
func (a *Assembler) Image(r *imgInternal.Raster) *Document {
	d := a.begin("IMAGE PRINT")
	d.Line(fmt.Sprintf("%d x %d pixels", r.Width, r.Height)).Feed(1)
	d.Raster(r, a.RasterMode)
	return a.end(d)
}

// Reminder prints text in a box, cut into fixed-width lines.
func (a *Assembler) Reminder(text string) *Document {
	cols := a.boxedColumns()
	border := "+" + strings.Repeat("-", cols+2) + "+"
	empty := "|" + strings.Repeat(" ", cols+2) + "|"

	d := a.begin("** YOUR REMINDER **").Feed(1)
	d.Command(AlignLeft).Line(border).Line(empty)
	for _, l := range HardWrap(text, cols) {
		d.Line("| " + padRight(l, cols) + " |")
	}
	d.Line(empty).Line(border).Feed(1)

	d.Command(AlignCenter).
		Line(a.rule('-')).
		Command(BoldOn).Line(">> DON'T FORGET IT! <<").Command(BoldOff).
		Line(a.rule('-'))
	d.Line(a.now().Format(TimestampLayout)).Feed(1).Line(a.rule('='))
	return a.end(d)
}

// Message prints a chat message with a bold sender line. The body is cut at
// the column limit like a terminal would, words and all.
func (a *Assembler) Message(from, text string) *Document {
	d := a.begin("MESSAGE").Feed(1)
	d.Command(AlignLeft, BoldOn).Line("From: " + from).Command(BoldOff).
		Line(a.rule('-')).Feed(1)
	d.Lines(HardWrap(text, a.proseColumns())).Feed(1).Line(a.rule('-'))
	a.stamp(d)
	return a.end(d)
}

// Notification prints a titled notice with an optional icon line.
func (a *Assembler) Notification(title, message, icon string) *Document {
	d := a.begin("NOTIFICATION").Feed(1)
	if icon != "" {
		d.Line(icon).Feed(1)
	}
	d.Command(BoldOn).Line(title).Command(BoldOff).Line(a.rule('-')).Feed(1)
	d.Command(AlignLeft).Lines(HardWrap(message, a.proseColumns())).Feed(1).Line(a.rule('-'))
	a.stamp(d)
	return a.end(d)
}

// Quote prints word-wrapped prose with a right-aligned attribution.
func (a *Assembler) Quote(quote, author string) *Document {
	d := a.begin("QUOTE").Feed(1)
	d.Command(AlignLeft).Lines(WordWrap(quote, a.proseColumns())).Feed(1)
	if author != "" {
		d.Command(AlignRight).Line("- " + author).Feed(1)
	}
	a.stamp(d)
	return a.end(d)
}

// ErrNoItems is returned for a shopping list without items.
var ErrNoItems = errors.New("shopping list has no items")

// ShoppingList prints numbered check boxes, one per item.
func (a *Assembler) ShoppingList(items []string) (*Document, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	d := a.begin("SHOPPING LIST").Feed(1)
	d.Command(AlignLeft)
	for i, item := range items {
		d.Line(fmt.Sprintf("[ ] %d. %s", i+1, item))
	}
	d.Feed(1)
	a.stamp(d)
	return a.end(d), nil
}

// QRCode prints a caption above a raster of the code. Captions longer than
// 40 characters are shortened with "...".
func (a *Assembler) QRCode(caption string, r *imgInternal.Raster) *Document {
	if c := []rune(caption); len(c) > maxCaption {
		caption = string(c[:maxCaption-3]) + "..."
	}
	d := a.begin("QR CODE").Feed(1)
	d.Line(caption).Feed(1)
	d.Raster(r, a.RasterMode)
	return a.end(d)
}

// Template names accepted by Render.
const (
	TemplateReminder     = "reminder"
	TemplateMessage      = "message"
	TemplateNotification = "notification"
	TemplateQuote        = "quote"
	TemplateShopping     = "shopping"
	TemplateQRCode       = "qrcode"
)

// TextJob carries the fields a text template may use.
type TextJob struct {
	Template string
	Title    string
	Text     string
	From     string
	Icon     string
	Items    []string
}

// Render lays out a text job with the named template.
func (a *Assembler) Render(job TextJob) (*Document, error) {
	switch job.Template {
	case TemplateReminder:
		return a.Reminder(job.Text), nil
	case TemplateMessage:
		return a.Message(job.From, job.Text), nil
	case TemplateNotification:
		return a.Notification(job.Title, job.Text, job.Icon), nil
	case TemplateQuote:
		return a.Quote(job.Text, job.From), nil
	case TemplateShopping:
		return a.ShoppingList(job.Items)
	case TemplateQRCode:
		r, err := a.converter().QRCode(job.Text)
		if err != nil {
			return nil, err
		}
		return a.QRCode(job.Text, r), nil
	}
	return nil, fmt.Errorf("unknown template %q", job.Template)
}
