package printer

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AlexStarov/escpos-raster/config"
	logInternal "github.com/AlexStarov/escpos-raster/log"
)

// Transport hands a finished document to a printer. Send is all or nothing
// from the caller's point of view: an error means the job was not printed.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	Close() error
}

// NewTransport opens the transport selected by cfg.
func NewTransport(cfg config.TransportConfig, logger *zap.Logger) (Transport, error) {
	logger = logInternal.OrNop(logger).With(zap.String("transport", cfg.Type))
	switch cfg.Type {
	case "raw":
		return &RawTransport{Address: cfg.Address, Timeout: cfg.Timeout, Logger: logger}, nil
	case "lpd":
		return &LPDTransport{Address: cfg.Address, Queue: cfg.LPDQueue, Timeout: cfg.Timeout, Logger: logger}, nil
	case "file":
		return &FileTransport{Path: cfg.Path, Logger: logger}, nil
	case "usb":
		t, err := NewUSBTransport(cfg.USB, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "serial":
		t, err := NewSerialTransport(cfg.Serial, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	case "spooler":
		t, err := NewSpoolerTransport(cfg.Spooler, logger)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown transport %q", cfg.Type)
}

// -------------------- RAW --------------------

// RawTransport sends each job over a fresh TCP connection, the "raw" or
// JetDirect protocol on port 9100.
type RawTransport struct {
	Address string
	Timeout time.Duration
	Logger  *zap.Logger
}

func (r *RawTransport) Send(ctx context.Context, data []byte) error {
	conn, err := dial(ctx, r.Address, r.Timeout)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := writeAll(conn, data); err != nil {
		logInternal.OrNop(r.Logger).Error("raw print job failed", zap.String("address", r.Address), zap.Error(err))
		return fmt.Errorf("raw: write to %s: %w", r.Address, err)
	}
	logInternal.OrNop(r.Logger).Info("print job sent", zap.String("address", r.Address), zap.Int("bytes", len(data)))
	return nil
}

func (r *RawTransport) Close() error { return nil }

// StreamTransport writes jobs to an already open connection.
type StreamTransport struct {
	conn io.ReadWriteCloser
}

func (s *StreamTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return writeAll(s.conn, data)
}

func (s *StreamTransport) Read(b []byte) (int, error) { return s.conn.Read(b) }
func (s *StreamTransport) Close() error               { return s.conn.Close() }

// TransportFor wraps an open connection. Connections to port 515 speak LPD;
// anything else receives the bytes as they are.
func TransportFor(w io.ReadWriter) Transport {
	if conn, ok := w.(net.Conn); ok {
		if isLPDAddr(conn.RemoteAddr()) {
			return &LPDTransport{conn: conn, Address: conn.RemoteAddr().String(), Queue: "lp"}
		}
		return &StreamTransport{conn: conn}
	}
	if rc, ok := w.(io.ReadWriteCloser); ok {
		return &StreamTransport{conn: rc}
	}
	return &StreamTransport{conn: nopCloser{w}}
}

func isLPDAddr(addr net.Addr) bool {
	return addr != nil && strings.HasSuffix(addr.String(), ":515")
}

// -------------------- FILE --------------------

// FileTransport appends jobs to a file or device node such as /dev/usb/lp0.
type FileTransport struct {
	Path   string
	Logger *zap.Logger
}

func (f *FileTransport) Send(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Path == "" {
		return fmt.Errorf("file: no path configured")
	}
	out, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("file: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("file: write %s: %w", f.Path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("file: close %s: %w", f.Path, err)
	}
	logInternal.OrNop(f.Logger).Info("print job written", zap.String("path", f.Path), zap.Int("bytes", len(data)))
	return nil
}

func (f *FileTransport) Close() error { return nil }

// -------------------- LPD --------------------

// LPDTransport submits each job to an RFC 1179 line printer daemon queue.
type LPDTransport struct {
	Address string
	Queue   string
	Timeout time.Duration
	Logger  *zap.Logger

	// User and Host fill the control file; defaults come from the
	// environment.
	User, Host string

	// set by TransportFor; carries the first job and is closed after it.
	// Later jobs dial Address.
	conn net.Conn
}

func (l *LPDTransport) Send(ctx context.Context, data []byte) error {
	conn := l.conn
	l.conn = nil
	if conn == nil {
		var err error
		if conn, err = dial(ctx, l.Address, l.Timeout); err != nil {
			return err
		}
	}
	defer conn.Close()

	log := logInternal.OrNop(l.Logger)
	if err := l.submit(conn, data); err != nil {
		log.Error("LPD print job failed", zap.String("queue", l.queue()), zap.Error(err))
		return err
	}
	log.Info("print job sent", zap.String("queue", l.queue()), zap.Int("bytes", len(data)))
	return nil
}

func (l *LPDTransport) Close() error {
	if conn := l.conn; conn != nil {
		l.conn = nil
		return conn.Close()
	}
	return nil
}

func (l *LPDTransport) queue() string {
	if l.Queue == "" {
		return "lp"
	}
	return l.Queue
}

func (l *LPDTransport) submit(conn net.Conn, data []byte) error {
	host := l.Host
	if host == "" {
		host, _ = os.Hostname()
	}
	if host == "" {
		host = "localhost"
	}
	user := l.User
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = "escpos"
	}

	hostShort := host
	if i := strings.IndexByte(hostShort, '.'); i > 0 {
		hostShort = hostShort[:i]
	}
	id := uuid.New()
	jobNum := int(id.ID() % 1000)
	jobName := "escpos-" + id.String()
	cfName := fmt.Sprintf("cfA%03d%s", jobNum, hostShort)
	dfName := fmt.Sprintf("dfA%03d%s", jobNum, hostShort)

	// H - host, P - user, J - job name, N - original file name,
	// l - print data file, leaving control characters in place
	control := fmt.Sprintf(
		"H%s\nP%s\nJ%s\nN%s\nl%s\n",
		host, user, jobName, dfName, dfName,
	)

	if err := requestPrintJob(conn, l.queue()); err != nil {
		return fmt.Errorf("LPD: stage 1 failed: %w", err)
	}
	if err := sendLPDFile(conn, 0x02, cfName, []byte(control), "stage 2"); err != nil {
		return fmt.Errorf("LPD: stage 2 failed: %w", err)
	}
	if err := sendLPDFile(conn, 0x03, dfName, data, "stage 3"); err != nil {
		return fmt.Errorf("LPD: stage 3 failed: %w", err)
	}
	return nil
}

// -------------------- LPD helpers --------------------

func requestPrintJob(conn net.Conn, queue string) error {
	// \x02 + <queue>\n
	if err := writeAll(conn, append([]byte{0x02}, queue+"\n"...)); err != nil {
		return err
	}
	return readAck(conn, "stage 1")
}

// sendLPDFile sends a receive-file subcommand: code + "<size> <name>\n",
// the contents, then a zero byte.
func sendLPDFile(conn net.Conn, code byte, name string, contents []byte, stage string) error {
	header := append([]byte{code}, strconv.Itoa(len(contents))+" "+name+"\n"...)
	if err := writeAll(conn, header); err != nil {
		return err
	}
	if err := readAck(conn, stage+" header"); err != nil {
		return err
	}
	if err := writeAll(conn, contents); err != nil {
		return err
	}
	if err := writeAll(conn, []byte{0x00}); err != nil {
		return err
	}
	return readAck(conn, stage)
}

func readAck(conn net.Conn, stage string) error {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	ack := make([]byte, 1)
	n, err := conn.Read(ack)
	if err != nil {
		return fmt.Errorf("reading ACK on %s: %w", stage, err)
	}
	if n != 1 || ack[0] != 0x00 {
		return fmt.Errorf("LPD request not acknowledged on %s", stage)
	}
	return nil
}

// -------------------- helpers --------------------

func dial(ctx context.Context, address string, timeout time.Duration) (net.Conn, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	return conn, nil
}

func writeAll(w io.Writer, b []byte) error {
	sent := 0
	for sent < len(b) {
		n, err := w.Write(b[sent:])
		if err != nil {
			return err
		}
		sent += n
	}
	return nil
}

type nopCloser struct {
	io.ReadWriter
}

func (n nopCloser) Close() error { return nil }
