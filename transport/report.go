package transport

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
)

// Locale selects the wording of the report.
type Locale string

const (
	// Portuguese is the default wording.
	Portuguese Locale = "pt"
	// English wording.
	English Locale = "en"
)

type phrases struct {
	header  string
	console string
	line    string
}

var localePhrases = map[Locale]phrases{
	Portuguese: {
		header:  "Política de transporte:",
		console: "Solução Ótima:",
		line:    "Transporte de %d unidade(s) da origem %d para o destino %d.",
	},
	English: {
		header:  "Transport plan:",
		console: "Optimal solution:",
		line:    "Transport of %d unit(s) from source %d to destination %d.",
	},
}

// ParseLocale maps a locale name to a Locale.
func ParseLocale(name string) (Locale, error) {
	l := Locale(name)
	if _, ok := localePhrases[l]; !ok {
		return "", fmt.Errorf("transport: unknown locale %q", name)
	}
	return l, nil
}

// Writer renders allocations as one declarative line per shipment.
type Writer struct {
	locale    Locale
	logger    *log.Logger
	skipDummy bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithLocale selects the report wording.
func WithLocale(l Locale) WriterOption {
	return func(w *Writer) {
		w.locale = l
	}
}

// WithReportLogger mirrors every report line to l.
func WithReportLogger(l *log.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = l
	}
}

// WithoutDummy omits shipments from a dummy source or to a dummy
// destination.
func WithoutDummy(enabled bool) WriterOption {
	return func(w *Writer) {
		w.skipDummy = enabled
	}
}

// NewWriter creates a Writer. The default locale is Portuguese.
func NewWriter(opts ...WriterOption) *Writer {
	w := &Writer{
		locale: Portuguese,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(w)
	}
	if _, ok := localePhrases[w.locale]; !ok {
		w.locale = Portuguese
	}
	return w
}

// Lines returns the report lines for alloc, header first.
func (w *Writer) Lines(in *Instance, alloc *Allocation) []string {
	p := localePhrases[w.locale]
	lines := []string{p.header}
	for _, s := range alloc.Shipments {
		if w.skipDummy && in != nil && (in.IsDummySource(s.Source) || in.IsDummyDestination(s.Destination)) {
			continue
		}
		lines = append(lines, fmt.Sprintf(p.line, s.Amount, s.Source+1, s.Destination+1))
	}
	return lines
}

// Write renders alloc to out and mirrors the shipment lines to the logger.
// in is used only to recognise dummy nodes and may be nil.
func (w *Writer) Write(out io.Writer, in *Instance, alloc *Allocation) error {
	lines := w.Lines(in, alloc)

	bw := bufio.NewWriter(out)
	for _, l := range lines {
		if _, err := bw.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}

	w.logger.Print(localePhrases[w.locale].console)
	for _, l := range lines[1:] {
		w.logger.Print(l)
	}
	return nil
}

// WriteFile writes the report to path, replacing any existing file.
func (w *Writer) WriteFile(path string, in *Instance, alloc *Allocation) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}

	if err := w.Write(f, in, alloc); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "close", Path: path, Err: err}
	}
	return nil
}
