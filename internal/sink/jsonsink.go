package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Wolfnicos/DevizElite/internal/catalog"
)

// JSONSink writes the sequence as an indented JSON array to an io.Writer.
type JSONSink struct {
	w io.Writer
}

// NewJSONSink creates a JSON sink writing to the provided writer.
func NewJSONSink(w io.Writer) *JSONSink { return &JSONSink{w: w} }

// NewStdoutJSON returns a JSON sink that writes to os.Stdout.
func NewStdoutJSON() *JSONSink { return &JSONSink{w: os.Stdout} }

// Publish encodes products with 2-space indentation and a trailing newline.
// Non-ASCII text is written as-is. Nothing reaches the writer if encoding fails.
func (s *JSONSink) Publish(_ context.Context, products []catalog.Product) error {
	b, err := Encode(products)
	if err != nil {
		return err
	}

	if _, err := s.w.Write(b); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	return nil
}

// Encode renders products the way JSONSink writes them.
func Encode(products []catalog.Product) ([]byte, error) {
	if products == nil {
		products = []catalog.Product{}
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(products); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}

	return buf.Bytes(), nil
}
