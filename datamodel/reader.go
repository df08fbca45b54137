package datamodel

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseError reports a malformed line in a ratings file.
type ParseError struct {
	Line  int
	Text  string
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("datamodel: line %d: %v", e.Line, e.cause)
}

func (e *ParseError) Unwrap() error { return e.cause }

type readerOptions struct {
	separator  string
	skipHeader bool
	comment    string
}

// ReaderOption configures ReadRatings.
type ReaderOption func(*readerOptions)

// WithSeparator sets the field separator. Defaults to ",".
// Multi-character separators such as "::" are supported.
func WithSeparator(sep string) ReaderOption {
	return func(o *readerOptions) {
		o.separator = sep
	}
}

// WithHeader skips the first non-comment line.
func WithHeader() ReaderOption {
	return func(o *readerOptions) {
		o.skipHeader = true
	}
}

// WithCommentPrefix ignores lines starting with prefix. Defaults to "#".
func WithCommentPrefix(prefix string) ReaderOption {
	return func(o *readerOptions) {
		o.comment = prefix
	}
}

// ReadRatings parses user<sep>item<sep>rating[<sep>...] lines into a new
// DataModel. Extra trailing fields (timestamps) are ignored.
func ReadRatings(r io.Reader, opts ...ReaderOption) (*DataModel, error) {
	b := NewBuilder()
	if err := b.ReadFrom(r, opts...); err != nil {
		return nil, err
	}
	return b.Build()
}

// ReadFrom parses delimited ratings from r into the builder.
func (b *Builder) ReadFrom(r io.Reader, opts ...ReaderOption) error {
	o := readerOptions{
		separator: ",",
		comment:   "#",
	}
	for _, opt := range opts {
		opt(&o)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	headerPending := o.skipHeader
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || (o.comment != "" && strings.HasPrefix(text, o.comment)) {
			continue
		}
		if headerPending {
			headerPending = false
			continue
		}

		fields := strings.Split(text, o.separator)
		if len(fields) < 3 {
			return &ParseError{Line: line, Text: text, cause: fmt.Errorf("expected at least 3 fields, got %d", len(fields))}
		}

		rating, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil {
			return &ParseError{Line: line, Text: text, cause: err}
		}
		if err := b.AddRating(strings.TrimSpace(fields[0]), strings.TrimSpace(fields[1]), rating); err != nil {
			return &ParseError{Line: line, Text: text, cause: err}
		}
	}
	return sc.Err()
}
