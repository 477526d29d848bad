// Package reader turns line-delimited JSON text dumps into documents.
//
// Each non-blank line is one record of the form {"id": "...", "text": "..."}.
// Inputs may be gzip-compressed; compression is detected from the stream
// header, not the file name. A record that cannot be decoded is returned as a
// document carrying an ingestion error so the batch can keep going, while a
// failure of the underlying stream is returned as an error. When a key repeats
// within a record, its first occurrence wins.
package reader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/klauspost/compress/gzip"
	"github.com/tidwall/gjson"

	"github.com/lueurxax/websift/internal/core/domain"
	apperrors "github.com/lueurxax/websift/internal/core/errors"
)

const (
	// StdinPath selects standard input.
	StdinPath = "-"

	// DefaultMaxRecordBytes caps a single record when no limit is configured.
	DefaultMaxRecordBytes = 64 << 20

	fieldID   = "id"
	fieldText = "text"

	readBufferSize = 1 << 20
	lineIDPrefix   = "line-"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Options configures a JSONL reader.
type Options struct {
	// MaxRecordBytes caps the length of one line, newline excluded.
	// Zero selects DefaultMaxRecordBytes.
	MaxRecordBytes int
}

// JSONL is a batch.Source over a line-delimited JSON stream.
// It is not safe for concurrent use.
type JSONL struct {
	name    string
	r       *bufio.Reader
	closers []io.Closer
	opts    Options

	buf       []byte
	line      int64
	bytesRead int64
}

// Open opens path, or standard input when path is "-".
func Open(path string, opts Options) (*JSONL, error) {
	if path == StdinPath {
		return newJSONL("stdin", os.Stdin, nil, opts)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInputUnavailable, err)
	}

	j, err := newJSONL(path, f, f, opts)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	return j, nil
}

// New wraps an already open stream. The caller keeps ownership of r.
func New(r io.Reader, opts Options) (*JSONL, error) {
	return newJSONL("stream", r, nil, opts)
}

func newJSONL(name string, r io.Reader, closer io.Closer, opts Options) (*JSONL, error) {
	if opts.MaxRecordBytes <= 0 {
		opts.MaxRecordBytes = DefaultMaxRecordBytes
	}

	j := &JSONL{name: name, opts: opts}
	if closer != nil {
		j.closers = append(j.closers, closer)
	}

	br := bufio.NewReaderSize(r, readBufferSize)

	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrInputUnavailable, name, err)
	}

	if bytes.Equal(head, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: gzip header: %w", apperrors.ErrInputUnavailable, name, err)
		}

		j.closers = append([]io.Closer{zr}, j.closers...)
		br = bufio.NewReaderSize(zr, readBufferSize)
	}

	j.r = br

	return j, nil
}

// Next returns the next record. It returns io.EOF at the end of the stream
// and an error wrapping errors.ErrInputRead when the stream fails.
func (j *JSONL) Next(ctx context.Context) (domain.Document, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Document{}, fmt.Errorf("reading %s: %w", j.name, err)
		}

		line, tooLarge, err := j.readLine()
		if errors.Is(err, io.EOF) {
			return domain.Document{}, io.EOF
		}

		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: %s line %d: %w", apperrors.ErrInputRead, j.name, j.line+1, err)
		}

		j.line++

		if tooLarge {
			return domain.Document{
				ID:  j.lineID(),
				Err: fmt.Errorf("line %d: %w: limit is %d bytes", j.line, apperrors.ErrRecordTooLarge, j.opts.MaxRecordBytes),
			}, nil
		}

		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		return j.decode(line), nil
	}
}

// BytesRead returns the number of decompressed bytes consumed so far.
func (j *JSONL) BytesRead() int64 {
	return j.bytesRead
}

// Lines returns the number of physical lines consumed so far.
func (j *JSONL) Lines() int64 {
	return j.line
}

// Close releases the decompressor and the file opened by Open.
func (j *JSONL) Close() error {
	var errs []error

	for _, c := range j.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	j.closers = nil

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("closing %s: %w", j.name, err)
	}

	return nil
}

func (j *JSONL) decode(line []byte) domain.Document {
	doc := domain.Document{ID: j.lineID()}

	if !utf8.Valid(line) {
		doc.Err = j.recordErr(apperrors.ErrInvalidUTF8)
		return doc
	}

	if !gjson.ValidBytes(line) {
		doc.Err = j.recordErr(apperrors.ErrMalformedRecord)
		return doc
	}

	record := gjson.ParseBytes(line)
	if !record.IsObject() {
		doc.Err = j.recordErr(apperrors.ErrMalformedRecord)
		return doc
	}

	if id := record.Get(fieldID); id.Type == gjson.String || id.Type == gjson.Number {
		doc.ID = id.String()
	}

	text := record.Get(fieldText)
	if text.Type != gjson.String {
		doc.Err = j.recordErr(apperrors.ErrMissingText)
		return doc
	}

	if !utf8.ValidString(text.Str) {
		doc.Err = j.recordErr(apperrors.ErrInvalidUTF8)
		return doc
	}

	doc.Text = text.Str

	return doc
}

// readLine returns the next physical line without its terminator. Lines above
// the size cap are consumed but not buffered; tooLarge reports them.
func (j *JSONL) readLine() (line []byte, tooLarge bool, err error) {
	j.buf = j.buf[:0]

	limit := j.opts.MaxRecordBytes + len("\r\n")
	truncated := false

	for {
		chunk, err := j.r.ReadSlice('\n')
		j.bytesRead += int64(len(chunk))

		if len(j.buf)+len(chunk) > limit {
			truncated = true
		} else {
			j.buf = append(j.buf, chunk...)
		}

		if err == nil {
			break
		}

		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}

		if errors.Is(err, io.EOF) {
			if len(j.buf) == 0 && !truncated {
				return nil, false, io.EOF
			}

			break
		}

		return nil, false, err //nolint:wrapcheck // wrapped by Next
	}

	line = bytes.TrimSuffix(j.buf, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))

	return line, truncated || len(line) > j.opts.MaxRecordBytes, nil
}

func (j *JSONL) lineID() string {
	return lineIDPrefix + strconv.FormatInt(j.line, 10)
}

func (j *JSONL) recordErr(err error) error {
	return fmt.Errorf("line %d: %w", j.line, err)
}
