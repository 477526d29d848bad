package reader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/websift/internal/core/domain"
	apperrors "github.com/lueurxax/websift/internal/core/errors"
)

var errBrokenPipe = errors.New("broken pipe")

func readAll(t *testing.T, j *JSONL) []domain.Document {
	t.Helper()

	var docs []domain.Document

	for {
		doc, err := j.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return docs
		}

		require.NoError(t, err)

		docs = append(docs, doc)
	}
}

func TestJSONL_Records(t *testing.T) {
	input := strings.Join([]string{
		`{"id":"a","text":"hello world"}`,
		``,
		`   `,
		`{"text":"no id here"}`,
		`{"id":42,"text":"numeric id"}`,
		`{"id":"crlf","text":"windows line"}` + "\r",
		`{"id":"esc","text":"tab\tand é"}`,
		`{"id":"last","text":""}`,
	}, "\n")

	j, err := New(strings.NewReader(input), Options{})
	require.NoError(t, err)

	docs := readAll(t, j)
	require.Len(t, docs, 6)

	tests := []struct {
		id   string
		text string
	}{
		{id: "a", text: "hello world"},
		{id: "line-4", text: "no id here"},
		{id: "42", text: "numeric id"},
		{id: "crlf", text: "windows line"},
		{id: "esc", text: "tab\tand é"},
		{id: "last", text: ""},
	}

	for i, tt := range tests {
		assert.Equal(t, tt.id, docs[i].ID)
		assert.Equal(t, tt.text, docs[i].Text)
		assert.NoError(t, docs[i].Err)
	}

	assert.Equal(t, int64(len(input)), j.BytesRead())
	assert.Equal(t, int64(8), j.Lines())
}

func TestJSONL_DuplicateKeysKeepFirst(t *testing.T) {
	j, err := New(strings.NewReader(`{"id":"d","text":"first","text":"second","id":"e"}`), Options{})
	require.NoError(t, err)

	docs := readAll(t, j)
	require.Len(t, docs, 1)

	assert.Equal(t, "d", docs[0].ID)
	assert.Equal(t, "first", docs[0].Text)
	assert.NoError(t, docs[0].Err)
}

func TestJSONL_IngestionErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		id   string
		want error
	}{
		{name: "invalid json", line: `{"id":"x","text":`, id: "line-1", want: apperrors.ErrMalformedRecord},
		{name: "not an object", line: `["text"]`, id: "line-1", want: apperrors.ErrMalformedRecord},
		{name: "missing text", line: `{"id":"x"}`, id: "x", want: apperrors.ErrMissingText},
		{name: "non-string text", line: `{"id":"x","text":5}`, id: "x", want: apperrors.ErrMissingText},
		{name: "null text", line: `{"id":"x","text":null}`, id: "x", want: apperrors.ErrMissingText},
		{name: "invalid utf-8", line: "{\"id\":\"x\",\"text\":\"ab\xffcd\"}", id: "line-1", want: apperrors.ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := New(strings.NewReader(tt.line+"\n"), Options{})
			require.NoError(t, err)

			docs := readAll(t, j)
			require.Len(t, docs, 1)

			assert.Equal(t, tt.id, docs[0].ID)
			assert.ErrorIs(t, docs[0].Err, tt.want)
		})
	}
}

func TestJSONL_RecordTooLarge(t *testing.T) {
	big := `{"id":"big","text":"` + strings.Repeat("x", 200) + `"}`
	small := `{"id":"small","text":"ok"}`

	input := small + "\n" + big + "\n" + small + "\n" + big

	j, err := New(strings.NewReader(input), Options{MaxRecordBytes: 64})
	require.NoError(t, err)

	docs := readAll(t, j)
	require.Len(t, docs, 4)

	assert.NoError(t, docs[0].Err)
	assert.Equal(t, "line-2", docs[1].ID)
	assert.ErrorIs(t, docs[1].Err, apperrors.ErrRecordTooLarge)
	assert.Equal(t, "small", docs[2].ID)
	assert.NoError(t, docs[2].Err)
	assert.ErrorIs(t, docs[3].Err, apperrors.ErrRecordTooLarge)
}

func TestJSONL_RecordAtExactLimit(t *testing.T) {
	line := `{"id":"a","text":"abc"}`

	j, err := New(strings.NewReader(line+"\r\n"), Options{MaxRecordBytes: len(line)})
	require.NoError(t, err)

	docs := readAll(t, j)
	require.Len(t, docs, 1)
	assert.NoError(t, docs[0].Err)
}

func TestJSONL_Gzip(t *testing.T) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(`{"id":"z","text":"compressed"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "texts.data")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	j, err := Open(path, Options{})
	require.NoError(t, err)

	defer func() { assert.NoError(t, j.Close()) }()

	docs := readAll(t, j)
	require.Len(t, docs, 1)
	assert.Equal(t, "compressed", docs[0].Text)
}

func TestJSONL_CorruptGzipIsSystemic(t *testing.T) {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(strings.Repeat(`{"id":"z","text":"compressed"}`+"\n", 100)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	data := buf.Bytes()
	truncated := data[:len(data)/2]

	j, err := New(bytes.NewReader(truncated), Options{})
	require.NoError(t, err)

	for {
		_, err = j.Next(context.Background())
		if err != nil {
			break
		}
	}

	assert.ErrorIs(t, err, apperrors.ErrInputRead)
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.jsonl"), Options{})

	assert.ErrorIs(t, err, apperrors.ErrInputUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errBrokenPipe
}

func TestJSONL_ReadErrorIsSystemic(t *testing.T) {
	r := io.MultiReader(strings.NewReader(`{"id":"a","text":"x"}`+"\n"), failingReader{})

	j, err := New(r, Options{})
	require.NoError(t, err)

	doc, err := j.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a", doc.ID)

	_, err = j.Next(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrInputRead)
	assert.ErrorIs(t, err, errBrokenPipe)
}

func TestJSONL_EmptyInput(t *testing.T) {
	j, err := New(strings.NewReader(""), Options{})
	require.NoError(t, err)

	_, err = j.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestJSONL_CanceledContext(t *testing.T) {
	j, err := New(strings.NewReader(`{"text":"x"}`), Options{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = j.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
