package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-parser-go/internal/config"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body + `</w:body></w:document>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestDocxXMLToText(t *testing.T) {
	xml := `<w:p><w:r><w:t>Jane Roe</w:t></w:r></w:p><w:p><w:r><w:t>R&amp;D</w:t><w:tab/><w:t>Lead</w:t></w:r></w:p>`
	assert.Equal(t, "Jane Roe\nR&D\tLead", DocxXMLToText(xml))
}

func TestDocxExtractor(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>Jane Roe</w:t></w:r></w:p><w:p><w:r><w:t>Experience</w:t></w:r></w:p>`)

	text, meta, err := NewDocxExtractor().ExtractTextFromBytes(context.Background(), data, "cv.docx")
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Roe\nExperience")
	assert.Equal(t, "cv.docx", meta["source_file_path"])

	_, _, err = NewDocxExtractor().ExtractTextFromBytes(context.Background(), []byte("not a zip"), "bad.docx")
	assert.Error(t, err)
}

func TestPlainTextExtractor(t *testing.T) {
	text, _, err := PlainTextExtractor{}.ExtractTextFromBytes(context.Background(), append([]byte{0xEF, 0xBB, 0xBF}, "Jane Roe\n"...), "cv.txt")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\n", text)

	text, meta, err := PlainTextExtractor{}.ExtractTextFromBytes(context.Background(), []byte{'a', 0xff, 'b'}, "cv.txt")
	require.NoError(t, err)
	assert.Equal(t, "a\uFFFDb", text)
	assert.Equal(t, true, meta["invalid_utf8"])
}

func TestLedongPDFExtractorRejectsGarbage(t *testing.T) {
	_, _, err := LedongPDFExtractor{}.ExtractTextFromBytes(context.Background(), []byte("%PDF-garbage"), "bad.pdf")
	assert.Error(t, err)
}

func TestTikaPDFExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		assert.Equal(t, "cv.pdf", r.Header.Get("X-Tika-Resource-Name"))
		body, _ := io.ReadAll(r.Body)
		if string(body) == "broken" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		_, _ = w.Write([]byte("Jane Roe\nExperience\n"))
	}))
	defer srv.Close()

	e := NewTikaPDFExtractor(srv.URL + "/")
	text, meta, err := e.ExtractTextFromBytes(context.Background(), []byte("%PDF"), "cv.pdf")
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe\nExperience\n", text)
	assert.Equal(t, len(text), meta["text_length"])

	_, _, err = e.ExtractTextFromBytes(context.Background(), []byte("broken"), "cv.pdf")
	assert.Error(t, err)
}

func TestDocumentExtractorDispatch(t *testing.T) {
	d := NewDocumentExtractor(LedongPDFExtractor{})

	assert.True(t, d.Supports("CV.PDF"))
	assert.True(t, d.Supports("cv.docx"))
	assert.True(t, d.Supports("cv.txt"))
	assert.False(t, d.Supports("cv.doc"))
	assert.Equal(t, []string{".docx", ".pdf", ".txt"}, d.Extensions())

	text, _, err := d.Extract(context.Background(), "notes.TXT", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	_, _, err = d.Extract(context.Background(), "photo.png", nil)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	d.Register(".txt", nil)
	assert.False(t, d.Supports("cv.txt"))
}

func TestBuildPDFExtractor(t *testing.T) {
	cfg := config.DefaultConfig().Extraction

	cfg.PDFExtractor = "tika"
	e, err := BuildPDFExtractor(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &TikaPDFExtractor{}, e)

	cfg.PDFExtractor = "ledongthuc"
	e, err = BuildPDFExtractor(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, LedongPDFExtractor{}, e)

	cfg.PDFExtractor = "eino"
	e, err = BuildPDFExtractor(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &EinoPDFTextExtractor{}, e)

	cfg.PDFExtractor = "ocr"
	_, err = BuildPDFExtractor(context.Background(), cfg)
	assert.Error(t, err)
}
