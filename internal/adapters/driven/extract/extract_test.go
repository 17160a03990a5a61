package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notebook-cli/internal/core/domain"
)

func TestRegistry_ForFile(t *testing.T) {
	r := NewRegistry()

	t.Run("text extensions", func(t *testing.T) {
		for _, path := range []string{"notes.txt", "README.md", "doc.markdown", "a.text", "UPPER.TXT"} {
			extractor, err := r.ForFile(path)
			require.NoError(t, err, path)
			assert.Equal(t, domain.SourceKindText, extractor.Kind(), path)
		}
	})

	t.Run("pdf", func(t *testing.T) {
		extractor, err := r.ForFile("paper.pdf")
		require.NoError(t, err)
		assert.Equal(t, domain.SourceKindPDF, extractor.Kind())
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := r.ForFile("image.png")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		var extErr *domain.ExtractionError
		assert.ErrorAs(t, err, &extErr)
	})
}

func TestRegistry_ForURL(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, domain.SourceKindURL, r.ForURL().Kind())
}

func TestPlainText_Extract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from a file"), 0600))

	text, name, err := NewPlainText().Extract(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, "hello from a file", text)
	assert.Equal(t, "notes.txt", name)
}

func TestPlainText_ExtractMissingFile(t *testing.T) {
	_, _, err := NewPlainText().Extract(context.Background(), filepath.Join(t.TempDir(), "nope.txt"))

	require.Error(t, err)
	var extErr *domain.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.True(t, errors.Is(extErr.Err, os.ErrNotExist))
}

func TestPlainText_ExtractBinaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bin.txt")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xfe, 0x00, 0x80}, 0600))

	_, _, err := NewPlainText().Extract(context.Background(), path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestURL_ExtractReadableText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html>
			<head><title>Test Page</title></head>
			<body>
				<nav>Navigation garbage</nav>
				<script>var hidden = true;</script>
				<h1>Heading</h1>
				<p>First paragraph.</p>
				<ul><li>A list item</li></ul>
				<footer>Footer garbage</footer>
			</body>
		</html>`))
	}))
	defer server.Close()

	text, name, err := NewURL().Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Test Page", name)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "First paragraph.")
	assert.Contains(t, text, "A list item")
	assert.NotContains(t, text, "Navigation garbage")
	assert.NotContains(t, text, "var hidden")
	assert.NotContains(t, text, "Footer garbage")
}

func TestURL_TitleFallsBackToURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><p>Untitled content.</p></body></html>`))
	}))
	defer server.Close()

	_, name, err := NewURL().Extract(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, server.URL, name)
}

func TestURL_ExtractServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := NewURL().Extract(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestURL_ExtractEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`<html><body><script>only()</script></body></html>`))
	}))
	defer server.Close()

	_, _, err := NewURL().Extract(context.Background(), server.URL)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no readable text")
}

func TestURL_ExtractUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	url := server.URL
	server.Close()

	_, _, err := NewURL().Extract(context.Background(), url)

	var extErr *domain.ExtractionError
	assert.ErrorAs(t, err, &extErr)
}
