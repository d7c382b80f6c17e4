package upload

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/FiveXSeven/synergies/internal/errors"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func pngBytes(size int) []byte {
	buf := make([]byte, size)
	copy(buf, pngMagic)
	return buf
}

type testFile struct {
	name    string
	content []byte
}

func fileHeaders(t *testing.T, files []testFile) []*multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range files {
		fw, err := w.CreateFormFile("photos", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["photos"]
}

func TestValidator_SaveAll(t *testing.T) {
	v, err := NewValidator(t.TempDir())
	require.NoError(t, err)

	t.Run("accepts a valid png and renames it", func(t *testing.T) {
		urls, err := v.SaveAll(fileHeaders(t, []testFile{
			{name: "../../etc/passwd.png", content: pngBytes(256)},
		}))

		require.NoError(t, err)
		require.Len(t, urls, 1)
		assert.True(t, strings.HasPrefix(urls[0], URLPrefix+"/"))
		assert.NotContains(t, urls[0], "passwd")
		assert.True(t, strings.HasSuffix(urls[0], ".png"))

		_, err = os.Stat(filepath.Join(v.Dir(), path.Base(urls[0])))
		assert.NoError(t, err)
	})

	t.Run("rejects more than the file cap", func(t *testing.T) {
		files := make([]testFile, MaxFiles+1)
		for i := range files {
			files[i] = testFile{name: "p.png", content: pngBytes(64)}
		}

		_, err := v.SaveAll(fileHeaders(t, files))
		var httpErr *apierrors.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
		assert.Contains(t, httpErr.Details[0], "too many files")
	})

	t.Run("rejects an oversize file", func(t *testing.T) {
		_, err := v.SaveAll(fileHeaders(t, []testFile{
			{name: "big.png", content: pngBytes(MaxFileSize + 1)},
		}))

		var httpErr *apierrors.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Contains(t, httpErr.Details[0], "size limit")
	})

	t.Run("rejects an executable disguised as png", func(t *testing.T) {
		exe := append([]byte("MZ"), make([]byte, 128)...)

		_, err := v.SaveAll(fileHeaders(t, []testFile{
			{name: "innocent.png", content: exe},
		}))

		var httpErr *apierrors.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Contains(t, httpErr.Details[0], "unsupported type")
	})

	t.Run("one bad file rejects the whole batch before storing", func(t *testing.T) {
		dir := t.TempDir()
		v2, err := NewValidator(dir)
		require.NoError(t, err)

		_, err = v2.SaveAll(fileHeaders(t, []testFile{
			{name: "good.png", content: pngBytes(64)},
			{name: "bad.txt", content: []byte("just text, not an image")},
		}))
		require.Error(t, err)

		entries, readErr := os.ReadDir(dir)
		require.NoError(t, readErr)
		assert.Empty(t, entries, "nothing should be written when any file is invalid")
	})

	t.Run("accepts zero files", func(t *testing.T) {
		urls, err := v.SaveAll(nil)
		assert.NoError(t, err)
		assert.Empty(t, urls)
	})
}

func TestValidator_Remove(t *testing.T) {
	dir := t.TempDir()
	v, err := NewValidator(dir)
	require.NoError(t, err)

	urls, err := v.SaveAll(fileHeaders(t, []testFile{
		{name: "a.png", content: pngBytes(64)},
	}))
	require.NoError(t, err)

	// Removing a stored file and an already-missing one both succeed
	// silently.
	v.Remove(append(urls, URLPrefix+"/gone.png"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
