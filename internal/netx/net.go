// Package netx contains HTTP body helpers for the eventctl client.
package netx

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Field is a plain form value.
type Field struct {
	Name  string
	Value string
}

// FilePart is a file read from Path and sent under form field Name.
type FilePart struct {
	Name string
	Path string
}

// StreamMultipart returns a multipart/form-data body and its content type.
// Fields are written first, then the files in order. Files are read while
// the body is consumed, so nothing is buffered in memory; a file that cannot
// be read fails the reader with that error.
func StreamMultipart(fields []Field, files []FilePart) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeParts(mw, fields, files))
	}()

	return pr, mw.FormDataContentType()
}

func writeParts(mw *multipart.Writer, fields []Field, files []FilePart) error {
	for _, f := range fields {
		if err := mw.WriteField(f.Name, f.Value); err != nil {
			return err
		}
	}

	for _, f := range files {
		if err := copyFile(mw, f); err != nil {
			return err
		}
	}

	return mw.Close()
}

func copyFile(mw *multipart.Writer, f FilePart) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := mw.CreateFormFile(f.Name, filepath.Base(f.Path))
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("read %s: %w", f.Path, err)
	}
	return nil
}
