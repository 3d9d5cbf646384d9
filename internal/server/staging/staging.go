// Package staging spools the parts of a multipart upload form into
// temporary files so they can be handed to storage one at a time.
package staging

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/dmitrijs2005/eventdrop/internal/common"
	"github.com/dmitrijs2005/eventdrop/internal/filex"
	"github.com/dmitrijs2005/eventdrop/internal/sizex"
	"github.com/gabriel-vasile/mimetype"
)

const (
	GuestNameField = "guestName"
	FilesField     = "files"

	maxValueSize = 64 << 10
)

// File is one uploaded file staged on local disk.
type File struct {
	OriginalName string
	Path         string
	Size         int64
	MimeType     string
}

func (f *File) Open() (*os.File, error) {
	return os.Open(f.Path)
}

// Remove deletes the staged copy. It is safe to call more than once.
func (f *File) Remove() error {
	return filex.RemoveQuietly(f.Path)
}

// Form is a parsed upload form. Files keep the order they were sent in.
type Form struct {
	GuestName string
	Files     []*File
}

// Cleanup removes every staged file.
func (f *Form) Cleanup() error {
	var errs []error
	for _, file := range f.Files {
		if err := file.Remove(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Spooler struct {
	dir         string
	maxFileSize int64
}

// NewSpooler creates dir if needed. Files larger than maxFileSize are rejected.
func NewSpooler(dir string, maxFileSize int64) (*Spooler, error) {
	abs, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Spooler{dir: abs, maxFileSize: maxFileSize}, nil
}

func (s *Spooler) MaxFileSize() int64 {
	return s.maxFileSize
}

// Spool streams the request body to disk. When any file exceeds the size cap
// nothing is kept and the error lists every oversized file.
func (s *Spooler) Spool(r *http.Request) (*Form, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, "Formulário inválido", err)
	}

	form := &Form{}
	var oversized []string

	fail := func(err error) (*Form, error) {
		_ = form.Cleanup()
		return nil, err
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(common.NewError(common.ErrorValidation, "Formulário inválido", err))
		}

		switch {
		case part.FileName() == "" && part.FormName() == GuestNameField:
			b, err := io.ReadAll(io.LimitReader(part, maxValueSize))
			if err != nil {
				return fail(common.NewError(common.ErrorValidation, "Formulário inválido", err))
			}
			if form.GuestName == "" {
				form.GuestName = string(b)
			}

		case part.FileName() != "" && part.FormName() == FilesField:
			file, err := s.spoolPart(part)
			if errors.Is(err, common.ErrorFileTooLarge) {
				oversized = append(oversized, part.FileName())
				if _, err := io.Copy(io.Discard, part); err != nil {
					return fail(common.NewError(common.ErrorValidation, "Formulário inválido", err))
				}
				continue
			}
			if err != nil {
				return fail(err)
			}
			form.Files = append(form.Files, file)
		}

		_ = part.Close()
	}

	if len(oversized) > 0 {
		return fail(common.NewError(common.ErrorFileTooLarge,
			common.OversizedFilesMessage(sizex.FormatBytes(s.maxFileSize), oversized), nil))
	}
	return form, nil
}

func (s *Spooler) spoolPart(part *multipart.Part) (*File, error) {
	tmp, err := os.CreateTemp(s.dir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	n, err := io.Copy(tmp, io.LimitReader(part, s.maxFileSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = filex.RemoveQuietly(tmp.Name())
		return nil, common.NewError(common.ErrorValidation, "Formulário inválido", err)
	}
	if n > s.maxFileSize {
		_ = filex.RemoveQuietly(tmp.Name())
		return nil, common.ErrorFileTooLarge
	}

	return &File{
		OriginalName: part.FileName(),
		Path:         tmp.Name(),
		Size:         n,
		MimeType:     detectMimeType(part.Header.Get("Content-Type"), tmp.Name()),
	}, nil
}

// detectMimeType trusts the declared type unless it is missing or generic.
func detectMimeType(declared, path string) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "application/octet-stream"
	}
	return mt.String()
}
