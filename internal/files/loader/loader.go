package loader

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/vvka-141/kettlegraph/internal/files/filesystem"
	"github.com/vvka-141/kettlegraph/pkg/kettle"
)

const malformedHint = "Check that every tag is closed and the file is a Kettle " +
	"transformation (.ktr) or job (.kjb) export."

// Loader reads pipeline documents.
type Loader struct {
	fs filesystem.FileSystemProvider
}

// NewLoader creates a loader backed by the OS filesystem.
func NewLoader() *Loader {
	return NewLoaderWithFS(filesystem.NewOSFileSystem())
}

// NewLoaderWithFS creates a loader with a custom filesystem provider.
func NewLoaderWithFS(fsProvider filesystem.FileSystemProvider) *Loader {
	return &Loader{fs: fsProvider}
}

// Load parses source as a file path when fromFile is set, otherwise as raw XML text.
func (l *Loader) Load(source string, fromFile bool) (*etree.Document, error) {
	if fromFile {
		return l.LoadFile(source)
	}
	return l.LoadText(source)
}

// LoadFile validates and parses the pipeline file at path.
func (l *Loader) LoadFile(path string) (*etree.Document, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &kettle.DocumentError{
				Err:     kettle.ErrNotFound,
				Source:  path,
				Message: "pipeline file does not exist",
			}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, &kettle.DocumentError{
			Err:     kettle.ErrNotFound,
			Source:  path,
			Message: "path is not a regular file",
		}
	}

	if ext := filepath.Ext(path); !kettle.IsPipelineExtension(ext) {
		return nil, &kettle.DocumentError{
			Err:     kettle.ErrValidation,
			Source:  path,
			Message: fmt.Sprintf("unrecognized pipeline file extension %q", ext),
			Hint:    fmt.Sprintf("Expected %s or %s.", kettle.TransformationExtension, kettle.JobExtension),
		}
	}

	content, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parse(content, path)
}

// LoadText parses raw XML text.
func (l *Loader) LoadText(text string) (*etree.Document, error) {
	return parse([]byte(text), "")
}

func parse(content []byte, source string) (*etree.Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(content); err != nil {
		return nil, wrapXMLError(err, source)
	}
	if doc.Root() == nil {
		return nil, &kettle.DocumentError{
			Err:     kettle.ErrParse,
			Source:  source,
			Message: "document has no root element",
			Hint:    malformedHint,
		}
	}
	if err := checkTopLevel(doc, source); err != nil {
		return nil, err
	}
	return doc, nil
}

// checkTopLevel rejects what the decoder lets through but a well-formed
// document cannot hold: a second root element or text outside the root.
func checkTopLevel(doc *etree.Document, source string) error {
	roots := 0
	for _, tok := range doc.Child {
		switch t := tok.(type) {
		case *etree.Element:
			roots++
			if roots > 1 {
				return &kettle.DocumentError{
					Err:     kettle.ErrParse,
					Source:  source,
					Tag:     t.Tag,
					Message: fmt.Sprintf("junk after document element: second root <%s>", t.Tag),
					Hint:    malformedHint,
				}
			}
		case *etree.CharData:
			if strings.TrimSpace(t.Data) != "" {
				return &kettle.DocumentError{
					Err:     kettle.ErrParse,
					Source:  source,
					Message: "text outside the document element",
					Hint:    malformedHint,
				}
			}
		}
	}
	return nil
}

// wrapXMLError converts decoder errors to a DocumentError, keeping the line
// number when the decoder reports one.
func wrapXMLError(err error, source string) error {
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &kettle.DocumentError{
			Err:     kettle.ErrParse,
			Source:  source,
			Line:    syntaxErr.Line,
			Message: "malformed XML: " + syntaxErr.Msg,
			Hint:    malformedHint,
		}
	}
	return &kettle.DocumentError{
		Err:     kettle.ErrParse,
		Source:  source,
		Message: "malformed XML: " + err.Error(),
		Hint:    malformedHint,
	}
}
