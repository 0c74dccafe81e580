// Package document substitutes placeholder tokens in DOCX resume templates.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"
	"github.com/timjtrainor/Apply4Jobs/internal/utils"
)

// textRun matches one <w:t> element: opening tag, text, closing tag.
var textRun = regexp.MustCompile(`(<w:t(?:\s[^>]*)?>)([^<]*)(</w:t>)`)

var contentPart = regexp.MustCompile(`^word/(document|header\d*|footer\d*)\.xml$`)

type part struct {
	header zip.FileHeader
	data   []byte
}

// Document is a DOCX package held in memory. Replacements apply to the main
// document part, headers and footers.
type Document struct {
	path  string
	parts []part
}

// Open reads the DOCX at path.
func Open(path string) (*Document, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeDocument,
			fmt.Sprintf("cannot open document %s", path), err)
	}
	defer r.Close()

	doc := &Document{path: path, parts: make([]part, 0, len(r.File))}
	for _, f := range r.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, apperrors.NewIOError(apperrors.ErrCodeDocument,
				fmt.Sprintf("cannot read %s in %s", f.Name, path), err)
		}
		doc.parts = append(doc.parts, part{header: f.FileHeader, data: data})
	}

	if !doc.has("word/document.xml") {
		return nil, apperrors.NewValidationError(apperrors.ErrCodeDocument,
			fmt.Sprintf("%s has no word/document.xml", path), nil)
	}
	return doc, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (d *Document) has(name string) bool {
	for _, p := range d.parts {
		if p.header.Name == name {
			return true
		}
	}
	return false
}

// Replace substitutes literal for every occurrence of token inside a single
// text run. A token split across runs is not matched. It reports the number
// of replacements.
func (d *Document) Replace(token, literal string) int {
	if token == "" {
		return 0
	}
	from := escape(token)
	to := escape(literal)

	total := 0
	for i := range d.parts {
		if !contentPart.MatchString(d.parts[i].header.Name) {
			continue
		}
		d.parts[i].data = textRun.ReplaceAllFunc(d.parts[i].data, func(run []byte) []byte {
			m := textRun.FindSubmatch(run)
			n := bytes.Count(m[2], []byte(from))
			if n == 0 {
				return run
			}
			total += n
			text := bytes.ReplaceAll(m[2], []byte(from), []byte(to))
			return append(append(append([]byte{}, m[1]...), text...), m[3]...)
		})
	}
	return total
}

// Text returns the concatenated run text of the main document part.
func (d *Document) Text() string {
	var b strings.Builder
	for _, p := range d.parts {
		if p.header.Name != "word/document.xml" {
			continue
		}
		for _, m := range textRun.FindAllSubmatch(p.data, -1) {
			b.WriteString(unescape(m[2]))
		}
	}
	return b.String()
}

// SaveAs writes the document to path, creating parent directories.
func (d *Document) SaveAs(path string) error {
	if err := utils.EnsureParentDir(path); err != nil {
		return apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot create directory for %s", path), err)
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, p := range d.parts {
		fw, err := w.CreateHeader(&zip.FileHeader{
			Name:     p.header.Name,
			Method:   p.header.Method,
			Modified: p.header.Modified,
		})
		if err != nil {
			return apperrors.NewIOError(apperrors.ErrCodeDocument, "cannot write document entry", err)
		}
		if _, err := fw.Write(p.data); err != nil {
			return apperrors.NewIOError(apperrors.ErrCodeDocument, "cannot write document entry", err)
		}
	}
	if err := w.Close(); err != nil {
		return apperrors.NewIOError(apperrors.ErrCodeDocument, "cannot finish document", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot write %s", path), err)
	}
	d.path = path
	return nil
}

// Path is where the document was last read from or saved to.
func (d *Document) Path() string { return d.path }

// CopyTemplate copies the template at src to dst, creating directories.
func CopyTemplate(src, dst string) error {
	if err := utils.CopyFile(src, dst); err != nil {
		return apperrors.NewIOError(apperrors.ErrCodeFileWriteFailed,
			fmt.Sprintf("cannot copy template to %s", filepath.Base(dst)), err).
			WithContext("template", src)
	}
	return nil
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func unescape(raw []byte) string {
	var b strings.Builder
	dec := xml.NewDecoder(bytes.NewReader(append(append([]byte("<t>"), raw...), "</t>"...)))
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return b.String()
}
