package document

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t>jobTitle</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Summary: summaryParagraph</w:t></w:r></w:p>
<w:p><w:r><w:t>job1Achievement1</w:t></w:r><w:r><w:tab/><w:t>job1Achievement2</w:t></w:r></w:p>
<w:p><w:r><w:t>skills</w:t></w:r><w:r><w:rPr><w:i/></w:rPr><w:t>PlaceHolder</w:t></w:r></w:p>
</w:body></w:document>`

const headerXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:p><w:r><w:t>jobTitle</w:t></w:r></w:p></w:hdr>`

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ResumeTemplate.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range map[string]string{
		"[Content_Types].xml": `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"word/document.xml":   documentXML,
		"word/header1.xml":    headerXML,
	} {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestReplace(t *testing.T) {
	doc, err := Open(writeTemplate(t))
	require.NoError(t, err)

	assert.Equal(t, 2, doc.Replace("jobTitle", "Staff Engineer"), "body and header")
	assert.Equal(t, 1, doc.Replace("summaryParagraph", "Led R&D <platform> work"))
	assert.Equal(t, 0, doc.Replace("missingToken", "x"))
	assert.Equal(t, 0, doc.Replace("skillsPlaceHolder", "Go"), "split runs are not matched")

	text := doc.Text()
	assert.Contains(t, text, "Staff Engineer")
	assert.Contains(t, text, "Summary: Led R&D <platform> work")
	assert.NotContains(t, text, "jobTitle")
}

func TestSaveAsRoundTrip(t *testing.T) {
	src := writeTemplate(t)
	dst := filepath.Join(t.TempDir(), "resumes", "docx", "Acme-Engineer-Resume.docx")

	require.NoError(t, CopyTemplate(src, dst))
	doc, err := Open(dst)
	require.NoError(t, err)
	doc.Replace("job1Achievement1", "Shipped the billing service")
	require.NoError(t, doc.SaveAs(dst))

	reopened, err := Open(dst)
	require.NoError(t, err)
	assert.Contains(t, reopened.Text(), "Shipped the billing service")
	assert.Contains(t, reopened.Text(), "job1Achievement2")
	assert.Equal(t, dst, reopened.Path())

	original, err := Open(src)
	require.NoError(t, err)
	assert.Contains(t, original.Text(), "job1Achievement1", "template untouched")
}

func TestLeftovers(t *testing.T) {
	path := writeTemplate(t)
	doc, err := Open(path)
	require.NoError(t, err)
	doc.Replace("jobTitle", "Engineer")
	doc.Replace("summaryParagraph", "Summary text")
	require.NoError(t, doc.SaveAs(path))

	left, err := Leftovers(path, []string{"jobTitle", "summaryParagraph", "job1Achievement1", "job1Achievement2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"job1Achievement1", "job1Achievement2"}, left)
}

func TestOpenErrors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.docx"))
	assert.Error(t, err)

	notDocx := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(notDocx)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(f).Close())
	require.NoError(t, f.Close())

	_, err = Open(notDocx)
	assert.Error(t, err)
}
