package document

import (
	"fmt"
	"os"
	"strings"

	apperrors "github.com/timjtrainor/Apply4Jobs/internal/errors"

	"code.sajari.com/docconv"
)

// Leftovers extracts the plain text of the DOCX at path and returns the
// tokens that still appear in it.
func Leftovers(path string, tokens []string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeFileNotReadable,
			fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	text, _, err := docconv.ConvertDocx(f)
	if err != nil {
		return nil, apperrors.NewIOError(apperrors.ErrCodeDocument,
			fmt.Sprintf("cannot extract text from %s", path), err)
	}

	var left []string
	for _, token := range tokens {
		if token != "" && strings.Contains(text, token) {
			left = append(left, token)
		}
	}
	return left, nil
}
