package matching

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/turtacn/ProductMatch/internal/intelligence/common"
	"github.com/turtacn/ProductMatch/pkg/errors"
)

// TextPreprocessor folds spreadsheet text into the form the extractor
// expects: NFKC, half-width letters and digits, no control characters and
// single spaces.
type TextPreprocessor struct{}

// NewTextPreprocessor returns the default Preprocessor.
func NewTextPreprocessor() *TextPreprocessor {
	return &TextPreprocessor{}
}

func (p *TextPreprocessor) Preprocess(_ context.Context, text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", errors.New(errors.ErrCodePreprocessFailed, "input is not valid UTF-8")
	}
	s := norm.NFKC.String(text)
	s = width.Fold.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return common.CollapseSpaces(s), nil
}

//Personal.AI order the ending
