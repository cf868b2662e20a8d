package vast

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/ctvbid/ctvbid/macros"
	"golang.org/x/net/html/charset"
)

// Processor validates winning creative markup and fills in the auction price macro.
type Processor struct {
	replacer macros.Replacer
}

func NewProcessor() *Processor {
	return &Processor{replacer: macros.NewReplacer()}
}

// Process returns the markup with every ${AUCTION_PRICE} replaced by the price (0.0000 when nil).
// The markup is validated before and, if anything was substituted, after the replacement.
// It is never re-serialized: bytes outside the replaced tokens are returned unchanged.
func (p *Processor) Process(markup string, price *float64) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", &errortypes.InvalidVAST{
			Message:   "empty document",
			ErrorCode: errortypes.EmptyVASTErrorCode,
		}
	}

	if err := CheckWellFormed(markup); err != nil {
		return "", &errortypes.InvalidVAST{
			Message:   "malformed XML: " + err.Error(),
			ErrorCode: errortypes.MalformedVASTErrorCode,
		}
	}

	out, replaced := p.replacer.Replace(markup, macros.NewAuctionProvider(price))
	if !replaced {
		return markup, nil
	}

	if err := CheckWellFormed(out); err != nil {
		return "", &errortypes.InvalidVAST{
			Message:   "malformed XML after substitution: " + err.Error(),
			ErrorCode: errortypes.MalformedVASTAfterSubstitutionErrorCode,
		}
	}
	return out, nil
}

var (
	errNoRoot          = errors.New("document has no root element")
	errMultipleRoots   = errors.New("document has more than one root element")
	errTextOutsideRoot = errors.New("character data outside the root element")
)

// CheckWellFormed reports whether s is a single well-formed XML document.
// The strict decoder verifies tag nesting and reports unclosed elements at EOF.
func CheckWellFormed(s string) error {
	dec := xml.NewDecoder(strings.NewReader(s))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	roots, depth := 0, 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				if roots > 1 {
					return errMultipleRoots
				}
			}
			depth++
		case xml.EndElement:
			depth--
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return errTextOutsideRoot
			}
		}
	}

	if roots == 0 {
		return errNoRoot
	}
	return nil
}
