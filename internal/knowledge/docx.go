package knowledge

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	pkgerrors "github.com/algobros/terminal-backend/pkg/errors"
)

// extractDocxText pulls the visible text out of a .docx upload. The format
// is a zip archive whose word/document.xml holds paragraphs of <w:t> runs;
// paragraph boundaries become newlines.
func extractDocxText(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload is not a docx archive")
	}

	var doc *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "docx archive has no document body")
	}

	rc, err := doc.Open()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "opening document body")
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parsing document body")
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write([]byte(el))
			}
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
