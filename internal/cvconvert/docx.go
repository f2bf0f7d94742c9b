package cvconvert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrBadDocx = errors.New("cvconvert: not a valid .docx document")

const documentPart = "word/document.xml"

type paragraph struct {
	Text    string
	Heading bool
}

// readDocx extracts paragraph text from the main document part. Tabs and
// line breaks are kept; styling other than headings is dropped.
func readDocx(data []byte) ([]paragraph, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocx, err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrBadDocx, documentPart)
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocx, err)
	}
	defer rc.Close()

	return parseDocument(io.LimitReader(rc, 4*MaxSize))
}

// openPara is a paragraph still being read. Text boxes nest paragraphs
// inside runs, so open ones form a stack.
type openPara struct {
	text    strings.Builder
	heading bool
}

func parseDocument(r io.Reader) ([]paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		out    []paragraph
		stack  []*openPara
		inProp int
		inText bool
	)
	top := func() *openPara {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadDocx, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p := top()
			switch t.Name.Local {
			case "p":
				stack = append(stack, &openPara{})
			case "pPr":
				inProp++
			case "pStyle":
				style := attr(t, "val")
				if p != nil && inProp > 0 && (strings.HasPrefix(style, "Heading") || style == "Title") {
					p.heading = true
				}
			case "t":
				inText = true
			case "tab":
				// inside pPr this is a tab stop definition
				if p != nil && inProp == 0 {
					p.text.WriteString("    ")
				}
			case "br", "cr":
				if p != nil && inProp == 0 {
					p.text.WriteByte('\n')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "pPr":
				if inProp > 0 {
					inProp--
				}
			case "p":
				if p := top(); p != nil {
					stack = stack[:len(stack)-1]
					out = append(out, paragraph{Text: p.text.String(), Heading: p.heading})
				}
			}
		case xml.CharData:
			if p := top(); p != nil && inText {
				p.text.Write(t)
			}
		}
	}
	return out, nil
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
