package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"skillgap-backend/internal/shared/storage/object"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeText = "text/plain"
	MimePNG  = "image/png"
	MimeJPEG = "image/jpeg"
	MimeBMP  = "image/bmp"
	MimeTIFF = "image/tiff"
)

var (
	// ErrUnsupported is returned for payloads no reader handles.
	ErrUnsupported = errors.New("unsupported file type")
	// ErrOCRUnavailable is returned for images when no OCR engine is configured.
	ErrOCRUnavailable = errors.New("ocr engine not configured")
	// ErrUnreadable wraps decoder failures on a supported type.
	ErrUnreadable = errors.New("unreadable document")
)

var byExtension = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
	".txt":  MimeText,
	".png":  MimePNG,
	".jpg":  MimeJPEG,
	".jpeg": MimeJPEG,
	".bmp":  MimeBMP,
	".tif":  MimeTIFF,
	".tiff": MimeTIFF,
}

// OCR turns an image into text.
type OCR interface {
	Recognize(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Extractor reads plain text out of uploaded documents. OCR is optional.
type Extractor struct {
	OCR OCR
}

// New returns an extractor. ocr may be nil.
func New(ocr OCR) *Extractor {
	return &Extractor{OCR: ocr}
}

// ReadsImages reports whether an OCR engine is configured.
func (e *Extractor) ReadsImages() bool {
	return e != nil && e.OCR != nil
}

// MimeType infers the document type from the file name, falling back to the
// declared content type and finally to content sniffing.
func MimeType(fileName, declared string, data []byte) string {
	if m, ok := byExtension[strings.ToLower(filepath.Ext(fileName))]; ok {
		return m
	}
	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if clean != "" && clean != "application/octet-stream" && clean != "application/zip" {
		return clean
	}
	if isDOCX(data) {
		return MimeDOCX
	}
	if clean != "" {
		return clean
	}
	return strings.Split(http.DetectContentType(data), ";")[0]
}

// FromBytes extracts text from an in-memory payload.
func (e *Extractor) FromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	kind := MimeType(fileName, mimeType, data)
	switch kind {
	case MimePDF:
		return readPDF(data)
	case MimeDOCX:
		return readDOCX(data)
	case MimeText:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: text is not utf-8", ErrUnreadable)
		}
		return string(data), nil
	case MimePNG, MimeJPEG, MimeBMP, MimeTIFF:
		if e == nil || e.OCR == nil {
			return "", ErrOCRUnavailable
		}
		text, err := e.OCR.Recognize(ctx, data, kind)
		if err != nil {
			return "", fmt.Errorf("%w: ocr: %v", ErrUnreadable, err)
		}
		return text, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, kind)
	}
}

// FromStore reads a stored upload, extracts its text and writes a derived
// <key>.extracted.txt object next to it.
func (e *Extractor) FromStore(ctx context.Context, store object.Store, key, mimeType, fileName string) (string, error) {
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: read: %w", key, err)
	}

	text, err := e.FromBytes(ctx, raw, mimeType, fileName)
	if err != nil {
		return "", fmt.Errorf("extract key=%s: %w", key, err)
	}

	if _, err := store.Put(ctx, key+".extracted.txt", "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return "", fmt.Errorf("extract key=%s: save text: %w", key, err)
	}
	return text, nil
}

func readPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadable, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadable, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: pdf: %v", ErrUnreadable, err)
	}
	return buf.String(), nil
}

func readDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty docx", ErrUnreadable)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: docx: %v", ErrUnreadable, err)
	}
	defer doc.Close()
	return stripDocumentXML(doc.Editable().GetContent()), nil
}

// stripDocumentXML keeps character data and turns paragraph and break ends
// into newlines. Malformed XML is returned unchanged.
func stripDocumentXML(raw string) string {
	dec := xml.NewDecoder(strings.NewReader(raw))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String())
}
