package resumes

import (
	"context"
	"fmt"

	"skillgap-backend/internal/shared/telemetry"
	"skillgap-backend/internal/skills"
)

// TextExtractor reads text out of an uploaded document.
type TextExtractor interface {
	FromBytes(ctx context.Context, data []byte, mimeType, fileName string) (string, error)
}

// ImageReader is implemented by text extractors that may be able to read
// images.
type ImageReader interface {
	ReadsImages() bool
}

// Parser turns uploads into resumes with skills populated.
type Parser struct {
	Text   TextExtractor
	Skills *skills.Extractor
}

// NewParser returns a parser. A nil skills extractor uses the default dictionary.
func NewParser(text TextExtractor, extractor *skills.Extractor) *Parser {
	if extractor == nil {
		extractor = skills.NewExtractor(nil)
	}
	return &Parser{Text: text, Skills: extractor}
}

// Parse validates the upload, extracts its text, then fills in contact
// details and skills. Validation and extraction errors are returned
// as-is; an upload with no readable text yields a resume without skills.
func (p *Parser) Parse(ctx context.Context, name, mimeType string, data []byte) (Resume, error) {
	if err := p.Validate(name, int64(len(data))); err != nil {
		return Resume{}, err
	}
	if p.Text == nil {
		return Resume{}, fmt.Errorf("parse %s: no text extractor configured", name)
	}
	raw, err := p.Text.FromBytes(ctx, data, mimeType, name)
	if err != nil {
		return Resume{}, fmt.Errorf("parse %s: %w", name, err)
	}
	return p.FromText(name, raw), nil
}

// Validate applies ValidateFile and also refuses images when the text
// extractor cannot read them.
func (p *Parser) Validate(name string, size int64) error {
	if err := ValidateFile(name, size); err != nil {
		return err
	}
	if IsImage(name) && !p.readsImages() {
		return &ValidationError{
			Name:   name,
			Reason: "image uploads need OCR, which is not configured; upload PDF, DOCX or TXT",
		}
	}
	return nil
}

func (p *Parser) readsImages() bool {
	r, ok := p.Text.(ImageReader)
	return ok && r.ReadsImages()
}

// FromText builds a resume from already extracted text. Skills are read from
// the raw text; ExtractedText keeps the cleaned form.
func (p *Parser) FromText(name, raw string) Resume {
	info := ExtractBasicInfo(raw)
	r := Resume{
		Filename:      name,
		FileType:      FileType(name),
		ExtractedText: Clean(raw),
		UserName:      info.Name,
		Email:         info.Email,
		Phone:         info.Phone,
	}

	ext := p.Skills
	if ext == nil {
		ext = skills.NewExtractor(nil)
	}
	r.SetSkills(ext.Extract(raw))
	if len(r.Skills) == 0 {
		telemetry.Info("resumes.no_skills", map[string]any{"file": name, "textLength": len(r.ExtractedText)})
	}
	return r
}
