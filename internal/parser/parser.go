// Package parser turns raw OCR text from Indian identity documents into typed
// fields. Parsers are tolerant: they never fail, they only return fewer
// fields.
package parser

import "securekyc/internal/models"

// Func parses raw OCR text for one document type.
type Func func(raw string) models.ParsedFields

// For returns the parser for a document type, or nil for unknown types.
func For(doc models.DocType) Func {
	switch doc {
	case models.DocAadhaar:
		return ParseAadhaar
	case models.DocPAN:
		return ParsePAN
	case models.DocDrivingLicence:
		return ParseDrivingLicence
	}
	return nil
}
