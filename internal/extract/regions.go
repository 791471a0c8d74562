package extract

import (
	"image"
	"unicode/utf8"

	"securekyc/internal/models"
)

// region is a fractional crop of the document. Regions are evaluated in
// slice order and that order breaks score ties and drives backfill.
type region struct {
	label string
	box   func(w, h int) image.Rectangle
}

func frac(v int, f float64) int { return int(float64(v) * f) }

var regions = []region{
	{"whole", func(w, h int) image.Rectangle { return image.Rect(0, 0, w, h) }},
	{"top_half", func(w, h int) image.Rectangle { return image.Rect(0, 0, w, h/2) }},
	{"bottom_half", func(w, h int) image.Rectangle { return image.Rect(0, h/2, w, h) }},
	{"left_half", func(w, h int) image.Rectangle { return image.Rect(0, 0, w/2, h) }},
	{"right_half", func(w, h int) image.Rectangle { return image.Rect(w/2, 0, w, h) }},
	{"center_band", func(w, h int) image.Rectangle {
		return image.Rect(frac(w, 0.05), frac(h, 0.18), frac(w, 0.95), frac(h, 0.62))
	}},
	{"top_left_quadrant", func(w, h int) image.Rectangle {
		return image.Rect(0, 0, frac(w, 0.6), frac(h, 0.45))
	}},
	{"right_of_photo", func(w, h int) image.Rectangle {
		return image.Rect(frac(w, 0.35), frac(h, 0.15), frac(w, 0.98), frac(h, 0.55))
	}},
	{"bottom_strip", func(w, h int) image.Rectangle { return image.Rect(0, frac(h, 0.6), w, h) }},
}

type fieldWeight struct {
	field  string
	points int
}

var fieldWeights = map[models.DocType][]fieldWeight{
	models.DocAadhaar: {
		{models.FieldIDNumber, 200},
		{models.FieldDOB, 180},
		{models.FieldGender, 90},
		{models.FieldName, 80},
	},
	models.DocPAN: {
		{models.FieldIDNumber, 200},
		{models.FieldDOB, 80},
		{models.FieldName, 60},
		{models.FieldFatherName, 40},
	},
	models.DocDrivingLicence: {
		{models.FieldIDNumber, 200},
		{models.FieldIssueDate, 120},
		{models.FieldValidTill, 120},
		{models.FieldDOB, 60},
		{models.FieldName, 80},
	},
}

// criticalFields are backfilled into the winning candidate from the others.
var criticalFields = map[models.DocType][]string{
	models.DocAadhaar: {models.FieldIDNumber, models.FieldName, models.FieldDOB, models.FieldGender},
	models.DocPAN:     {models.FieldIDNumber, models.FieldName, models.FieldDOB, models.FieldFatherName},
}

const (
	lengthBonusCap     = 600
	lengthBonusDivisor = 6
)

// Score weighs the fields a parser recognised plus a bonus for text length.
func Score(doc models.DocType, fields models.ParsedFields, text string) int {
	score := 0
	for _, fw := range fieldWeights[doc] {
		if fields.Has(fw.field) {
			score += fw.points
		}
	}
	return score + min(utf8.RuneCountInString(text), lengthBonusCap)/lengthBonusDivisor
}
