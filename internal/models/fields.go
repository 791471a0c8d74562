package models

// DocType identifies which identity document a set of fields came from.
type DocType string

const (
	DocAadhaar        DocType = "aadhaar"
	DocPAN            DocType = "pan"
	DocDrivingLicence DocType = "driving_license"
)

// ParsedFields holds the fields parsed from OCR text of a single document.
// Every field except RawText is optional; a nil field means no parser rule
// matched it.
type ParsedFields struct {
	DocType    DocType `json:"doc_type"`
	RawText    string  `json:"raw_text"`
	Name       *string `json:"name"`
	FatherName *string `json:"father_name,omitempty"`
	DOB        *string `json:"dob"`
	Gender     *string `json:"gender,omitempty"`
	IDNumber   *string `json:"id_number"`
	Address    *string `json:"address,omitempty"`
	IssueDate  *string `json:"issue_date,omitempty"`
	ValidTill  *string `json:"valid_till,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Field names used by scoring and ROI backfill.
const (
	FieldName       = "name"
	FieldFatherName = "father_name"
	FieldDOB        = "dob"
	FieldGender     = "gender"
	FieldIDNumber   = "id_number"
	FieldAddress    = "address"
	FieldIssueDate  = "issue_date"
	FieldValidTill  = "valid_till"
)

// Get returns the named optional field.
func (p *ParsedFields) Get(field string) *string {
	switch field {
	case FieldName:
		return p.Name
	case FieldFatherName:
		return p.FatherName
	case FieldDOB:
		return p.DOB
	case FieldGender:
		return p.Gender
	case FieldIDNumber:
		return p.IDNumber
	case FieldAddress:
		return p.Address
	case FieldIssueDate:
		return p.IssueDate
	case FieldValidTill:
		return p.ValidTill
	}
	return nil
}

// Set assigns the named optional field. Unknown names are ignored.
func (p *ParsedFields) Set(field string, v *string) {
	switch field {
	case FieldName:
		p.Name = v
	case FieldFatherName:
		p.FatherName = v
	case FieldDOB:
		p.DOB = v
	case FieldGender:
		p.Gender = v
	case FieldIDNumber:
		p.IDNumber = v
	case FieldAddress:
		p.Address = v
	case FieldIssueDate:
		p.IssueDate = v
	case FieldValidTill:
		p.ValidTill = v
	}
}

// Has reports whether the named field is present and non-empty.
func (p *ParsedFields) Has(field string) bool {
	v := p.Get(field)
	return v != nil && *v != ""
}

// Clone returns a deep copy so merges never alias another candidate's values.
func (p ParsedFields) Clone() ParsedFields {
	out := p
	for _, f := range []string{FieldName, FieldFatherName, FieldDOB, FieldGender, FieldIDNumber, FieldAddress, FieldIssueDate, FieldValidTill} {
		if v := p.Get(f); v != nil {
			s := *v
			out.Set(f, &s)
		}
	}
	return out
}

// Str returns a pointer to s, or nil when s is empty.
func Str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
