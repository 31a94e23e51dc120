package fhir

// Resource is a view over one decoded FHIR resource. The kind-specific types
// read the element paths they need from the decoded map; every other element
// stays in the map untouched, and writes go straight into it so the
// enclosing bundle sees them.
type Resource interface {
	ResourceType() string
	ID() string
	// ClinicalCodes returns the codes found at the kind's clinical code
	// elements, in document order, without empty codes.
	ClinicalCodes() []string
	Raw() map[string]interface{}
}

// Resource type names the engine knows about.
const (
	TypeObservation      = "Observation"
	TypeCondition        = "Condition"
	TypeDiagnosticReport = "DiagnosticReport"
	TypeImmunization     = "Immunization"
	TypeComposition      = "Composition"
)

// NewResource wraps a decoded resource in the view matching its resourceType.
// Unhandled types get an Opaque view.
func NewResource(raw map[string]interface{}) Resource {
	b := base{raw: raw}
	switch b.ResourceType() {
	case TypeObservation:
		return &Observation{b}
	case TypeCondition:
		return &Condition{b}
	case TypeDiagnosticReport:
		return &DiagnosticReport{b}
	case TypeImmunization:
		return &Immunization{b}
	case TypeComposition:
		return &Composition{b}
	default:
		return &Opaque{b}
	}
}

type base struct {
	raw map[string]interface{}
}

func (b base) ResourceType() string { return stringAt(b.raw, "resourceType") }
func (b base) ID() string           { return stringAt(b.raw, "id") }
func (b base) Raw() map[string]interface{} {
	return b.raw
}

// Observation reads code and valueCodeableConcept.
type Observation struct{ base }

func (o *Observation) ClinicalCodes() []string {
	codes := codesOf(CodingsAt(o.raw, "code"))
	return append(codes, codesOf(CodingsAt(o.raw, "valueCodeableConcept"))...)
}

// Condition reads code.
type Condition struct{ base }

func (c *Condition) ClinicalCodes() []string { return codesOf(CodingsAt(c.raw, "code")) }

// DiagnosticReport reads code.
type DiagnosticReport struct{ base }

func (d *DiagnosticReport) ClinicalCodes() []string { return codesOf(CodingsAt(d.raw, "code")) }

// Immunization reads vaccineCode.
type Immunization struct{ base }

func (i *Immunization) ClinicalCodes() []string { return codesOf(CodingsAt(i.raw, "vaccineCode")) }

// Composition carries no clinical codes of its own; it exposes its sections.
type Composition struct{ base }

func (c *Composition) ClinicalCodes() []string { return nil }

// Section is a top-level Composition section.
type Section struct {
	Title   string
	Entries []Reference
}

// Sections returns the composition's top-level sections. Malformed sections
// and entries are skipped.
func (c *Composition) Sections() []Section {
	var out []Section
	for _, item := range listAt(c.raw, "section") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		s := Section{Title: stringAt(m, "title")}
		for _, e := range listAt(m, "entry") {
			em, ok := e.(map[string]interface{})
			if !ok {
				continue
			}
			s.Entries = append(s.Entries, Reference{
				Reference: stringAt(em, "reference"),
				Type:      stringAt(em, "type"),
				Display:   stringAt(em, "display"),
			})
		}
		out = append(out, s)
	}
	return out
}

// Opaque is any resource kind the engine does not read codes from.
type Opaque struct{ base }

func (o *Opaque) ClinicalCodes() []string { return nil }

// CodingsAt returns the codings of the CodeableConcept stored under element.
// A missing or mistyped element yields nil.
func CodingsAt(raw map[string]interface{}, element string) []Coding {
	cc, ok := raw[element].(map[string]interface{})
	if !ok {
		return nil
	}
	var out []Coding
	for _, item := range listAt(cc, "coding") {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, Coding{
			System:  stringAt(m, "system"),
			Code:    stringAt(m, "code"),
			Display: stringAt(m, "display"),
		})
	}
	return out
}

// HasCoding reports whether the CodeableConcept under element carries a
// coding with the given system and code.
func HasCoding(raw map[string]interface{}, element, system, code string) bool {
	for _, c := range CodingsAt(raw, element) {
		if c.System == system && c.Code == code {
			return true
		}
	}
	return false
}

func codesOf(codings []Coding) []string {
	out := make([]string, 0, len(codings))
	for _, c := range codings {
		if c.Code != "" {
			out = append(out, c.Code)
		}
	}
	return out
}

func stringAt(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}

func listAt(m map[string]interface{}, key string) []interface{} {
	l, _ := m[key].([]interface{})
	return l
}
