package fhir

// Coding is a FHIR Coding datatype.
type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

// Reference is a FHIR Reference datatype.
type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

// Extension is a FHIR extension carrying a Coding value.
type Extension struct {
	URL         string  `json:"url"`
	ValueCoding *Coding `json:"valueCoding,omitempty"`
}

// Raw converts the extension to its decoded-JSON shape for insertion into a
// resource map.
func (e Extension) Raw() map[string]interface{} {
	m := map[string]interface{}{"url": e.URL}
	if e.ValueCoding != nil {
		vc := map[string]interface{}{}
		if e.ValueCoding.Code != "" {
			vc["code"] = e.ValueCoding.Code
		}
		if e.ValueCoding.System != "" {
			vc["system"] = e.ValueCoding.System
		}
		if e.ValueCoding.Display != "" {
			vc["display"] = e.ValueCoding.Display
		}
		m["valueCoding"] = vc
	}
	return m
}
