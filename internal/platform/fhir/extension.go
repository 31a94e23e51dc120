package fhir

// Well-known systems and codes used when stamping.
const (
	SystemSNOMED = "http://snomed.info/sct"

	// ConditionCodeExtensionURL identifies the reportable condition stamp.
	ConditionCodeExtensionURL = "https://reportstream.cdc.gov/fhir/StructureDefinition/condition-code"

	// SNOMEDConditionCode is the SNOMED concept "Condition", used in code.coding
	// to mark a resource as condition-typed.
	SNOMEDConditionCode = "64572001"
)

// ConditionExtension builds the stamp for a SNOMED condition code.
func ConditionExtension(snomedCode string) Extension {
	return Extension{
		URL:         ConditionCodeExtensionURL,
		ValueCoding: &Coding{Code: snomedCode, System: SystemSNOMED},
	}
}

// AddConditionExtension appends exactly one condition-code extension to the
// resource, creating the extension list if needed. Existing extensions are
// kept; stamping the same code twice appends twice.
func AddConditionExtension(r Resource, snomedCode string) {
	raw := r.Raw()
	ext := ConditionExtension(snomedCode).Raw()
	switch cur := raw["extension"].(type) {
	case []interface{}:
		raw["extension"] = append(cur, ext)
	case nil:
		raw["extension"] = []interface{}{ext}
	default:
		raw["extension"] = []interface{}{cur, ext}
	}
}

// HasCodeElement reports whether the resource has a non-empty code element.
func HasCodeElement(r Resource) bool {
	switch v := r.Raw()["code"].(type) {
	case nil:
		return false
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// IsConditionTyped reports whether code.coding marks the resource with the
// SNOMED "Condition" concept.
func IsConditionTyped(r Resource) bool {
	return HasCoding(r.Raw(), "code", SystemSNOMED, SNOMEDConditionCode)
}

// SetValueText sets valueCodeableConcept.text, creating the concept when the
// resource has none.
func SetValueText(r Resource, text string) {
	raw := r.Raw()
	vcc, ok := raw["valueCodeableConcept"].(map[string]interface{})
	if !ok {
		vcc = map[string]interface{}{}
		raw["valueCodeableConcept"] = vcc
	}
	vcc["text"] = text
}
