package fhir

// ExtractCodes returns the clinical codes a resource carries:
//
//	Observation       code.coding[].code, then valueCodeableConcept.coding[].code
//	Condition         code.coding[].code
//	DiagnosticReport  code.coding[].code
//	Immunization      vaccineCode.coding[].code
//
// Any other resource type yields an empty list. Missing elements are not an
// error; upstream eCR documents are frequently incomplete.
func ExtractCodes(r Resource) []string {
	if r == nil {
		return []string{}
	}
	codes := r.ClinicalCodes()
	if codes == nil {
		return []string{}
	}
	return codes
}
