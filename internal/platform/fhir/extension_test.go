package fhir

import (
	"reflect"
	"testing"
)

func expectedExtension(code string) map[string]interface{} {
	return map[string]interface{}{
		"url": ConditionCodeExtensionURL,
		"valueCoding": map[string]interface{}{
			"code":   code,
			"system": SystemSNOMED,
		},
	}
}

func TestAddConditionExtension_CreatesList(t *testing.T) {
	r := NewResource(map[string]interface{}{"resourceType": "Condition", "id": "c1"})
	AddConditionExtension(r, "840539006")

	want := []interface{}{expectedExtension("840539006")}
	if !reflect.DeepEqual(r.Raw()["extension"], want) {
		t.Errorf("extension = %#v, want %#v", r.Raw()["extension"], want)
	}
}

func TestAddConditionExtension_AppendsToExisting(t *testing.T) {
	existing := map[string]interface{}{"url": "http://example.org/other", "valueString": "keep"}
	r := NewResource(map[string]interface{}{
		"resourceType": "Observation",
		"extension":    []interface{}{existing},
	})
	AddConditionExtension(r, "840539006")

	exts := r.Raw()["extension"].([]interface{})
	if len(exts) != 2 {
		t.Fatalf("expected 2 extensions, got %d", len(exts))
	}
	if !reflect.DeepEqual(exts[0], existing) {
		t.Error("existing extension must be kept first")
	}
}

func TestAddConditionExtension_NotIdempotent(t *testing.T) {
	r := NewResource(map[string]interface{}{"resourceType": "Condition"})
	AddConditionExtension(r, "840539006")
	AddConditionExtension(r, "840539006")

	exts := r.Raw()["extension"].([]interface{})
	if len(exts) != 2 {
		t.Fatalf("expected 2 extensions, got %d", len(exts))
	}
	for _, e := range exts {
		if !reflect.DeepEqual(e, expectedExtension("840539006")) {
			t.Errorf("unexpected extension %#v", e)
		}
	}
}

func TestAddConditionExtension_WrapsScalar(t *testing.T) {
	odd := map[string]interface{}{"url": "http://example.org/single"}
	r := NewResource(map[string]interface{}{"resourceType": "Condition", "extension": odd})
	AddConditionExtension(r, "840539006")

	exts := r.Raw()["extension"].([]interface{})
	if len(exts) != 2 || !reflect.DeepEqual(exts[0], odd) {
		t.Errorf("expected scalar extension to be wrapped, got %#v", exts)
	}
}

func TestConditionTyping(t *testing.T) {
	typed := NewResource(map[string]interface{}{
		"resourceType": "Observation",
		"code": map[string]interface{}{"coding": []interface{}{
			map[string]interface{}{"system": SystemSNOMED, "code": SNOMEDConditionCode},
		}},
	})
	if !HasCodeElement(typed) || !IsConditionTyped(typed) {
		t.Error("expected a condition-typed resource")
	}

	untyped := NewResource(map[string]interface{}{"resourceType": "Condition", "code": map[string]interface{}{}})
	if HasCodeElement(untyped) {
		t.Error("an empty code element does not count")
	}
	if IsConditionTyped(untyped) {
		t.Error("unexpected condition typing")
	}
}

func TestSetValueText(t *testing.T) {
	r := NewResource(map[string]interface{}{
		"resourceType": "Observation",
		"valueCodeableConcept": map[string]interface{}{"coding": []interface{}{
			map[string]interface{}{"code": "840539006"},
		}},
	})
	SetValueText(r, "COVID-19")

	vcc := r.Raw()["valueCodeableConcept"].(map[string]interface{})
	if vcc["text"] != "COVID-19" {
		t.Errorf("expected text COVID-19, got %v", vcc["text"])
	}
	if len(vcc["coding"].([]interface{})) != 1 {
		t.Error("coding must be kept")
	}

	bare := NewResource(map[string]interface{}{"resourceType": "Observation"})
	SetValueText(bare, "Pertussis")
	if bare.Raw()["valueCodeableConcept"].(map[string]interface{})["text"] != "Pertussis" {
		t.Error("expected valueCodeableConcept to be created")
	}
}
