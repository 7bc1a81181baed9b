package persist

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEncodeJSONDecode(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	payload, err := EncodeJSON(form)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if !strings.Contains(string(payload), `"version": "1"`) {
		t.Errorf("payload lacks the schema version:\n%s", payload)
	}

	decoded, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if decoded.Metadata.FormName != form.Metadata.FormName {
		t.Errorf("FormName = %q, want %q", decoded.Metadata.FormName, form.Metadata.FormName)
	}
}

func TestDecodeYAML(t *testing.T) {
	payload := []byte(`
version: "1"
metadata:
  formName: Survey
form:
  id: root
  type: form
  children:
    - id: q1
      type: input
      props:
        label:
          value: Question one
defaultLanguage: en-US
languages:
  - code: en-US
    name: English
localization: {}
`)

	form, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if form.Metadata.FormName != "Survey" {
		t.Errorf("FormName = %q, want %q", form.Metadata.FormName, "Survey")
	}
	if len(form.Form.Children) != 1 || form.Form.Children[0].ID != "q1" {
		t.Fatalf("children = %v, want the single question", form.Form.Children)
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("{{{ not a document")); err == nil {
		t.Fatal("Decode() accepted garbage input")
	}
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	payload, err := EncodeYAML(form)
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}
	decoded, err := Decode(payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	result := Verify(form, decoded)
	if !result.Success {
		t.Fatalf("YAML round trip failed verification: %v", result.Errors)
	}
}

func TestEncodeNilForm(t *testing.T) {
	if _, err := EncodeJSON(nil); err == nil {
		t.Error("EncodeJSON(nil) expected an error")
	}
	if _, err := EncodeYAML(nil); err == nil {
		t.Error("EncodeYAML(nil) expected an error")
	}
}

func TestLoadFile(t *testing.T) {
	form, err := Export(signupTree(), ExportOptions{Now: fixedClock, NewID: sequentialIDs()})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "form.json")
	jsonPayload, err := EncodeJSON(form)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	if err := os.WriteFile(jsonPath, jsonPayload, 0o644); err != nil {
		t.Fatalf("write json fixture: %v", err)
	}

	yamlPath := filepath.Join(dir, "form.yaml")
	yamlPayload, err := EncodeYAML(form)
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}
	if err := os.WriteFile(yamlPath, yamlPayload, 0o644); err != nil {
		t.Fatalf("write yaml fixture: %v", err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", path, err)
		}
		if result := Verify(form, loaded); !result.Success {
			t.Errorf("LoadFile(%s) verification failed: %v", path, result.Errors)
		}
	}

	if _, err := LoadFile(filepath.Join(dir, "absent.json")); err == nil {
		t.Error("LoadFile on a missing path expected an error")
	}
}
