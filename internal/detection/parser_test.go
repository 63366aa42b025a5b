package detection

import (
	"errors"
	"testing"
)

func TestParseEmptyPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"empty string", ""},
		{"whitespace only", "  \n\t "},
		{"blank detection field", `{"detection": ""}`},
		{"whitespace detection field", `{"detection": "   "}`},
		{"missing detection field", `{}`},
		{"null detections array", `{"detection": "{\"detections\": null}"}`},
		{"missing detections array", `{"detection": "{}"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			candidates, err := Parse(tc.raw)
			if err != nil {
				t.Fatalf("expected empty result, got error: %v", err)
			}
			if candidates == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(candidates) != 0 {
				t.Errorf("expected no candidates, got %d", len(candidates))
			}
		})
	}
}

func TestParseMalformedPayloads(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"broken outer json", `{"detection": `},
		{"outer not an object", `[1, 2]`},
		{"broken inner json", `{"detection": "{\"detections\": ["}`},
		{"inner not an object", `{"detection": "42"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			if err == nil {
				t.Fatal("expected a parse error")
			}
			if !errors.Is(err, ErrMalformedPayload) {
				t.Errorf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestParseCandidates(t *testing.T) {
	raw := `{"detection": "{\"detections\":[` +
		`{\"toolType\":\"Drill\",\"brand\":\"Bosch\",\"model\":\"GSB 18V-55\",\"confidence\":0.92,\"redFlagged\":false},` +
		`{\"toolType\":\"Angle Grinder\",\"brand\":\"\",\"model\":\"\",\"confidence\":0.41,\"redFlagged\":true}]}"}`

	candidates, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.ToolType != "Drill" || first.Brand != "Bosch" || first.Model != "GSB 18V-55" {
		t.Errorf("unexpected first candidate: %+v", first)
	}
	if first.Confidence != 0.92 || first.RedFlagged {
		t.Errorf("unexpected first candidate scores: %+v", first)
	}

	second := candidates[1]
	if second.ToolType != "Angle Grinder" || second.Brand != "" {
		t.Errorf("unexpected second candidate: %+v", second)
	}
	if !second.RedFlagged {
		t.Error("expected second candidate to be red flagged")
	}
}

func TestParseUnknownFieldsIgnored(t *testing.T) {
	raw := `{"detection": "{\"detections\":[{\"toolType\":\"Drill\",\"extra\":123}]}", "requestId": "abc"}`
	candidates, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ToolType != "Drill" {
		t.Errorf("unexpected candidates: %+v", candidates)
	}
}
