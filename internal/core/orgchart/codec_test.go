package orgchart

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeDocument_Success(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"employees":[
		{"id":"1","name":"Alice","role":"Lead","image":"a.png","subordinates":[
			{"name":"Bob","role":"Dev","image":""}
		]},
		{"id":"2","name":"","role":"","image":""}
	]}`)

	got, err := DecodeDocument(raw)
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}

	want := Forest{
		{ID: "1", Name: "Alice", Role: "Lead", Image: "a.png", Subordinates: Forest{
			{Name: "Bob", Role: "Dev"},
		}},
		{ID: "2"},
	}
	if diff := cmp.Diff(want, got, equateEmpty); diff != "" {
		t.Fatalf("unexpected forest (-want +got):\n%s", diff)
	}
}

func TestDecodeDocument_Malformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":          `{`,
		"top-level array":   `[{"name":"a","role":"b","image":"c"}]`,
		"missing employees": `{}`,
		"employees object":  `{"employees":{"name":"a"}}`,
		"employees null":    `{"employees":null}`,
		"missing name":      `{"employees":[{"role":"b","image":"c"}]}`,
		"nested missing":    `{"employees":[{"name":"a","role":"b","image":"c","subordinates":[{"name":"x","role":"y"}]}]}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := DecodeDocument([]byte(raw)); !errors.Is(err, ErrMalformedDocument) {
				t.Fatalf("expected ErrMalformedDocument, got %v", err)
			}
		})
	}
}

func TestEncodeDocument_RoundTrip(t *testing.T) {
	t.Parallel()

	b, err := EncodeDocument(sampleForest())
	if err != nil {
		t.Fatalf("EncodeDocument returned error: %v", err)
	}

	got, err := DecodeDocument(b)
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}
	if diff := cmp.Diff(sampleForest(), got, equateEmpty); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeDocument_EmptyForest(t *testing.T) {
	t.Parallel()

	b, err := EncodeDocument(nil)
	if err != nil {
		t.Fatalf("EncodeDocument returned error: %v", err)
	}
	if string(b) != `{"employees":[]}` {
		t.Fatalf("unexpected encoding: %s", b)
	}
}

func TestDecodeEmployee(t *testing.T) {
	t.Parallel()

	e, err := DecodeEmployee([]byte(`{"name":"Cara","role":"Dev","image":""}`))
	if err != nil {
		t.Fatalf("DecodeEmployee returned error: %v", err)
	}
	if e.Name != "Cara" || e.ID != "" {
		t.Fatalf("unexpected employee: %+v", e)
	}

	if _, err := DecodeEmployee([]byte(`{"name":"Cara"}`)); !errors.Is(err, ErrMalformedDocument) {
		t.Fatalf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestEncodeEmployees(t *testing.T) {
	t.Parallel()

	b, err := EncodeEmployees(Forest{{ID: "1", Name: "Alice"}})
	if err != nil {
		t.Fatalf("EncodeEmployees returned error: %v", err)
	}
	if string(b) != `[{"id":"1","name":"Alice","role":"","image":"","subordinates":[]}]` {
		t.Fatalf("unexpected encoding: %s", b)
	}

	b, err = EncodeEmployees(nil)
	if err != nil {
		t.Fatalf("EncodeEmployees returned error: %v", err)
	}
	if string(b) != `[]` {
		t.Fatalf("unexpected encoding: %s", b)
	}
}
