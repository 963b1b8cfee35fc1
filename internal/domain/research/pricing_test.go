package research

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizePricingModel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "string passes through", in: `"10/mo"`, want: "10/mo"},
		{name: "list joined", in: `["10/mo","enterprise"]`, want: "10/mo, enterprise"},
		{name: "object serialized", in: `{"tier": "10/mo"}`, want: `{"tier":"10/mo"}`},
		{name: "mixed list", in: `["free", 10, {"a":1}]`, want: `free, 10, {"a":1}`},
		{name: "number literal", in: `10`, want: "10"},
		{name: "bool literal", in: `true`, want: "true"},
		{name: "null", in: `null`, want: ""},
		{name: "missing", in: ``, want: ""},
	}
	got := make(map[string]string, len(tests))
	want := make(map[string]string, len(tests))
	for _, tt := range tests {
		got[tt.name] = NormalizePricingModel(json.RawMessage(tt.in))
		want[tt.name] = tt.want
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("NormalizePricingModel mismatch (-want +got):\n%s", diff)
	}
}
