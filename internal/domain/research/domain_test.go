package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompanyDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://www.stripe.com/", want: "stripe.com"},
		{in: "https://docs.stripe.co.uk/api", want: "stripe.co.uk"},
		{in: "openai.com/pricing", want: "openai.com"},
		{in: "HTTPS://About.Meta.com:443/", want: "meta.com"},
		{in: "", want: ""},
		{in: "not a url://", want: "not a url://"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CompanyDomain(tt.in), "input %q", tt.in)
	}
}
