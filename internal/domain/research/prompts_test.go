package research

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

func TestDefaultPrompts(t *testing.T) {
	p, err := DefaultPrompts()
	require.NoError(t, err)

	data := PromptData{
		Person:  model.Person{FullName: "Patrick Collison", Title: "CEO"},
		Company: model.Company{Name: "Stripe"},
	}
	company, err := p.Company(data)
	require.NoError(t, err)
	assert.Contains(t, company, `Research the company "Stripe"`)
	assert.Contains(t, company, "pricingModel")

	person, err := p.Person(data)
	require.NoError(t, err)
	assert.Contains(t, person, `Research "Patrick Collison" who is CEO at Stripe.`)
	assert.Contains(t, person, "JSON array")
}

func TestLoadPrompts_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	doc := "company: \"Tell me about {{.Company.Name}}\"\nperson: \"Who is {{.Person.FullName}}?\"\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	p, err := LoadPrompts(path)
	require.NoError(t, err)
	out, err := p.Company(PromptData{Company: model.Company{Name: "OpenAI"}})
	require.NoError(t, err)
	assert.Equal(t, "Tell me about OpenAI", out)
}

func TestParsePrompts_Errors(t *testing.T) {
	_, err := ParsePrompts([]byte("company: only"))
	require.Error(t, err)

	_, err = ParsePrompts([]byte("company: \"{{.Company.Name\"\nperson: x\n"))
	require.Error(t, err)

	_, err = LoadPrompts(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
