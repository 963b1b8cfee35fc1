package research

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// PromptData is the template input for both prompts.
type PromptData struct {
	Person  model.Person
	Company model.Company
}

// Prompts renders the company and person queries sent to the provider.
type Prompts struct {
	company *template.Template
	person  *template.Template
}

type promptFile struct {
	Company string `yaml:"company"`
	Person  string `yaml:"person"`
}

// DefaultPrompts returns the built-in prompt catalog.
func DefaultPrompts() (*Prompts, error) {
	return ParsePrompts(defaultPromptsYAML)
}

// LoadPrompts reads a YAML prompt catalog from path, or the built-in one when path is empty.
func LoadPrompts(path string) (*Prompts, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPrompts()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return ParsePrompts(b)
}

// ParsePrompts parses a YAML document with company and person templates.
func ParsePrompts(doc []byte) (*Prompts, error) {
	var pf promptFile
	if err := yaml.Unmarshal(doc, &pf); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	if strings.TrimSpace(pf.Company) == "" || strings.TrimSpace(pf.Person) == "" {
		return nil, errors.New("prompts: company and person templates are required")
	}
	company, err := template.New("company").Option("missingkey=error").Parse(pf.Company)
	if err != nil {
		return nil, fmt.Errorf("parse company prompt: %w", err)
	}
	person, err := template.New("person").Option("missingkey=error").Parse(pf.Person)
	if err != nil {
		return nil, fmt.Errorf("parse person prompt: %w", err)
	}
	return &Prompts{company: company, person: person}, nil
}

// Company renders the company-level query.
func (p *Prompts) Company(data PromptData) (string, error) {
	return render(p.company, data)
}

// Person renders the person-level query.
func (p *Prompts) Person(data PromptData) (string, error) {
	return render(p.person, data)
}

func render(t *template.Template, data PromptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
