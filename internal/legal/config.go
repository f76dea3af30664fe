// Package legal serves the company details and cookie table the legal pages
// render.
package legal

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"sitekit/internal/consent/models"
	dErrors "sitekit/pkg/domain-errors"
)

//go:embed default.yaml
var defaultYAML []byte

type Company struct {
	LegalName string `yaml:"legal_name" json:"legal_name"`
	ID        string `yaml:"id" json:"id,omitempty"`
	Address   string `yaml:"address" json:"address"`
	Domain    string `yaml:"domain" json:"domain"`
}

type Contact struct {
	Email string `yaml:"email" json:"email"`
	Phone string `yaml:"phone" json:"phone,omitempty"`
}

type Links struct {
	PrivacyPolicy string `yaml:"privacy_policy" json:"privacy_policy"`
	CookiePolicy  string `yaml:"cookie_policy" json:"cookie_policy"`
}

// StorageType is where a cookie-table entry lives in the browser.
type StorageType string

const (
	StorageCookie         StorageType = "cookie"
	StorageLocalStorage   StorageType = "localStorage"
	StorageSessionStorage StorageType = "sessionStorage"
)

// Cookie is one row of the cookie policy table.
type Cookie struct {
	Name        string          `yaml:"name" json:"name"`
	Provider    string          `yaml:"provider" json:"provider"`
	Purpose     string          `yaml:"purpose" json:"purpose"`
	Duration    string          `yaml:"duration" json:"duration"`
	Category    models.Category `yaml:"category" json:"category"`
	StorageType StorageType     `yaml:"storage_type" json:"storage_type"`
}

// Document is the full legal configuration.
type Document struct {
	Company Company  `yaml:"company" json:"company"`
	Contact Contact  `yaml:"contact" json:"contact"`
	Links   Links    `yaml:"links" json:"links"`
	Cookies []Cookie `yaml:"cookies" json:"cookies"`
}

// Parse decodes and validates a YAML document. The policy's "essential"
// category is accepted as an alias of necessary.
func Parse(raw []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid legal config")
	}
	if strings.TrimSpace(doc.Company.LegalName) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company.legal_name is required")
	}
	for i := range doc.Cookies {
		c := &doc.Cookies[i]
		if c.Name == "" {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("cookies[%d].name is required", i))
		}
		if strings.EqualFold(string(c.Category), "essential") {
			c.Category = models.CategoryNecessary
		}
		category, err := models.ParseCategory(string(c.Category))
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, fmt.Sprintf("cookies[%d] (%s)", i, c.Name))
		}
		c.Category = category
		switch c.StorageType {
		case "":
			c.StorageType = StorageCookie
		case StorageCookie, StorageLocalStorage, StorageSessionStorage:
		default:
			return nil, dErrors.New(dErrors.CodeValidation,
				fmt.Sprintf("cookies[%d] (%s): unknown storage type %q", i, c.Name, c.StorageType))
		}
	}
	return &doc, nil
}

// Default returns the embedded template configuration.
func Default() *Document {
	doc, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded legal config: %v", err))
	}
	return doc
}

// Load reads and parses the file at path.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legal config: %w", err)
	}
	return Parse(raw)
}

// CookiesIn filters the cookie table by category. An empty category returns
// every row.
func (d *Document) CookiesIn(category models.Category) []Cookie {
	out := []Cookie{}
	for _, c := range d.Cookies {
		if category == "" || c.Category == category {
			out = append(out, c)
		}
	}
	return out
}
