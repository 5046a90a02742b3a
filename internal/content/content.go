// Package content models the structured JSON documents stored on
// templates and landing pages. Known sections are typed; unknown
// top-level keys survive round-trips through the Extra bucket.
package content

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
)

// FormField describes a single input in a landing contact form.
type FormField struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Label       string `json:"label,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Required    bool   `json:"required"`
}

// Form is the lead-capture section of a landing document.
type Form struct {
	Title       string      `json:"title,omitempty"`
	Subtitle    string      `json:"subtitle,omitempty"`
	CTAText     string      `json:"cta_text,omitempty"`
	PrivacyText string      `json:"privacy_text,omitempty"`
	Fields      []FormField `json:"fields"`
}

// Hero is the headline section of a landing document.
type Hero struct {
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
	Image    string `json:"image,omitempty"`
	CTAText  string `json:"cta_text,omitempty"`
	CTALink  string `json:"cta_link,omitempty"`
}

// Feature is one entry in the features section.
type Feature struct {
	Icon        string `json:"icon,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// PricingTier is one entry in the pricing section.
type PricingTier struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	Period   string   `json:"period,omitempty"`
	Features []string `json:"features,omitempty"`
	CTAText  string   `json:"cta_text,omitempty"`
	Featured bool     `json:"featured,omitempty"`
}

// Pricing is the pricing section of a landing document.
type Pricing struct {
	Title string        `json:"title,omitempty"`
	Tiers []PricingTier `json:"tiers"`
}

// Theme holds color and typography settings.
type Theme struct {
	PrimaryColor   string `json:"primary_color,omitempty"`
	SecondaryColor string `json:"secondary_color,omitempty"`
	FontFamily     string `json:"font_family,omitempty"`
}

// Document is the top-level content structure shared by templates and
// landings. Sections are optional; Extra keeps unrecognized top-level
// keys so editor payloads never lose data.
type Document struct {
	Hero     *Hero     `json:"-"`
	Features []Feature `json:"-"`
	Pricing  *Pricing  `json:"-"`
	Form     *Form     `json:"-"`
	Theme    *Theme    `json:"-"`
	Extra    map[string]json.RawMessage
}

// ErrEmptyDocument is returned when parsing empty or null content.
var ErrEmptyDocument = errors.New("content document is empty")

// knownKeys are the section names lifted into typed fields.
var knownKeys = map[string]bool{
	"hero":     true,
	"features": true,
	"pricing":  true,
	"form":     true,
	"theme":    true,
}

// UnmarshalJSON decodes known sections into typed fields and parks the
// rest under Extra.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid content document: %w", err)
	}

	*d = Document{Extra: make(map[string]json.RawMessage)}

	for key, value := range raw {
		var err error
		switch key {
		case "hero":
			d.Hero = &Hero{}
			err = json.Unmarshal(value, d.Hero)
		case "features":
			err = json.Unmarshal(value, &d.Features)
		case "pricing":
			d.Pricing = &Pricing{}
			err = json.Unmarshal(value, d.Pricing)
		case "form":
			d.Form = &Form{}
			err = json.Unmarshal(value, d.Form)
		case "theme":
			d.Theme = &Theme{}
			err = json.Unmarshal(value, d.Theme)
		default:
			d.Extra[key] = value
		}
		if err != nil {
			return fmt.Errorf("invalid %q section: %w", key, err)
		}
	}

	return nil
}

// MarshalJSON re-assembles the document, typed sections winning over
// any stale duplicates in Extra.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+5)
	for key, value := range d.Extra {
		if !knownKeys[key] {
			out[key] = value
		}
	}
	if d.Hero != nil {
		out["hero"] = d.Hero
	}
	if d.Features != nil {
		out["features"] = d.Features
	}
	if d.Pricing != nil {
		out["pricing"] = d.Pricing
	}
	if d.Form != nil {
		out["form"] = d.Form
	}
	if d.Theme != nil {
		out["theme"] = d.Theme
	}
	return json.Marshal(out)
}

// Parse decodes a stored JSON column into a Document.
func Parse(data datatypes.JSON) (*Document, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, ErrEmptyDocument
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ToJSON encodes the document back into a JSON column value.
func (d *Document) ToJSON() (datatypes.JSON, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// HasForm reports whether the document carries a form section with at
// least one field.
func (d *Document) HasForm() bool {
	return d.Form != nil && len(d.Form.Fields) > 0
}

// EnsureForm installs the default contact form when the document has
// no usable form section. Returns true when the document was changed.
func (d *Document) EnsureForm() bool {
	if d.HasForm() {
		return false
	}
	form := DefaultContactForm()
	d.Form = &form
	return true
}

// DefaultContactForm returns the canonical four-field contact form
// applied to landings whose content lacks one.
func DefaultContactForm() Form {
	return Form{
		Title:       "Request information",
		Subtitle:    "Leave your details and we will get back to you",
		CTAText:     "Send",
		PrivacyText: "We will never share your data with third parties",
		Fields: []FormField{
			{Name: "name", Type: "text", Label: "Name", Icon: "user", Required: true},
			{Name: "email", Type: "email", Label: "Email", Icon: "mail", Required: true},
			{Name: "phone", Type: "tel", Label: "Phone", Icon: "phone", Required: false},
			{Name: "message", Type: "textarea", Label: "Message", Icon: "chat", Required: false},
		},
	}
}
