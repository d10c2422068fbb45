package types

// FlowTemplate represents one figure template from a template pack
type FlowTemplate struct {
	TemplateID               string            `json:"template_id" yaml:"template_id"`
	Title                    string            `json:"title" yaml:"title"`
	Kind                     string            `json:"kind" yaml:"kind"`
	OrderHint                int               `json:"order_hint" yaml:"order_hint"`
	RequiredSections         []string          `json:"required_sections" yaml:"required_sections"`
	TraceabilityRequirements map[string]string `json:"traceability_requirements" yaml:"traceability_requirements"`
	CritiqueFocus            []string          `json:"critique_focus" yaml:"critique_focus"`
	CaptionStyle             string            `json:"caption_style" yaml:"caption_style"`
}

// FlowTemplateCatalog represents a loaded template pack
type FlowTemplateCatalog struct {
	PackID    string         `json:"pack_id" yaml:"pack_id"`
	Templates []FlowTemplate `json:"templates" yaml:"templates"`
}

// ByID returns the template with the given id, or nil when the catalog does
// not contain it.
func (c *FlowTemplateCatalog) ByID(id string) *FlowTemplate {
	for i := range c.Templates {
		if c.Templates[i].TemplateID == id {
			return &c.Templates[i]
		}
	}
	return nil
}
