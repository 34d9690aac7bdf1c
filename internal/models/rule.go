package models

// AutomationRule binds a keyword to an asset
type AutomationRule struct {
	ID                string `json:"id" yaml:"id"`
	Keyword           string `json:"keyword" yaml:"keyword"`
	AssetID           string `json:"asset_id" yaml:"asset_id"`
	IsActive          bool   `json:"is_active" yaml:"is_active"`
	CustomInstruction string `json:"custom_instruction,omitempty" yaml:"custom_instruction"`
}

// AutomationConfig is the rule set, asset catalog and persona handed to one
// pipeline run. Rules and assets keep their configured order.
type AutomationConfig struct {
	Rules   []AutomationRule `json:"rules" yaml:"rules"`
	Assets  []Asset          `json:"assets" yaml:"assets"`
	Persona Persona          `json:"persona" yaml:"persona"`
}

// Clone returns a copy whose slices do not alias c
func (c AutomationConfig) Clone() AutomationConfig {
	out := AutomationConfig{Persona: c.Persona}
	if c.Rules != nil {
		out.Rules = append([]AutomationRule(nil), c.Rules...)
	}
	if c.Assets != nil {
		out.Assets = append([]Asset(nil), c.Assets...)
	}
	return out
}
