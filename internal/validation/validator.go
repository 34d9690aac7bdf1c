package validation

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/engagemate-api/internal/models"
)

// MaxInstructionLength caps a rule's custom instruction
const MaxInstructionLength = 500

// DefaultHandle is assigned to drafts submitted without a handle
const DefaultHandle = "@guest_user"

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Validator provides validation methods. The id caches detect duplicates
// while a rule set or asset catalog is validated entry by entry.
type Validator struct {
	ruleIDCache  map[string]bool
	assetIDCache map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		ruleIDCache:  make(map[string]bool),
		assetIDCache: make(map[string]bool),
	}
}

// ValidateRule validates an automation rule
func (v *Validator) ValidateRule(rule *models.AutomationRule) []ValidationError {
	var errors []ValidationError

	if rule.ID != "" {
		if v.ruleIDCache[rule.ID] {
			errors = append(errors, ValidationError{Field: "id", Message: "duplicate rule id", Value: rule.ID})
		}
		v.ruleIDCache[rule.ID] = true
	}

	if strings.TrimSpace(rule.Keyword) == "" {
		errors = append(errors, ValidationError{Field: "keyword", Message: "keyword is required"})
	}

	if rule.AssetID == "" {
		errors = append(errors, ValidationError{Field: "asset_id", Message: "asset_id is required"})
	}

	if len(rule.CustomInstruction) > MaxInstructionLength {
		errors = append(errors, ValidationError{
			Field:   "custom_instruction",
			Message: fmt.Sprintf("custom_instruction exceeds maximum of %d characters", MaxInstructionLength),
		})
	}

	return errors
}

// ValidateAsset validates a catalog asset
func (v *Validator) ValidateAsset(asset *models.Asset) []ValidationError {
	var errors []ValidationError

	if asset.ID != "" {
		if v.assetIDCache[asset.ID] {
			errors = append(errors, ValidationError{Field: "id", Message: "duplicate asset id", Value: asset.ID})
		}
		v.assetIDCache[asset.ID] = true
	}

	if strings.TrimSpace(asset.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}

	if asset.Kind == "" {
		errors = append(errors, ValidationError{Field: "kind", Message: "kind is required"})
	} else if !models.ValidAssetKinds[asset.Kind] {
		errors = append(errors, ValidationError{
			Field:   "kind",
			Message: "invalid kind, must be one of: PDF, LINK, IMAGE",
			Value:   asset.Kind,
		})
	}

	if asset.URL == "" {
		errors = append(errors, ValidationError{Field: "url", Message: "url is required"})
	} else if !isHTTPURL(asset.URL) {
		errors = append(errors, ValidationError{Field: "url", Message: "url must be an absolute http(s) URL", Value: asset.URL})
	}

	if asset.DeliveryCount < 0 {
		errors = append(errors, ValidationError{Field: "delivery_count", Message: "delivery_count must not be negative", Value: asset.DeliveryCount})
	}

	return errors
}

// ValidatePersona validates the persona the generator imitates
func (v *Validator) ValidatePersona(persona *models.Persona) []ValidationError {
	var errors []ValidationError

	required := []struct {
		field string
		value string
	}{
		{"name", persona.Name},
		{"title", persona.Title},
		{"bio", persona.Bio},
		{"writing_style", persona.WritingStyle},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errors = append(errors, ValidationError{Field: r.field, Message: r.field + " is required"})
		}
	}

	if persona.Avatar != "" && !isHTTPURL(persona.Avatar) {
		errors = append(errors, ValidationError{Field: "avatar", Message: "avatar must be an absolute http(s) URL", Value: persona.Avatar})
	}

	return errors
}

// ValidateCommentDraft validates a submitted comment and fills in the default handle
func (v *Validator) ValidateCommentDraft(draft *models.CommentDraft) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(draft.Text) == "" {
		errors = append(errors, ValidationError{Field: "text", Message: "text is required"})
	} else {
		wordCount := len(strings.Fields(draft.Text))
		if wordCount > models.MaxCommentWords {
			errors = append(errors, ValidationError{
				Field:   "text",
				Message: fmt.Sprintf("text exceeds maximum of %d words (has %d)", models.MaxCommentWords, wordCount),
			})
		}
	}

	if strings.TrimSpace(draft.Author.Name) == "" {
		errors = append(errors, ValidationError{Field: "author.name", Message: "author name is required"})
	}

	if draft.Author.Handle == "" {
		draft.Author.Handle = DefaultHandle
	} else if !strings.HasPrefix(draft.Author.Handle, "@") {
		errors = append(errors, ValidationError{Field: "author.handle", Message: "handle must start with @", Value: draft.Author.Handle})
	}

	return errors
}

// ValidatePost validates a new post
func (v *Validator) ValidatePost(req *models.CreatePostRequest) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(req.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "content is required"})
	}

	if req.Likes < 0 {
		errors = append(errors, ValidationError{Field: "likes", Message: "likes must not be negative", Value: req.Likes})
	}

	if req.Image != "" && !isHTTPURL(req.Image) {
		errors = append(errors, ValidationError{Field: "image", Message: "image must be an absolute http(s) URL", Value: req.Image})
	}

	return errors
}

// ValidateConfig validates a whole rule set, asset catalog and persona
func ValidateConfig(cfg *models.AutomationConfig) []ValidationError {
	v := NewValidator()
	var errors []ValidationError

	for i := range cfg.Assets {
		for _, e := range v.ValidateAsset(&cfg.Assets[i]) {
			e.Field = fmt.Sprintf("assets[%d].%s", i, e.Field)
			errors = append(errors, e)
		}
	}
	for i := range cfg.Rules {
		for _, e := range v.ValidateRule(&cfg.Rules[i]) {
			e.Field = fmt.Sprintf("rules[%d].%s", i, e.Field)
			errors = append(errors, e)
		}
	}
	for _, e := range v.ValidatePersona(&cfg.Persona) {
		e.Field = "persona." + e.Field
		errors = append(errors, e)
	}

	return errors
}

// isHTTPURL checks that s is an absolute http or https URL
func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
