package validation

import (
	"strings"
	"testing"

	"github.com/engagemate-api/internal/models"
)

func hasField(errors []ValidationError, field string) bool {
	for _, err := range errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

func TestValidateRule(t *testing.T) {
	tests := []struct {
		name       string
		rule       *models.AutomationRule
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid rule with instruction",
			rule:       &models.AutomationRule{ID: "1", Keyword: "guide", AssetID: "1", IsActive: true, CustomInstruction: "Mention the 10k followers."},
			wantErrors: 0,
		},
		{
			name:       "valid inactive rule without id",
			rule:       &models.AutomationRule{Keyword: "calendar", AssetID: "2"},
			wantErrors: 0,
		},
		{
			name:       "blank keyword",
			rule:       &models.AutomationRule{ID: "3", Keyword: "   ", AssetID: "1"},
			wantErrors: 1,
			wantFields: []string{"keyword"},
		},
		{
			name:       "missing asset id",
			rule:       &models.AutomationRule{ID: "4", Keyword: "pdf"},
			wantErrors: 1,
			wantFields: []string{"asset_id"},
		},
		{
			name:       "instruction too long",
			rule:       &models.AutomationRule{ID: "5", Keyword: "pdf", AssetID: "1", CustomInstruction: strings.Repeat("x", MaxInstructionLength+1)},
			wantErrors: 1,
			wantFields: []string{"custom_instruction"},
		},
		{
			name:       "everything wrong",
			rule:       &models.AutomationRule{ID: "6"},
			wantErrors: 2,
			wantFields: []string{"keyword", "asset_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := NewValidator().ValidateRule(tt.rule)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateRule() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, wantField := range tt.wantFields {
				if !hasField(errors, wantField) {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestValidateRule_DuplicateID(t *testing.T) {
	validator := NewValidator()

	if errors := validator.ValidateRule(&models.AutomationRule{ID: "1", Keyword: "guide", AssetID: "1"}); len(errors) != 0 {
		t.Fatalf("Expected first rule to be valid, got %v", errors)
	}

	errors := validator.ValidateRule(&models.AutomationRule{ID: "1", Keyword: "pdf", AssetID: "1"})
	if !hasField(errors, "id") {
		t.Errorf("Expected duplicate id error, got %v", errors)
	}
}

func TestValidateAsset(t *testing.T) {
	tests := []struct {
		name       string
		asset      *models.Asset
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid pdf",
			asset:      &models.Asset{ID: "1", Name: "Ultimate Growth Guide", Kind: models.AssetKindPDF, URL: "https://example.com/growth-guide.pdf"},
			wantErrors: 0,
		},
		{
			name:       "valid link with counter",
			asset:      &models.Asset{ID: "2", Name: "Q4 Marketing Calendar", Kind: models.AssetKindLink, URL: "https://docs.google.com/spreadsheets/d/xyz", DeliveryCount: 89},
			wantErrors: 0,
		},
		{
			name:       "unknown kind",
			asset:      &models.Asset{ID: "3", Name: "Video", Kind: "VIDEO", URL: "https://example.com/v"},
			wantErrors: 1,
			wantFields: []string{"kind"},
		},
		{
			name:       "relative url",
			asset:      &models.Asset{ID: "4", Name: "Guide", Kind: models.AssetKindPDF, URL: "/files/guide.pdf"},
			wantErrors: 1,
			wantFields: []string{"url"},
		},
		{
			name:       "ftp url",
			asset:      &models.Asset{ID: "5", Name: "Guide", Kind: models.AssetKindPDF, URL: "ftp://example.com/guide.pdf"},
			wantErrors: 1,
			wantFields: []string{"url"},
		},
		{
			name:       "missing everything",
			asset:      &models.Asset{ID: "6", DeliveryCount: -1},
			wantErrors: 4,
			wantFields: []string{"name", "kind", "url", "delivery_count"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := NewValidator().ValidateAsset(tt.asset)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateAsset() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			for _, wantField := range tt.wantFields {
				if !hasField(errors, wantField) {
					t.Errorf("Expected error for field '%s' but not found", wantField)
				}
			}
		})
	}
}

func TestValidatePersona(t *testing.T) {
	validator := NewValidator()

	valid := &models.Persona{
		Name:         "Alex Creator",
		Title:        "Growth Marketer",
		Avatar:       "https://picsum.photos/seed/me/200/200",
		Bio:          "I help founders scale their personal brands on LinkedIn.",
		WritingStyle: "Casual, energetic, uses emojis sparsely. No corporate jargon.",
	}
	if errors := validator.ValidatePersona(valid); len(errors) != 0 {
		t.Errorf("Expected valid persona, got %v", errors)
	}

	errors := validator.ValidatePersona(&models.Persona{Avatar: "not a url"})
	if len(errors) != 5 {
		t.Errorf("Expected 5 errors, got %d: %v", len(errors), errors)
	}
	for _, field := range []string{"name", "title", "bio", "writing_style", "avatar"} {
		if !hasField(errors, field) {
			t.Errorf("Expected error for field '%s'", field)
		}
	}
}

func TestValidateCommentDraft(t *testing.T) {
	validator := NewValidator()

	t.Run("fills default handle", func(t *testing.T) {
		draft := &models.CommentDraft{Author: models.Author{Name: "Guest User"}, Text: "I need that GUIDE please"}
		if errors := validator.ValidateCommentDraft(draft); len(errors) != 0 {
			t.Fatalf("Expected no errors, got %v", errors)
		}
		if draft.Author.Handle != DefaultHandle {
			t.Errorf("Expected handle %s, got %s", DefaultHandle, draft.Author.Handle)
		}
	})

	t.Run("empty text and author", func(t *testing.T) {
		errors := validator.ValidateCommentDraft(&models.CommentDraft{Text: "  "})
		if len(errors) != 2 || !hasField(errors, "text") || !hasField(errors, "author.name") {
			t.Errorf("Expected text and author.name errors, got %v", errors)
		}
	})

	t.Run("too many words", func(t *testing.T) {
		draft := &models.CommentDraft{
			Author: models.Author{Name: "Sarah", Handle: "@sarahj"},
			Text:   strings.Repeat("word ", models.MaxCommentWords+1),
		}
		errors := validator.ValidateCommentDraft(draft)
		if len(errors) != 1 || !hasField(errors, "text") {
			t.Errorf("Expected a single text error, got %v", errors)
		}
	})

	t.Run("handle without at sign", func(t *testing.T) {
		draft := &models.CommentDraft{Author: models.Author{Name: "Sarah", Handle: "sarahj"}, Text: "hi"}
		if errors := validator.ValidateCommentDraft(draft); !hasField(errors, "author.handle") {
			t.Errorf("Expected handle error, got %v", errors)
		}
	})
}

func TestValidatePost(t *testing.T) {
	validator := NewValidator()

	if errors := validator.ValidatePost(&models.CreatePostRequest{Content: "Consistency is key", Likes: 120}); len(errors) != 0 {
		t.Errorf("Expected valid post, got %v", errors)
	}

	errors := validator.ValidatePost(&models.CreatePostRequest{Likes: -1, Image: "picsum"})
	if len(errors) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(errors), errors)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := &models.AutomationConfig{
		Assets: []models.Asset{
			{ID: "1", Name: "Guide", Kind: models.AssetKindPDF, URL: "https://example.com/g.pdf"},
			{ID: "1", Name: "Calendar", Kind: models.AssetKindLink, URL: "https://example.com/c"},
		},
		Rules: []models.AutomationRule{
			{ID: "1", Keyword: "guide", AssetID: "1"},
			{ID: "2", Keyword: "", AssetID: "1"},
		},
		Persona: models.Persona{Name: "Alex", Title: "Marketer", Bio: "Bio", WritingStyle: "Casual"},
	}

	errors := ValidateConfig(cfg)
	if len(errors) != 2 {
		t.Fatalf("Expected 2 errors, got %d: %v", len(errors), errors)
	}
	if !hasField(errors, "assets[1].id") {
		t.Errorf("Expected duplicate asset id error, got %v", errors)
	}
	if !hasField(errors, "rules[1].keyword") {
		t.Errorf("Expected empty keyword error, got %v", errors)
	}
}
