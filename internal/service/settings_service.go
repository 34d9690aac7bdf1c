package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/engagemate-api/internal/models"
	"github.com/engagemate-api/internal/repository"
	"github.com/engagemate-api/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultConfig is written to an empty store on first start
func DefaultConfig() models.AutomationConfig {
	return models.AutomationConfig{
		Assets: []models.Asset{
			{ID: "1", Name: "Ultimate Growth Guide", Kind: models.AssetKindPDF, URL: "https://example.com/growth-guide.pdf", DeliveryCount: 124},
			{ID: "2", Name: "Q4 Marketing Calendar", Kind: models.AssetKindLink, URL: "https://docs.google.com/spreadsheets/d/xyz", DeliveryCount: 89},
		},
		Rules: []models.AutomationRule{
			{ID: "1", Keyword: "guide", AssetID: "1", IsActive: true, CustomInstruction: "Mention that this guide helped me get 10k followers."},
			{ID: "2", Keyword: "calendar", AssetID: "2", IsActive: true},
			{ID: "3", Keyword: "pdf", AssetID: "1", IsActive: true},
		},
		Persona: models.Persona{
			Name:         "Alex Creator",
			Title:        "Growth Marketer",
			Avatar:       "https://picsum.photos/seed/me/200/200",
			Bio:          "I help founders scale their personal brands on LinkedIn.",
			WritingStyle: "Casual, energetic, uses emojis sparsely. No corporate jargon.",
		},
	}
}

// settingsService keeps the configuration in memory and mirrors every
// change of a blob to the settings repository
type settingsService struct {
	repo repository.SettingsRepository
	log  zerolog.Logger

	mu  sync.RWMutex
	cfg models.AutomationConfig
}

// newSettingsService creates a new SettingsService
func newSettingsService(repo repository.SettingsRepository, log zerolog.Logger) *settingsService {
	return &settingsService{
		repo: repo,
		log:  log.With().Str("service", "settings").Logger(),
		cfg:  DefaultConfig(),
	}
}

// NewSettingsService creates a SettingsService over repo
func NewSettingsService(repo repository.SettingsRepository, log zerolog.Logger) SettingsService {
	return newSettingsService(repo, log)
}

// Init loads the three blobs, writing defaults for any that are missing
func (s *settingsService) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg models.AutomationConfig
	defaults := DefaultConfig()
	blobs := []struct {
		key          string
		dest         interface{}
		def          interface{}
		applyDefault func()
	}{
		{repository.SettingsKeyRules, &cfg.Rules, defaults.Rules, func() { cfg.Rules = defaults.Rules }},
		{repository.SettingsKeyAssets, &cfg.Assets, defaults.Assets, func() { cfg.Assets = defaults.Assets }},
		{repository.SettingsKeyPersona, &cfg.Persona, defaults.Persona, func() { cfg.Persona = defaults.Persona }},
	}

	for _, b := range blobs {
		found, err := s.repo.Get(ctx, b.key, b.dest)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", b.key, err)
		}
		if found {
			continue
		}
		if err := s.repo.Put(ctx, b.key, b.def); err != nil {
			return fmt.Errorf("failed to seed %s: %w", b.key, err)
		}
		b.applyDefault()
		s.log.Info().Str("key", b.key).Msg("Seeded default setting")
	}
	s.cfg = cfg

	s.log.Info().
		Int("rules", len(s.cfg.Rules)).
		Int("assets", len(s.cfg.Assets)).
		Str("persona", s.cfg.Persona.Name).
		Msg("Settings loaded")
	return nil
}

// Snapshot returns a copy of the configuration for one pipeline run
func (s *settingsService) Snapshot() models.AutomationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Replace validates and stores a whole configuration
func (s *settingsService) Replace(ctx context.Context, cfg models.AutomationConfig) error {
	if err := validationFailed(validation.ValidateConfig(&cfg)); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.PutAll(ctx, map[string]interface{}{
		repository.SettingsKeyRules:   cfg.Rules,
		repository.SettingsKeyAssets:  cfg.Assets,
		repository.SettingsKeyPersona: cfg.Persona,
	}); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	s.cfg = cfg.Clone()
	return nil
}

// ListRules returns the rules in evaluation order
func (s *settingsService) ListRules() []models.AutomationRule {
	return s.Snapshot().Rules
}

// CreateRule appends a rule. A rule without an asset points at the first asset.
func (s *settingsService) CreateRule(ctx context.Context, rule models.AutomationRule) (models.AutomationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule.ID = uuid.New().String()
	if rule.AssetID == "" && len(s.cfg.Assets) > 0 {
		rule.AssetID = s.cfg.Assets[0].ID
	}
	if err := validationFailed(validation.NewValidator().ValidateRule(&rule)); err != nil {
		return models.AutomationRule{}, err
	}

	rules := append(append([]models.AutomationRule(nil), s.cfg.Rules...), rule)
	if err := s.saveRules(ctx, rules); err != nil {
		return models.AutomationRule{}, err
	}

	s.log.Info().Str("rule_id", rule.ID).Str("keyword", rule.Keyword).Msg("Rule created")
	return rule, nil
}

// UpdateRule replaces the rule with the given id, keeping its position
func (s *settingsService) UpdateRule(ctx context.Context, id string, rule models.AutomationRule) (models.AutomationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.ruleIndex(id)
	if idx < 0 {
		return models.AutomationRule{}, ErrRuleNotFound
	}

	rule.ID = id
	if err := validationFailed(validation.NewValidator().ValidateRule(&rule)); err != nil {
		return models.AutomationRule{}, err
	}

	rules := append([]models.AutomationRule(nil), s.cfg.Rules...)
	rules[idx] = rule
	if err := s.saveRules(ctx, rules); err != nil {
		return models.AutomationRule{}, err
	}
	return rule, nil
}

// ToggleRule flips a rule's active flag
func (s *settingsService) ToggleRule(ctx context.Context, id string) (models.AutomationRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.ruleIndex(id)
	if idx < 0 {
		return models.AutomationRule{}, ErrRuleNotFound
	}

	rules := append([]models.AutomationRule(nil), s.cfg.Rules...)
	rules[idx].IsActive = !rules[idx].IsActive
	if err := s.saveRules(ctx, rules); err != nil {
		return models.AutomationRule{}, err
	}

	s.log.Info().Str("rule_id", id).Bool("is_active", rules[idx].IsActive).Msg("Rule toggled")
	return rules[idx], nil
}

// DeleteRule removes a rule
func (s *settingsService) DeleteRule(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.ruleIndex(id)
	if idx < 0 {
		return ErrRuleNotFound
	}

	rules := make([]models.AutomationRule, 0, len(s.cfg.Rules)-1)
	rules = append(rules, s.cfg.Rules[:idx]...)
	rules = append(rules, s.cfg.Rules[idx+1:]...)
	return s.saveRules(ctx, rules)
}

// ListAssets returns the asset catalog
func (s *settingsService) ListAssets() []models.Asset {
	return s.Snapshot().Assets
}

// CreateAsset adds an asset with a fresh id and a zero delivery count
func (s *settingsService) CreateAsset(ctx context.Context, asset models.Asset) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset.ID = uuid.New().String()
	asset.DeliveryCount = 0
	if err := validationFailed(validation.NewValidator().ValidateAsset(&asset)); err != nil {
		return models.Asset{}, err
	}

	assets := append(append([]models.Asset(nil), s.cfg.Assets...), asset)
	if err := s.saveAssets(ctx, assets); err != nil {
		return models.Asset{}, err
	}

	s.log.Info().Str("asset_id", asset.ID).Str("name", asset.Name).Msg("Asset created")
	return asset, nil
}

// UpdateAsset replaces an asset's name, kind and URL, keeping its delivery count
func (s *settingsService) UpdateAsset(ctx context.Context, id string, asset models.Asset) (models.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.assetIndex(id)
	if idx < 0 {
		return models.Asset{}, ErrAssetNotFound
	}

	asset.ID = id
	asset.DeliveryCount = s.cfg.Assets[idx].DeliveryCount
	if err := validationFailed(validation.NewValidator().ValidateAsset(&asset)); err != nil {
		return models.Asset{}, err
	}

	assets := append([]models.Asset(nil), s.cfg.Assets...)
	assets[idx] = asset
	if err := s.saveAssets(ctx, assets); err != nil {
		return models.Asset{}, err
	}
	return asset, nil
}

// DeleteAsset removes an asset. Rules that reference it are kept and stop
// producing direct messages.
func (s *settingsService) DeleteAsset(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.assetIndex(id)
	if idx < 0 {
		return ErrAssetNotFound
	}

	assets := make([]models.Asset, 0, len(s.cfg.Assets)-1)
	assets = append(assets, s.cfg.Assets[:idx]...)
	assets = append(assets, s.cfg.Assets[idx+1:]...)
	return s.saveAssets(ctx, assets)
}

// RecordDelivery increments an asset's delivery counter
func (s *settingsService) RecordDelivery(ctx context.Context, assetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.assetIndex(assetID)
	if idx < 0 {
		return ErrAssetNotFound
	}

	assets := append([]models.Asset(nil), s.cfg.Assets...)
	assets[idx].DeliveryCount++
	return s.saveAssets(ctx, assets)
}

// GetPersona returns the configured persona
func (s *settingsService) GetPersona() models.Persona {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Persona
}

// UpdatePersona replaces the persona
func (s *settingsService) UpdatePersona(ctx context.Context, persona models.Persona) (models.Persona, error) {
	if err := validationFailed(validation.NewValidator().ValidatePersona(&persona)); err != nil {
		return models.Persona{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Put(ctx, repository.SettingsKeyPersona, persona); err != nil {
		return models.Persona{}, fmt.Errorf("failed to save persona: %w", err)
	}
	s.cfg.Persona = persona

	s.log.Info().Str("name", persona.Name).Msg("Persona updated")
	return persona, nil
}

// saveRules persists rules and swaps them in; callers hold s.mu
func (s *settingsService) saveRules(ctx context.Context, rules []models.AutomationRule) error {
	if err := s.repo.Put(ctx, repository.SettingsKeyRules, rules); err != nil {
		return fmt.Errorf("failed to save rules: %w", err)
	}
	s.cfg.Rules = rules
	return nil
}

// saveAssets persists assets and swaps them in; callers hold s.mu
func (s *settingsService) saveAssets(ctx context.Context, assets []models.Asset) error {
	if err := s.repo.Put(ctx, repository.SettingsKeyAssets, assets); err != nil {
		return fmt.Errorf("failed to save assets: %w", err)
	}
	s.cfg.Assets = assets
	return nil
}

func (s *settingsService) ruleIndex(id string) int {
	for i, r := range s.cfg.Rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *settingsService) assetIndex(id string) int {
	for i, a := range s.cfg.Assets {
		if a.ID == id {
			return i
		}
	}
	return -1
}
