package services

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/utils"
)

type ModelInfo struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	FullName string `yaml:"full_name" json:"full_name"`
}

type ModelCatalog struct {
	Providers     map[string][]ModelInfo `yaml:"providers" json:"providers"`
	DefaultModels map[string]string      `yaml:"default_models" json:"default_models"`
}

// ModelCatalogService serves the static model catalog. The catalog document
// is read once at construction; when it is missing or malformed the service
// falls back to a hardcoded catalog so /api/models never fails.
type ModelCatalogService interface {
	Catalog() ModelCatalog
}

type modelCatalogService struct {
	log     *logger.Logger
	catalog ModelCatalog
}

func NewModelCatalogService(baseLog *logger.Logger) ModelCatalogService {
	serviceLog := baseLog.With("service", "ModelCatalogService")
	path := utils.GetEnv("MODELS_CONFIG_PATH", "config/models.yaml", baseLog)

	catalog, err := loadCatalog(path)
	if err != nil {
		serviceLog.Warn("Model catalog unreadable, using fallback", "path", path, "error", err)
		catalog = fallbackCatalog()
	}
	return &modelCatalogService{log: serviceLog, catalog: catalog}
}

func (ms *modelCatalogService) Catalog() ModelCatalog {
	return ms.catalog
}

func loadCatalog(path string) (ModelCatalog, error) {
	var catalog ModelCatalog
	raw, err := os.ReadFile(path)
	if err != nil {
		return catalog, err
	}
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return catalog, err
	}
	if catalog.Providers == nil {
		catalog.Providers = map[string][]ModelInfo{}
	}
	if catalog.DefaultModels == nil {
		catalog.DefaultModels = map[string]string{}
	}
	return catalog, nil
}

func fallbackCatalog() ModelCatalog {
	return ModelCatalog{
		Providers: map[string][]ModelInfo{
			"openai": {
				{ID: "gpt-4o", Name: "GPT-4o", FullName: "gpt-4o"},
				{ID: "gpt-4o-mini", Name: "GPT-4o Mini", FullName: "gpt-4o-mini"},
			},
			"anthropic": {
				{ID: "claude-3-sonnet", Name: "Claude 3 Sonnet", FullName: "claude-3-sonnet"},
			},
			"gemini": {
				{ID: "gemini-pro", Name: "Gemini Pro", FullName: "gemini-pro"},
			},
		},
		DefaultModels: map[string]string{
			"openai":    "gpt-4o",
			"anthropic": "claude-3-sonnet",
			"gemini":    "gemini-pro",
		},
	}
}
