// Package templates loads figure template packs that seed contracts and steer
// planning toward journal-grade figure kinds.
package templates

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/oluwafemidiakhoa/paperfig/internal/runstore"
	"github.com/oluwafemidiakhoa/paperfig/internal/types"
)

//go:embed packs/*.yaml
var builtinPacks embed.FS

// Load reads the template pack <packID>.yaml from dir. When the file is
// absent the built-in pack of the same id is used, so the default pack works
// without any on-disk templates directory.
func Load(packID, dir string) (*types.FlowTemplateCatalog, error) {
	path := filepath.Join(dir, packID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read template pack %s: %w", path, err)
		}
		data, err = builtinPacks.ReadFile("packs/" + packID + ".yaml")
		if err != nil {
			return nil, &runstore.NotFoundError{Kind: "template pack", Name: packID, Root: dir}
		}
	}

	var catalog types.FlowTemplateCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse template pack %s: %w", packID, err)
	}
	if catalog.PackID == "" {
		catalog.PackID = packID
	}
	if err := check(&catalog); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func check(catalog *types.FlowTemplateCatalog) error {
	seen := make(map[string]bool, len(catalog.Templates))
	for _, template := range catalog.Templates {
		if template.TemplateID == "" {
			return fmt.Errorf("template pack %s contains a template without an id", catalog.PackID)
		}
		if seen[template.TemplateID] {
			return fmt.Errorf("template pack %s contains duplicate template id %q", catalog.PackID, template.TemplateID)
		}
		seen[template.TemplateID] = true
	}
	return nil
}

// ForPlan resolves the template backing one planned figure. An explicit
// template id wins; otherwise the first template matching the figure kind is
// used. Returns nil when nothing matches.
func ForPlan(catalog *types.FlowTemplateCatalog, plan types.FigurePlan) *types.FlowTemplate {
	if catalog == nil {
		return nil
	}
	if plan.TemplateID != "" {
		if template := catalog.ByID(plan.TemplateID); template != nil {
			return template
		}
	}
	for i := range catalog.Templates {
		if catalog.Templates[i].Kind == plan.Kind {
			return &catalog.Templates[i]
		}
	}
	return nil
}
