package types

// Plugin kinds known to the registry.
const (
	PluginKindCritiqueRule = "critique_rule"
	PluginKindReproCheck   = "repro_check"
)

// PluginDescriptor represents the declared metadata of one registered plugin.
// PluginID is "<kind>.<short_id>" and must be unique across the registry.
type PluginDescriptor struct {
	PluginID         string   `json:"plugin_id"`
	Kind             string   `json:"kind"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Version          string   `json:"version"`
	Entrypoint       string   `json:"entrypoint"`
	EnabledByDefault bool     `json:"enabled_by_default"`
	Tags             []string `json:"tags"`
}
