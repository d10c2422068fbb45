// Package schemas embeds the JSON Schema documents that define the structural
// contracts for persisted pipeline artifacts. There is exactly one validation
// path: the embedded schemas, checked through internal/schemas.
package schemas

import _ "embed"

// FigureContract is the schema for figures/<id>/contract.json.
//
//go:embed figure_contract.schema.json
var FigureContract string

// PluginDescriptor is the schema for entries of plugins.json.
//
//go:embed plugin_descriptor.schema.json
var PluginDescriptor string

// JournalProfile is the schema for journal profile override bundles.
//
//go:embed journal_profile.schema.json
var JournalProfile string

// RunMetadata is the schema for run.json.
//
//go:embed run_metadata.schema.json
var RunMetadata string
