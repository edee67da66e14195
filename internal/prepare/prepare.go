// Package prepare implements the optional clean-up steps that run before the
// core pipeline: flattening an exported notebook directory, pruning file
// types the site does not publish, and relocating exported images.
package prepare

// FlattenRule moves the children of Dir/Nested up into Dir.
type FlattenRule struct {
	Dir    string
	Nested string
}

// ExportedImages configures relocation of exported images left at the root.
type ExportedImages struct {
	Enabled bool
	// Prefix is the file name prefix of exported images, e.g. "Exported image".
	Prefix string
	// FallbackDir receives images no note references.
	FallbackDir string
}

// Options selects which prepare steps run. The zero value runs nothing.
type Options struct {
	Flatten         []FlattenRule
	PruneExtensions []string
	Exported        ExportedImages
}

// Enabled reports whether any step is configured.
func (o Options) Enabled() bool {
	return len(o.Flatten) > 0 || len(o.PruneExtensions) > 0 || o.Exported.Enabled
}
