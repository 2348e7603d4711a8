package summary

import (
	"embed"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sections.yaml
var sectionsYAML embed.FS

// SectionInfo is display metadata for one known section key.
type SectionInfo struct {
	Key   string `yaml:"key"`
	Title string `yaml:"title"`
	Icon  string `yaml:"icon"`
}

// SectionRegistry orders the sections a rendered summary presents. Unknown
// keys keep their document order after the known ones.
type SectionRegistry struct {
	Sections []SectionInfo `yaml:"sections"`

	rank map[string]int
}

// LoadSectionRegistry reads the embedded sections.yaml. The path parameter is
// a filesystem fallback for local experimentation.
func LoadSectionRegistry(path string) (*SectionRegistry, error) {
	data, err := sectionsYAML.ReadFile("config/sections.yaml")
	if err != nil {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, err
		}
	}

	var reg SectionRegistry
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &reg); err != nil {
		return nil, err
	}

	reg.rank = make(map[string]int, len(reg.Sections))
	for i, s := range reg.Sections {
		reg.rank[s.Key] = i
	}
	return &reg, nil
}

// Rank returns the display position of a section key, and whether the key is
// a known section.
func (r *SectionRegistry) Rank(key string) (int, bool) {
	i, ok := r.rank[key]
	return i, ok
}

// Title returns the display title for a key, falling back to empty for
// unknown sections (callers humanize the raw key instead).
func (r *SectionRegistry) Title(key string) string {
	if i, ok := r.rank[key]; ok {
		return r.Sections[i].Title
	}
	return ""
}

// Icon returns the icon hint for a key, or "clipboard-list" for unknown keys.
func (r *SectionRegistry) Icon(key string) string {
	if i, ok := r.rank[key]; ok {
		return r.Sections[i].Icon
	}
	return "clipboard-list"
}
