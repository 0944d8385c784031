package seed

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed presets.yml
var presetsYAML []byte

// Account is a fixed login created by every preset run.
type Account struct {
	Email    string `yaml:"email"`
	Nickname string `yaml:"nickname"`
}

// Preset sizes one seeding run.
type Preset struct {
	Name            string  `yaml:"name"`
	Users           int     `yaml:"users"`
	PostsPerUser    int     `yaml:"postsPerUser"`
	ImagesPerPost   int     `yaml:"imagesPerPost"`
	CommentsPerPost int     `yaml:"commentsPerPost"`
	LikeChance      float64 `yaml:"likeChance"`
}

// Catalog is the parsed presets file.
type Catalog struct {
	Accounts []Account `yaml:"accounts"`
	Presets  []Preset  `yaml:"presets"`
}

// LoadCatalog parses the embedded presets file.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(presetsYAML)
}

// ParseCatalog parses and checks a presets document.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("preset without a name")
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		seen[p.Name] = true
		if err := p.check(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
	}
	return &c, nil
}

func (p Preset) check() error {
	switch {
	case p.Users < 0 || p.PostsPerUser < 0 || p.CommentsPerPost < 0:
		return fmt.Errorf("counts must not be negative")
	case p.ImagesPerPost < 0 || p.ImagesPerPost > maxImagesPerPost:
		return fmt.Errorf("imagesPerPost must be between 0 and %d", maxImagesPerPost)
	case p.LikeChance < 0 || p.LikeChance > 1:
		return fmt.Errorf("likeChance must be between 0 and 1")
	}
	return nil
}

// Preset returns the named preset.
func (c *Catalog) Preset(name string) (Preset, error) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, nil
		}
	}
	return Preset{}, fmt.Errorf("unknown preset %q (have %v)", name, c.Names())
}

// Names lists the preset names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Presets))
	for _, p := range c.Presets {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names
}
