package seed

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed presets/*.yml
var presetFS embed.FS

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Account is a fixed, well-known login created before the random users.
type Account struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Inactive bool   `yaml:"inactive"`
}

// Preset describes the shape of a generated dataset.
type Preset struct {
	Name                 string    `yaml:"name"`
	Users                int       `yaml:"users"`
	PostsPerUser         int       `yaml:"posts_per_user"`
	Comments             Range     `yaml:"comments"`
	VoteProbability      float64   `yaml:"vote_probability"`
	UpvoteRatio          float64   `yaml:"upvote_ratio"`
	InactiveCommentRatio float64   `yaml:"inactive_comment_ratio"`
	MaxDays              int       `yaml:"max_days"`
	Accounts             []Account `yaml:"accounts"`
}

// Validate checks the preset for values the seeder cannot honor.
func (p Preset) Validate() error {
	var errs []error
	if p.Users < 0 {
		errs = append(errs, errors.New("users must be >= 0"))
	}
	if p.PostsPerUser < 0 {
		errs = append(errs, errors.New("posts_per_user must be >= 0"))
	}
	if p.Comments.Min < 0 || p.Comments.Max < p.Comments.Min {
		errs = append(errs, fmt.Errorf("comments range %d..%d is invalid", p.Comments.Min, p.Comments.Max))
	}
	for name, v := range map[string]float64{
		"vote_probability":       p.VoteProbability,
		"upvote_ratio":           p.UpvoteRatio,
		"inactive_comment_ratio": p.InactiveCommentRatio,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 1", name))
		}
	}
	if p.MaxDays < 0 {
		errs = append(errs, errors.New("max_days must be >= 0"))
	}
	seen := make(map[string]bool, len(p.Accounts))
	for _, a := range p.Accounts {
		if a.Username == "" || a.Email == "" {
			errs = append(errs, errors.New("accounts need a username and an email"))
			continue
		}
		if seen[a.Username] {
			errs = append(errs, fmt.Errorf("duplicate account %q", a.Username))
		}
		seen[a.Username] = true
	}
	return errors.Join(errs...)
}

// PresetNames lists the built-in presets.
func PresetNames() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names
}

// LoadPreset returns a built-in preset by name.
func LoadPreset(name string) (Preset, error) {
	raw, err := presetFS.ReadFile("presets/" + name + ".yml")
	if err != nil {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %s)", name, strings.Join(PresetNames(), ", "))
	}
	return parsePreset(raw, name)
}

// LoadPresetFile reads a preset from a YAML file on disk.
func LoadPresetFile(file string) (Preset, error) {
	raw, err := os.ReadFile(file) // #nosec G304: operator supplied path
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return parsePreset(raw, strings.TrimSuffix(path.Base(file), path.Ext(file)))
}

func parsePreset(raw []byte, fallbackName string) (Preset, error) {
	var p Preset
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset %s: %w", fallbackName, err)
	}
	if p.Name == "" {
		p.Name = fallbackName
	}
	if err := p.Validate(); err != nil {
		return Preset{}, fmt.Errorf("preset %s: %w", p.Name, err)
	}
	return p, nil
}
