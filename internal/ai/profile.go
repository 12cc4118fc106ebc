package ai

import (
	_ "embed"
	"github.com/myrjola/casefile/internal/errors"
	"gopkg.in/yaml.v3"
	"io/fs"
	"log/slog"
	"os"
)

//go:embed profile.yaml
var defaultProfile []byte

// Profile lists the sources the prompts refer to by name.
type Profile struct {
	Outlets        []string `yaml:"outlets"`
	Forums         []string `yaml:"forums"`
	StockLibraries []string `yaml:"stock_libraries"`
}

// DefaultProfile returns the built-in research profile.
func DefaultProfile() Profile {
	profile, err := parseProfile(defaultProfile)
	if err != nil {
		panic(err) // The embedded profile is validated by tests.
	}
	return profile
}

// LoadProfile reads a YAML profile from path. An empty path or a missing file yields the built-in profile. Lists left
// out of the file keep their built-in values.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return profile, nil
	}
	if err != nil {
		return Profile{}, errors.Wrap(err, "read profile", slog.String("path", path))
	}
	override, err := parseProfile(data)
	if err != nil {
		return Profile{}, errors.Wrap(err, "parse profile", slog.String("path", path))
	}
	if len(override.Outlets) > 0 {
		profile.Outlets = override.Outlets
	}
	if len(override.Forums) > 0 {
		profile.Forums = override.Forums
	}
	if len(override.StockLibraries) > 0 {
		profile.StockLibraries = override.StockLibraries
	}
	return profile, nil
}

func parseProfile(data []byte) (Profile, error) {
	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, errors.Wrap(err, "unmarshal yaml")
	}
	return profile, nil
}
