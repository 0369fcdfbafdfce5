package language

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// fileOverride is one entry of a languages YAML file. Empty fields keep the
// built-in value.
type fileOverride struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	Script       Script `yaml:"script"`
	DefaultVoice string `yaml:"default_voice"`
	Tip          *Tip   `yaml:"tip"`
	StripChars   string `yaml:"strip_chars"`
}

type fileDoc struct {
	Languages []fileOverride `yaml:"languages"`
}

// LoadFile returns the built-in registry with the overrides from the YAML
// file at path applied. An empty path yields the built-in registry.
func LoadFile(path string) (*Registry, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("language: open %q: %w", path, err)
	}
	defer f.Close()

	reg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("language: parse %q: %w", path, err)
	}
	return reg, nil
}

// LoadFromReader decodes overrides from r and merges them over the built-in
// profiles.
func LoadFromReader(r io.Reader) (*Registry, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	base := Default()
	var errs []error
	for i, o := range doc.Languages {
		code := Canonical(o.Code)
		if code == "" {
			errs = append(errs, fmt.Errorf("languages[%d]: code is required", i))
			continue
		}
		p, ok := base.profiles[code]
		if !ok {
			p = Profile{Code: code, Name: code, Script: ScriptLatin, DefaultVoice: defaultVoice}
		}
		if o.Name != "" {
			p.Name = o.Name
		}
		if o.Script != "" {
			p.Script = o.Script
		}
		if o.DefaultVoice != "" {
			p.DefaultVoice = o.DefaultVoice
		}
		if o.Tip != nil {
			if strings.TrimSpace(o.Tip.Type) == "" || strings.TrimSpace(o.Tip.Title) == "" {
				errs = append(errs, fmt.Errorf("languages[%d] (%s): tip needs type and title", i, code))
				continue
			}
			tip := *o.Tip
			p.Tip = &tip
		}
		if o.StripChars != "" {
			p.Rules.Strip = append(append([]rune(nil), p.Rules.Strip...), []rune(o.StripChars)...)
		}
		base.profiles[code] = p
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return base, nil
}
