package schema

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/magnetrade/pkg/domain"
	"gopkg.in/yaml.v3"
)

type rawPrompt struct {
	Label     string     `yaml:"label" json:"label"`
	Type      PromptKind `yaml:"type" json:"type"`
	Options   []string   `yaml:"options,omitempty" json:"options,omitempty"`
	InputType string     `yaml:"inputType,omitempty" json:"inputType,omitempty"`
}

type rawSubMenu struct {
	Name    string      `yaml:"name" json:"name"`
	Prompts []rawPrompt `yaml:"prompts" json:"prompts"`
}

type rawMenu struct {
	Menu     string       `yaml:"menu" json:"menu"`
	SubMenus []rawSubMenu `yaml:"subMenus" json:"subMenus"`
}

// Parse decodes a YAML (or JSON) catalog and validates its structure.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string][]rawMenu
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var errs []error
	kinds := make(map[domain.BlockKind][]Menu, len(raw))
	for key, menus := range raw {
		kind, err := domain.ParseBlockKind(key)
		if err != nil {
			errs = append(errs, &ValidationError{Path: key, Reason: err.Error()})
			continue
		}
		if _, dup := kinds[kind]; dup {
			errs = append(errs, &ValidationError{Path: key, Reason: "block kind declared twice"})
			continue
		}
		converted, menuErrs := convertMenus(string(kind), menus)
		errs = append(errs, menuErrs...)
		kinds[kind] = converted
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return NewCatalog(kinds), nil
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

func convertMenus(kind string, menus []rawMenu) ([]Menu, []error) {
	var errs []error
	out := make([]Menu, 0, len(menus))
	seenMenus := make(map[string]bool)
	for _, rm := range menus {
		menuPath := kind + "/" + rm.Menu
		if rm.Menu == "" {
			errs = append(errs, &ValidationError{Path: kind, Reason: "menu without name"})
			continue
		}
		if seenMenus[rm.Menu] {
			errs = append(errs, &ValidationError{Path: menuPath, Reason: "duplicate menu"})
			continue
		}
		seenMenus[rm.Menu] = true

		menu := Menu{Name: rm.Menu}
		seenSubs := make(map[string]bool)
		for _, rs := range rm.SubMenus {
			subPath := menuPath + "/" + rs.Name
			if rs.Name == "" {
				errs = append(errs, &ValidationError{Path: menuPath, Reason: "sub-menu without name"})
				continue
			}
			if seenSubs[rs.Name] {
				errs = append(errs, &ValidationError{Path: subPath, Reason: "duplicate sub-menu"})
				continue
			}
			seenSubs[rs.Name] = true

			sub := SubMenu{Name: rs.Name}
			seenLabels := make(map[string]bool)
			for _, rp := range rs.Prompts {
				if seenLabels[rp.Label] {
					errs = append(errs, &ValidationError{Path: subPath + "/" + rp.Label, Reason: "duplicate prompt label"})
					continue
				}
				seenLabels[rp.Label] = true
				p, err := convertPrompt(rp)
				if err != nil {
					errs = append(errs, &ValidationError{Path: subPath + "/" + rp.Label, Reason: err.Error()})
					continue
				}
				sub.Prompts = append(sub.Prompts, p)
			}
			menu.SubMenus = append(menu.SubMenus, sub)
		}
		out = append(out, menu)
	}
	return out, errs
}

func convertPrompt(rp rawPrompt) (Prompt, error) {
	if rp.Label == "" {
		return nil, fmt.Errorf("prompt without label")
	}
	switch rp.Type {
	case KindSelect:
		if len(rp.Options) == 0 {
			return nil, fmt.Errorf("select prompt without options")
		}
		return NewSelect(rp.Label, rp.Options...), nil
	case KindMultiSelect:
		if len(rp.Options) == 0 {
			return nil, fmt.Errorf("multi-select prompt without options")
		}
		return NewMultiSelect(rp.Label, rp.Options...), nil
	case KindInput:
		if rp.InputType == InputNumber {
			return NewNumericInput(rp.Label), nil
		}
		return NewTextInput(rp.Label, rp.InputType), nil
	}
	return nil, fmt.Errorf("unknown prompt type %q", rp.Type)
}

func toRawPrompt(p Prompt) rawPrompt {
	rp := rawPrompt{Label: p.Label(), Type: p.Kind()}
	switch v := p.(type) {
	case *Select:
		rp.Options = v.Options
	case *MultiSelect:
		rp.Options = v.Options
	case *NumericInput:
		rp.InputType = InputNumber
	case *TextInput:
		rp.InputType = v.InputType
	}
	return rp
}

func (c *Catalog) raw() map[string][]rawMenu {
	out := make(map[string][]rawMenu, len(c.kinds))
	for kind, menus := range c.kinds {
		rms := make([]rawMenu, 0, len(menus))
		for _, m := range menus {
			rm := rawMenu{Menu: m.Name}
			for _, s := range m.SubMenus {
				rs := rawSubMenu{Name: s.Name, Prompts: []rawPrompt{}}
				for _, p := range s.Prompts {
					rs.Prompts = append(rs.Prompts, toRawPrompt(p))
				}
				rm.SubMenus = append(rm.SubMenus, rs)
			}
			rms = append(rms, rm)
		}
		out[string(kind)] = rms
	}
	return out
}

// MarshalJSON serializes the catalog in its YAML layout, preserving declaration order.
func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.raw())
}

// MarshalYAML serializes the catalog in the same layout Parse accepts.
func (c *Catalog) MarshalYAML() (any, error) {
	return c.raw(), nil
}
