package schema

import "github.com/aretw0/magnetrade/pkg/domain"

// SubMenu is one choice of a menu with its ordered prompts.
type SubMenu struct {
	Name    string
	Prompts []Prompt
}

// Prompt returns the prompt with the given label.
func (s SubMenu) Prompt(label string) (Prompt, bool) {
	for _, p := range s.Prompts {
		if p.Label() == label {
			return p, true
		}
	}
	return nil, false
}

// Menu groups the sub-menus offered for one configurable operation of a block.
type Menu struct {
	Name     string
	SubMenus []SubMenu
}

// SubMenu returns the sub-menu with the given name.
func (m Menu) SubMenu(name string) (SubMenu, bool) {
	for _, s := range m.SubMenus {
		if s.Name == name {
			return s, true
		}
	}
	return SubMenu{}, false
}

// Catalog maps block kinds to their ordered menus.
type Catalog struct {
	kinds map[domain.BlockKind][]Menu
}

// NewCatalog builds a catalog from menus per kind. Callers must not mutate
// the menus afterwards.
func NewCatalog(kinds map[domain.BlockKind][]Menu) *Catalog {
	c := &Catalog{kinds: make(map[domain.BlockKind][]Menu, len(kinds))}
	for k, menus := range kinds {
		c.kinds[k] = menus
	}
	return c
}

// Kinds returns the block kinds the catalog declares, conditions first.
func (c *Catalog) Kinds() []domain.BlockKind {
	var out []domain.BlockKind
	for _, k := range []domain.BlockKind{domain.KindCondition, domain.KindAction} {
		if _, ok := c.kinds[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Menus returns the menus declared for a kind, in declaration order.
func (c *Catalog) Menus(kind domain.BlockKind) []Menu {
	if c == nil {
		return nil
	}
	return c.kinds[kind]
}

// Menu returns a menu of a kind by name.
func (c *Catalog) Menu(kind domain.BlockKind, name string) (Menu, bool) {
	for _, m := range c.Menus(kind) {
		if m.Name == name {
			return m, true
		}
	}
	return Menu{}, false
}

// Lookup resolves the sub-menu of a menu for a kind.
func (c *Catalog) Lookup(kind domain.BlockKind, menu, subMenu string) (SubMenu, bool) {
	m, ok := c.Menu(kind, menu)
	if !ok {
		return SubMenu{}, false
	}
	return m.SubMenu(subMenu)
}
