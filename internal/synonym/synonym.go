// Package synonym holds the canonical-name → alias groups used to bridge
// regional common names between the species and assessment registries.
package synonym

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Group ties one canonical species name to its known aliases. The canonical
// name is itself a member of the group for matching purposes.
type Group struct {
	Name    string   `yaml:"name" json:"name"`
	Aliases []string `yaml:"aliases" json:"aliases"`
}

// AllNames returns the canonical name followed by the aliases.
func (g Group) AllNames() []string {
	names := make([]string, 0, len(g.Aliases)+1)
	names = append(names, g.Name)
	names = append(names, g.Aliases...)
	return names
}

// Table is an ordered list of synonym groups. Matching tries groups in table
// order. Tables are read-only after construction; callers inject them into the
// matcher rather than reaching for a package global.
type Table []Group

// Default returns the built-in table covering the common South Atlantic and
// Gulf regional ambiguities.
func Default() Table {
	return Table{
		{Name: "dolphin", Aliases: []string{"mahi mahi", "mahi-mahi", "dorado", "dolphinfish"}},
		{Name: "king mackerel", Aliases: []string{"kingfish"}},
		{Name: "spanish mackerel", Aliases: []string{"spanish"}},
		{Name: "spiny lobster", Aliases: []string{"lobster", "crawfish"}},
		{Name: "cobia", Aliases: []string{"ling", "lemonfish"}},
		{Name: "red drum", Aliases: []string{"redfish", "channel bass"}},
		{Name: "greater amberjack", Aliases: []string{"amberjack"}},
		{Name: "almaco jack", Aliases: []string{"almaco"}},
		{Name: "banded rudderfish", Aliases: []string{"rudderfish"}},
		{Name: "gag", Aliases: []string{"gag grouper"}},
		{Name: "scamp", Aliases: []string{"scamp grouper"}},
		{Name: "goliath grouper", Aliases: []string{"jewfish"}},
		{Name: "snowy grouper", Aliases: []string{"snowy"}},
		{Name: "black sea bass", Aliases: []string{"sea bass", "blackfish"}},
		{Name: "vermilion snapper", Aliases: []string{"beeliner"}},
		{Name: "yellowtail snapper", Aliases: []string{"yellowtail"}},
		{Name: "mutton snapper", Aliases: []string{"muttonfish"}},
		{Name: "red porgy", Aliases: []string{"pink snapper"}},
		{Name: "gray triggerfish", Aliases: []string{"triggerfish", "grey triggerfish"}},
		{Name: "hogfish", Aliases: []string{"hog snapper"}},
		{Name: "wahoo", Aliases: []string{"ono"}},
		{Name: "tripletail", Aliases: []string{"buoy fish"}},
	}
}

// LoadFile reads a synonym table from a YAML file. The file holds a list of
// {name, aliases} entries in the order they should be tried.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "synonym: read %s", path)
	}
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, eris.Wrapf(err, "synonym: parse %s", path)
	}
	return table, nil
}

// Load returns the table at path, or the built-in default when path is empty.
func Load(path string) (Table, error) {
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}
