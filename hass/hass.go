// Package hass renders Broadlink codes as Home Assistant switch
// configuration.
package hass

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one switch.
type Entry struct {
	// FriendlyName is shown in the UI. The entity name is derived from it.
	FriendlyName string
	// Command is the base64 Broadlink packet sent when the switch is turned
	// on.
	Command string
}

var entityReplacer = strings.NewReplacer(
	" ", "_",
	":", "_",
	"+", "_plus_",
	"-", "_minus_",
)

// EntityName turns text into an entity name: lower case, separators and signs
// spelled out with underscores.
func EntityName(text string) string {
	name := entityReplacer.Replace(strings.ToLower(text))
	name = strings.ReplaceAll(name, "__", "_")
	return strings.Trim(name, "_")
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func mapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

// Render returns two YAML documents: a switches mapping keyed by entity name
// and an entities list for grouping. Switches are sorted by entity name and a
// later entry with the same name replaces the earlier one. The entities list
// keeps input order and every entry, duplicates included.
func Render(entries []Entry) ([]byte, error) {
	byName := make(map[string]Entry, len(entries))
	entities := &yaml.Node{Kind: yaml.SequenceNode}
	for _, e := range entries {
		name := EntityName(e.FriendlyName)
		byName[name] = e
		entities.Content = append(entities.Content, scalar(name))
	}

	switches := mapping()
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		e := byName[name]
		switches.Content = append(switches.Content, scalar(name), mapping(
			scalar("command_on"), scalar(e.Command),
			scalar("friendlyname"), scalar(e.FriendlyName),
		))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for _, doc := range []*yaml.Node{
		mapping(scalar("switches"), switches),
		mapping(scalar("entities"), entities),
	} {
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("failed to render hass config: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to render hass config: %w", err)
	}
	return buf.Bytes(), nil
}
