package settings

import (
	"strconv"

	"alertprefs/internal/snapshot"
)

// Kind is the node type of an Item.
type Kind string

const (
	KindSwitch Kind = "switch"
	KindList   Kind = "list"
)

// Item is the render view of one node.
type Item struct {
	Key     string            `json:"key"`
	Kind    Kind              `json:"kind"`
	Value   string            `json:"value"`
	Enabled bool              `json:"enabled"`
	Visible bool              `json:"visible"`
	Choices []snapshot.Choice `json:"choices,omitempty"`
}

// Checked reports the value of a switch item.
func (it Item) Checked() bool {
	v, _ := strconv.ParseBool(it.Value)
	return v
}

// Items returns every node in display order, read as one consistent view.
func (m *Model) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]Item, 0, len(m.order))
	for _, key := range m.order {
		if sw, ok := m.switches[key]; ok {
			items = append(items, Item{
				Key:     key,
				Kind:    KindSwitch,
				Value:   strconv.FormatBool(sw.Checked()),
				Enabled: sw.Enabled(),
				Visible: m.snap.Visible(key),
			})
			continue
		}

		l := m.lists[key]
		values, labels := l.Values(), l.Entries()
		choices := make([]snapshot.Choice, len(values))
		for i, v := range values {
			choices[i] = snapshot.Choice{Value: v}
			if i < len(labels) {
				choices[i].Label = labels[i]
			}
		}
		items = append(items, Item{
			Key:     key,
			Kind:    KindList,
			Value:   l.Value(),
			Enabled: l.Enabled(),
			Visible: m.snap.Visible(key),
			Choices: choices,
		})
	}
	return items
}

// Item returns the render view of one node.
func (m *Model) Item(key string) (Item, bool) {
	for _, it := range m.Items() {
		if it.Key == key {
			return it, true
		}
	}
	return Item{}, false
}
