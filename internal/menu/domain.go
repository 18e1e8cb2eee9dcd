// Package menu fetches and filters the per-principal navigation tree
// served by the clinic API.
package menu

// Item is one navigation entry. PermissionsRequired, when present, gates
// the item: every listed permission must be granted for it to survive
// filtering.
type Item struct {
	Label               string   `json:"label"`
	Route               string   `json:"route"`
	Icon                string   `json:"icon,omitempty"`
	PermissionsRequired []string `json:"permissions_required,omitempty"`
}

// Group is an ordered run of items under one heading.
type Group struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Menu is the principal-specific navigation tree. Group and item order is
// display order and survives filtering untouched.
type Menu struct {
	Groups []Group `json:"groups"`
}

// Empty reports whether the menu has no groups.
func (m Menu) Empty() bool {
	return len(m.Groups) == 0
}

// Flatten returns the union of every permissions_required string across
// all items, deduplicated, in first-seen order.
func Flatten(m Menu) []string {
	seen := make(map[string]struct{})
	var flattened []string
	for _, group := range m.Groups {
		for _, item := range group.Items {
			for _, perm := range item.PermissionsRequired {
				if _, ok := seen[perm]; ok {
					continue
				}
				seen[perm] = struct{}{}
				flattened = append(flattened, perm)
			}
		}
	}
	return flattened
}
