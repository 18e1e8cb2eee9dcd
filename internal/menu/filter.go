package menu

// FilterByPermissions returns the menu reduced to the items the granted
// set satisfies. Items with no required permissions always pass; items
// with requirements pass only when every one is granted. Groups whose
// filtered item list is empty are dropped entirely. Pure and total: the
// input menu is never mutated and relative order is preserved.
func FilterByPermissions(m Menu, granted []string) Menu {
	grantedSet := make(map[string]struct{}, len(granted))
	for _, perm := range granted {
		grantedSet[perm] = struct{}{}
	}

	var out Menu
	for _, group := range m.Groups {
		var kept []Item
		for _, item := range group.Items {
			if itemAllowed(item, grantedSet) {
				kept = append(kept, item)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out.Groups = append(out.Groups, Group{Label: group.Label, Items: kept})
	}
	return out
}

func itemAllowed(item Item, granted map[string]struct{}) bool {
	for _, required := range item.PermissionsRequired {
		if _, ok := granted[required]; !ok {
			return false
		}
	}
	return true
}
