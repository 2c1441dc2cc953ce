package repositories

// diffIDs returns what must be inserted and deleted to turn current into requested.
// Both outputs keep the order of their source slice and contain no duplicates.
func diffIDs(current, requested []uint64) (toAdd, toRemove []uint64) {
	currentSet := make(map[uint64]struct{}, len(current))
	for _, id := range current {
		currentSet[id] = struct{}{}
	}
	requestedSet := make(map[uint64]struct{}, len(requested))
	for _, id := range requested {
		if _, dup := requestedSet[id]; dup {
			continue
		}
		requestedSet[id] = struct{}{}
		if _, ok := currentSet[id]; !ok {
			toAdd = append(toAdd, id)
		}
	}
	removed := make(map[uint64]struct{})
	for _, id := range current {
		if _, ok := requestedSet[id]; ok {
			continue
		}
		if _, dup := removed[id]; dup {
			continue
		}
		removed[id] = struct{}{}
		toRemove = append(toRemove, id)
	}
	return toAdd, toRemove
}

// missingIDs returns the requested ids absent from found.
func missingIDs(requested, found []uint64) []uint64 {
	foundSet := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		foundSet[id] = struct{}{}
	}
	var missing []uint64
	for _, id := range requested {
		if _, ok := foundSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
