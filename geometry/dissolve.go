package geometry

import "github.com/twpayne/go-geos"

// CascadedUnion unions geometries pairwise, halving the input at each
// level. The inputs are not modified or destroyed.
func CascadedUnion(geometries []*geos.Geom) *geos.Geom {
	switch len(geometries) {
	case 0:
		return nil
	case 1:
		return geometries[0].Clone()
	}

	mid := len(geometries) / 2
	left := CascadedUnion(geometries[:mid])
	right := CascadedUnion(geometries[mid:])

	result := left.Union(right)

	// Intermediate results are ours to free.
	left.Destroy()
	right.Destroy()

	return result
}

// Group is one dissolved outline.
type Group struct {
	Key  string
	Geom *geos.Geom
}

// DissolveBy unions the geometries sharing a key. Groups are returned
// in order of first appearance. Empty keys and nil geometries are
// skipped. A group whose union fails is dropped and reported through
// failed.
func DissolveBy(keys []string, geoms []*geos.Geom) (groups []Group, failed []string) {
	order := make([]string, 0)
	members := make(map[string][]*geos.Geom)
	for i, key := range keys {
		if key == "" || i >= len(geoms) || geoms[i] == nil {
			continue
		}
		if _, seen := members[key]; !seen {
			order = append(order, key)
		}
		members[key] = append(members[key], geoms[i])
	}

	for _, key := range order {
		union, ok := safeUnion(members[key])
		if !ok {
			failed = append(failed, key)
			continue
		}
		groups = append(groups, Group{Key: key, Geom: union})
	}
	return groups, failed
}

func safeUnion(geoms []*geos.Geom) (union *geos.Geom, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			union, ok = nil, false
		}
	}()
	union = CascadedUnion(geoms)
	return union, union != nil
}
