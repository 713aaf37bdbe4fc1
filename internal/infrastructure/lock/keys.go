// Package lock implementa inventory.ProductLocker: en proceso (KeyedMutex) o distribuido (Redis).
package lock

import "sort"

// normalize quita vacíos y duplicados y ordena, para que todos los llamadores
// adquieran las claves en el mismo orden.
func normalize(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
