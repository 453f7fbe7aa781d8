// ABOUTME: Owner identity derived from configuration at process start
// ABOUTME: Decides whether a user key is the owner without prompting
package owner

import "strings"

// Identity is the set of keys that count as the owner. It is always the
// union of the configured handle, configured name, the empty-key fallback,
// the safe aliases, and the external-service id.
type Identity struct {
	Handle  string
	Name    string
	aliases map[string]bool
}

// NewIdentity builds the owner identity set. Aliases may redundantly include
// the handle; the union makes that harmless.
func NewIdentity(handle, name, serviceID string, safeAliases []string) *Identity {
	id := &Identity{
		Handle:  handle,
		Name:    name,
		aliases: map[string]bool{},
	}
	id.add(handle)
	id.add(name)
	id.add("")
	id.add(serviceID)
	for _, a := range safeAliases {
		id.add(a)
	}
	return id
}

func (id *Identity) add(key string) {
	id.aliases[strings.ToLower(strings.TrimSpace(key))] = true
}

// IsOwner reports whether the given user key resolves to the owner.
// Comparison is case-insensitive on the trimmed key.
func (id *Identity) IsOwner(key string) bool {
	return id.aliases[strings.ToLower(strings.TrimSpace(key))]
}
