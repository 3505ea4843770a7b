package cache

// Keyer generates cache keys for the documents tilerow fetches.
type Keyer interface {
	// CatalogKey generates a key for a root catalog document.
	CatalogKey(url string) string

	// RefsetKey generates a key for a refset document.
	RefsetKey(url string) string
}

// DefaultKeyer derives keys from a hash of the document URL.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// CatalogKey generates a key for a root catalog document.
func (DefaultKeyer) CatalogKey(url string) string {
	return hashKey("catalog", url)
}

// RefsetKey generates a key for a refset document.
func (DefaultKeyer) RefsetKey(url string) string {
	return hashKey("refset", url)
}

// ScopedKeyer wraps a Keyer with a prefix so several catalogs (or several
// environments of the same catalog) can share one Redis instance.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// CatalogKey generates a prefixed key for a root catalog document.
func (k *ScopedKeyer) CatalogKey(url string) string {
	return k.prefix + k.inner.CatalogKey(url)
}

// RefsetKey generates a prefixed key for a refset document.
func (k *ScopedKeyer) RefsetKey(url string) string {
	return k.prefix + k.inner.RefsetKey(url)
}
