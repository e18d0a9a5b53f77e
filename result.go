package citycache

// Source tells where a query result came from.
type Source int

const (
	// SourceNotFound means neither the cache nor the index knew the city.
	SourceNotFound Source = iota
	// SourceCache means the result was served from the cache.
	SourceCache
	// SourceIndex means the cache missed and the index answered.
	SourceIndex
)

// String returns "cache", "index" or "not-found".
func (s Source) String() string {
	switch s {
	case SourceCache:
		return "cache"
	case SourceIndex:
		return "index"
	default:
		return "not-found"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the answer to a query.
type Result struct {
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
	Population  int64  `json:"population"`
	Source      Source `json:"source"`
}

// Found reports whether the city is in the dataset.
func (r Result) Found() bool {
	return r.Source != SourceNotFound
}

// Hit reports whether the result was served from the cache.
func (r Result) Hit() bool {
	return r.Source == SourceCache
}
