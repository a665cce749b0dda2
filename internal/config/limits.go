package config

const (
	// MaxFolderNameLength is the maximum length for folder names.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255).
	MaxFolderNameLength = 255

	// MaxResourceNameLength is the maximum length for resource names.
	// Same as folder names for consistency.
	MaxResourceNameLength = 255

	// MaxDescriptionLength is the maximum length for resource descriptions.
	MaxDescriptionLength = 2000

	// RecentResourcesLimit is how many resources the recents query returns.
	RecentResourcesLimit = 12

	// MaxFuzzyResults caps the number of fuzzy search hits returned.
	MaxFuzzyResults = 50
)
