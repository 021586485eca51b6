package store

import "github.com/gosimple/slug"

// Slugify derives a lowercase, hyphen-separated identifier from a display
// name or title: runs of non-alphanumeric characters collapse to a single
// hyphen with no leading or trailing hyphens.
func Slugify(s string) string {
	return slug.Make(s)
}
