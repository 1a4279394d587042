package plm

import (
	"sort"
	"strings"
)

// PropertyPolicy declares which properties must be eagerly loaded on every
// object fetched through a session, keyed by remote type name.
//
// Without a policy, later on-demand property loads can fail for partially
// initialized objects; installing one up front makes every fetch complete.
type PropertyPolicy map[string][]string

// DefaultPolicy returns the property set the download pipeline relies on:
// object naming, item identifiers, revision identifiers and timestamps,
// dataset file references, and original file names.
//
// Kept intentionally narrow to limit server load.
func DefaultPolicy() PropertyPolicy {
	return PropertyPolicy{
		"Item":         {"item_id", "object_name"},
		"ItemRevision": {"item_revision_id", "object_name", "creation_date", "release_status_list"},
		"Dataset":      {"object_name", "object_type", "ref_list", "ref_names"},
		"ImanFile":     {"original_file_name"},
	}
}

// fingerprint returns a canonical string form of the policy, used to detect
// reapplication of an identical policy.
func (p PropertyPolicy) fingerprint() string {
	types := make([]string, 0, len(p))
	for t := range p {
		types = append(types, t)
	}
	sort.Strings(types)

	var b strings.Builder
	for _, t := range types {
		props := append([]string(nil), p[t]...)
		sort.Strings(props)
		b.WriteString(t)
		b.WriteByte(':')
		b.WriteString(strings.Join(props, ","))
		b.WriteByte(';')
	}
	return b.String()
}
