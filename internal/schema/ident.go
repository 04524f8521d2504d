package schema

import "strings"

// Separator joins topic and member names into canonical identifiers.
//
// No escaping is performed: a separator embedded in a topic or field name
// can make two distinct paths render to the same id. Accepted limitation.
const Separator = "/"

// FormatPath renders a path as its member names joined by Separator, for
// display and labels.
func FormatPath(p MemberPath) string {
	return strings.Join(p.Names(), Separator)
}

// SourceID builds the canonical key for a (topic, field) pair. Equal inputs
// always produce equal ids; the id is what config persistence and plot
// layers use to deduplicate a scalar signal across sessions.
func SourceID(topic string, names []string) string {
	parts := make([]string, 0, len(names)+1)
	parts = append(parts, topic)
	parts = append(parts, names...)
	return strings.Join(parts, Separator)
}

// SourceIDForPath is SourceID over a resolved path.
func SourceIDForPath(topic string, p MemberPath) string {
	return SourceID(topic, p.Names())
}
