package mapping

import (
	"plxcli/pkg/contracts/domain"
)

// Resolve maps one header to its schema field path. Rules are tried in
// document order and each rule's patterns in their listed order; the first
// pattern that matches anywhere in the header decides. The second return
// reports whether any rule matched.
func (c *Config) Resolve(header string) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, r := range c.rules {
		for _, re := range r.patterns {
			if re.MatchString(header) {
				return r.field, true
			}
		}
	}
	return "", false
}

// BuildColumnMap resolves every header of a table, in column order, to a
// field binding. Headers no rule matches bind to themselves verbatim, so a
// nil Config yields a pure passthrough map. Duplicate headers keep their
// positions and resolve independently.
func (c *Config) BuildColumnMap(headers []string) domain.ResolvedFieldMap {
	bindings := make(domain.ResolvedFieldMap, 0, len(headers))
	for _, header := range headers {
		path := header
		if field, ok := c.Resolve(header); ok {
			path = field
		}
		bindings = append(bindings, domain.FieldBinding{Header: header, Path: path})
	}
	return bindings
}
