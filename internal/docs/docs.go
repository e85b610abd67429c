// Package docs holds the built-in documentation shown by `augmentor docs`.
package docs

import (
	"fmt"
	"strings"
)

// Topic is one documentation article.
type Topic struct {
	Name    string // slug used as the CLI argument
	Title   string
	Summary string // one line, shown in the topic list
	Content string // plain text, no ANSI
}

// All returns every topic in display order.
func All() []Topic {
	return topics
}

// Names returns the topic slugs in display order.
func Names() []string {
	names := make([]string, len(topics))
	for i, t := range topics {
		names[i] = t.Name
	}
	return names
}

// Get looks up a topic by name, case-insensitively.
func Get(name string) (Topic, error) {
	for _, t := range topics {
		if strings.EqualFold(t.Name, name) {
			return t, nil
		}
	}
	return Topic{}, fmt.Errorf("unknown topic %q (available: %s); run 'augmentor docs' for summaries",
		name, strings.Join(Names(), ", "))
}
