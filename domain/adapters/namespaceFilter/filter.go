package namespaceFilter

import "strings"

// DefaultNamespaces are the non-article namespaces of an English Wikipedia.
var DefaultNamespaces = []string{
	"File", "Category", "Special", "Talk", "Wikipedia", "Template", "Portal", "Help",
	"User", "Draft", "Module", "MediaWiki", "TimedText",
	"User_talk", "Wikipedia_talk", "File_talk", "Template_talk", "Help_talk",
	"Category_talk", "Portal_talk", "Draft_talk", "Module_talk",
}

// Filter drops links into namespaces that are not articles.
type Filter struct {
	prefixes []string
}

// New creates a Filter for the given namespaces, DefaultNamespaces if none are given.
func New(namespaces ...string) *Filter {
	if len(namespaces) == 0 {
		namespaces = DefaultNamespaces
	}
	prefixes := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		prefixes = append(prefixes, ns+":")
	}
	return &Filter{prefixes: prefixes}
}

// ShouldCrawl reports whether title, the part of the link after /wiki/, is an article.
func (f *Filter) ShouldCrawl(title string) bool {
	if title == "" {
		return false
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(title, prefix) {
			return false
		}
	}
	return true
}
