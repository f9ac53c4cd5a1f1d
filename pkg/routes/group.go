package routes

import "net/http"

// Group organizes routes under a common prefix. Children inherit the prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds every route of the given groups to mux.
func Register(mux *http.ServeMux, groups ...Group) {
	walk("", groups, func(pattern string, r Route) {
		mux.HandleFunc(pattern, r.Handler)
	})
}

// Patterns lists the ServeMux pattern of every route in the given groups.
func Patterns(groups ...Group) []string {
	var out []string
	walk("", groups, func(pattern string, _ Route) {
		out = append(out, pattern)
	})
	return out
}

func walk(parent string, groups []Group, fn func(string, Route)) {
	for _, g := range groups {
		prefix := parent + g.Prefix
		for _, r := range g.Routes {
			fn(r.pattern(prefix), r)
		}
		walk(prefix, g.Children, fn)
	}
}
