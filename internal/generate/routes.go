package generate

import (
	"fmt"
	"strings"
)

const storyPrefix = "user-wants-to-"

const routesTemplate = `const express = require('express');
const app = express();

%s

module.exports = app;
`

// RoutePath slugs a user story into a route segment: lowercase, spaces to
// hyphens, then a single leading "user-wants-to-" removed.
func RoutePath(story string) string {
	return strings.TrimPrefix(hyphenate(lower(story)), storyPrefix)
}

func RouteStubs(stories []string) []RouteStub {
	stubs := make([]RouteStub, 0, len(stories))
	for _, story := range stories {
		path := RoutePath(story)
		stubs = append(stubs, RouteStub{
			StoryText:   story,
			RoutePath:   path,
			HandlerBody: fmt.Sprintf("res.send('Response for %s');", path),
		})
	}
	return stubs
}

func (r RouteStub) render() string {
	return fmt.Sprintf("\n// User Story: %s\napp.get('/%s', (req, res) => {\n  %s\n});\n",
		r.StoryText, r.RoutePath, r.HandlerBody)
}

// SynthesizeRoutes renders a module exporting an Express app with one GET
// stub per story, in input order. Stories are neither deduplicated nor
// checked for colliding paths.
func SynthesizeRoutes(stories []string) string {
	stubs := RouteStubs(stories)
	fragments := make([]string, 0, len(stubs))
	for _, s := range stubs {
		fragments = append(fragments, s.render())
	}
	return fmt.Sprintf(routesTemplate, strings.Join(fragments, "\n"))
}
