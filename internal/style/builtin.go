package style

import "github.com/use-agent/tinybrowser/internal/cssparse"

// builtinCSS is the engine's user-agent stylesheet, applied before any
// page rule (spec §4.9 step 6: "Initialize rules from a built-in
// stylesheet, then walk the DOM once").
const builtinCSS = `
h1 { font-size: 2em; font-weight: bold; }
h2 { font-size: 1.5em; font-weight: bold; }
h3 { font-size: 1.17em; font-weight: bold; }
h4 { font-size: 1em; font-weight: bold; }
h5 { font-size: 0.83em; font-weight: bold; }
h6 { font-size: 0.67em; font-weight: bold; }
b { font-weight: bold; }
strong { font-weight: bold; }
i { font-style: italic; }
em { font-style: italic; }
a { color: blue; }
a:visited { color: purple; }
pre { font-family: monospace; white-space: pre; }
code { font-family: monospace; }
small { font-size: 0.83em; }
`

// Builtin returns the parsed user-agent stylesheet rules, reparsed fresh
// on each call so tabs never share a slice. Resolve sorts its own copy
// and leaves the rules it is given unchanged.
func Builtin() []cssparse.Rule {
	return cssparse.Parse(builtinCSS)
}
