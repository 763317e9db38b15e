package cssparse

import "strings"

var borderStyles = map[string]bool{
	"none": true, "solid": true, "dashed": true, "dotted": true,
	"double": true, "groove": true, "ridge": true, "inset": true, "outset": true,
}

// ParseInlineStyle parses an element's inline style="..." attribute the
// same way a rule body is parsed, for the Style Resolver's "inline style
// merge last" step (spec §4.6). It returns the plain declarations and a
// merged map in which !important values overwrite plain ones.
func ParseInlineStyle(raw string) (plain map[string]string, merged map[string]string) {
	plain, important := parseDeclarations(raw)
	merged = make(map[string]string, len(plain)+len(important))
	for k, v := range plain {
		merged[k] = v
	}
	for k, v := range important {
		merged[k] = v
	}
	return plain, merged
}

// parseDeclarations parses "prop: value; ..." into a plain declaration
// map plus a separate important map, expanding the shorthands spec
// §4.5 names at parse time. Per-declaration failures are skipped
// silently (spec §7).
func parseDeclarations(body string) (plain map[string]string, important map[string]string) {
	plain = make(map[string]string)
	important = make(map[string]string)

	for _, stmt := range splitTopLevel(body, ';') {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		prop, val, ok := strings.Cut(stmt, ":")
		if !ok {
			continue // malformed declaration: skip
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		val = strings.TrimSpace(val)
		if prop == "" || val == "" {
			continue
		}

		isImportant := false
		if idx := strings.LastIndex(strings.ToLower(val), "!important"); idx >= 0 {
			isImportant = true
			val = strings.TrimSpace(val[:idx])
		}

		dest := plain
		if isImportant {
			dest = important
		}
		expandInto(dest, prop, val)
	}
	return plain, important
}

// expandInto writes prop:val into dest, expanding the four shorthands
// spec §4.5 names.
func expandInto(dest map[string]string, prop, val string) {
	switch prop {
	case "font":
		expandFont(dest, val)
	case "background":
		dest["background-color"] = strings.TrimSpace(val)
	case "border":
		expandBorder(dest, val)
	case "padding":
		expandPadding(dest, val)
	default:
		dest[prop] = val
	}
}

// expandFont: "font: [italic] [bold] [<pct>] [family...]" →
// font-style, font-weight, font-size, font-family.
func expandFont(dest map[string]string, val string) {
	fields := strings.Fields(val)
	style, weight, size := "normal", "normal", ""
	i := 0
	for i < len(fields) {
		switch strings.ToLower(fields[i]) {
		case "italic":
			style = "italic"
			i++
			continue
		case "bold":
			weight = "bold"
			i++
			continue
		}
		if strings.HasSuffix(fields[i], "%") || isLengthToken(fields[i]) {
			size = fields[i]
			i++
			continue
		}
		break
	}
	family := strings.Join(fields[i:], " ")
	dest["font-style"] = style
	dest["font-weight"] = weight
	if size != "" {
		dest["font-size"] = size
	}
	if family != "" {
		dest["font-family"] = family
	}
}

func isLengthToken(s string) bool {
	return strings.HasSuffix(s, "px") || strings.HasSuffix(s, "em") || strings.HasSuffix(s, "rem")
}

// expandBorder: "<width> <style> <color>" in any order, style from a
// known set → border-width, border-style, border-color.
func expandBorder(dest map[string]string, val string) {
	for _, f := range strings.Fields(val) {
		lower := strings.ToLower(f)
		switch {
		case borderStyles[lower]:
			dest["border-style"] = lower
		case isLengthToken(f) || isAllDigits(f):
			dest["border-width"] = f
		default:
			dest["border-color"] = f
		}
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// expandPadding: "v1 [v2 [v3 [v4]]]" → top/right/bottom/left per the
// 1/2/3/4-value CSS rule.
func expandPadding(dest map[string]string, val string) {
	fields := strings.Fields(val)
	var top, right, bottom, left string
	switch len(fields) {
	case 1:
		top, right, bottom, left = fields[0], fields[0], fields[0], fields[0]
	case 2:
		top, right, bottom, left = fields[0], fields[1], fields[0], fields[1]
	case 3:
		top, right, bottom, left = fields[0], fields[1], fields[2], fields[1]
	case 4:
		top, right, bottom, left = fields[0], fields[1], fields[2], fields[3]
	default:
		return
	}
	dest["padding-top"] = top
	dest["padding-right"] = right
	dest["padding-bottom"] = bottom
	dest["padding-left"] = left
}
