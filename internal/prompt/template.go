// Package prompt holds the feedback model's prompt templates and the
// {{variable}} renderer used to fill them.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Template is a named system/user prompt pair.
type Template struct {
	Name   string
	System string
	User   string
}

// Execute renders both halves of the template. Every variable used by
// either half must be supplied.
func (t Template) Execute(vars map[string]string) (system, user string, err error) {
	if system, err = Render(t.System, vars); err != nil {
		return "", "", fmt.Errorf("%s system prompt: %w", t.Name, err)
	}
	if user, err = Render(t.User, vars); err != nil {
		return "", "", fmt.Errorf("%s user prompt: %w", t.Name, err)
	}
	return system, user, nil
}

// Variables lists the distinct variables used by the template.
func (t Template) Variables() []string {
	return ExtractVariables(t.System + "\n" + t.User)
}

// Render replaces {{variable}} placeholders in the template with values
// from vars. Values are inserted verbatim and are not re-expanded.
func Render(template string, vars map[string]string) (string, error) {
	if missing := findMissingVars(template, vars); len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}

	return variablePattern.ReplaceAllStringFunc(template, func(match string) string {
		return vars[match[2:len(match)-2]]
	}), nil
}

// ExtractVariables returns the variable names found in the template in
// order of first appearance.
func ExtractVariables(template string) []string {
	matches := variablePattern.FindAllStringSubmatch(template, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if !seen[m[1]] {
			vars = append(vars, m[1])
			seen[m[1]] = true
		}
	}
	return vars
}

func findMissingVars(template string, vars map[string]string) []string {
	var missing []string
	for _, v := range ExtractVariables(template) {
		if _, ok := vars[v]; !ok {
			missing = append(missing, v)
		}
	}
	return missing
}
