package extract

import (
	"encoding/json"
	"path"
	"regexp"
	"strings"
)

// Framework identifies the web framework a project is built on.
type Framework string

const (
	FrameworkNone    Framework = ""
	FrameworkNext    Framework = "next"
	FrameworkNuxt    Framework = "nuxt"
	FrameworkAngular Framework = "angular"
	FrameworkSvelte  Framework = "svelte"
	FrameworkExpress Framework = "express"
	FrameworkFastify Framework = "fastify"
	FrameworkHono    Framework = "hono"
	FrameworkKoa     Framework = "koa"
	FrameworkReact   Framework = "react"
	FrameworkVue     Framework = "vue"
)

// frameworkDeps maps package names to frameworks in detection priority.
var frameworkDeps = []struct {
	pkgs []string
	fw   Framework
}{
	{[]string{"next"}, FrameworkNext},
	{[]string{"nuxt"}, FrameworkNuxt},
	{[]string{"@angular/core"}, FrameworkAngular},
	{[]string{"svelte", "@sveltejs/kit"}, FrameworkSvelte},
	{[]string{"express"}, FrameworkExpress},
	{[]string{"fastify"}, FrameworkFastify},
	{[]string{"hono"}, FrameworkHono},
	{[]string{"koa"}, FrameworkKoa},
	{[]string{"react"}, FrameworkReact},
	{[]string{"vue"}, FrameworkVue},
}

// DetectFramework inspects package.json content. Missing or malformed
// manifests yield FrameworkNone.
func DetectFramework(packageJSON []byte) Framework {
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if len(packageJSON) == 0 || json.Unmarshal(packageJSON, &pkg) != nil {
		return FrameworkNone
	}
	has := func(name string) bool {
		_, a := pkg.Dependencies[name]
		_, b := pkg.DevDependencies[name]
		return a || b
	}
	for _, fd := range frameworkDeps {
		for _, p := range fd.pkgs {
			if has(p) {
				return fd.fw
			}
		}
	}
	return FrameworkNone
}

// callStyle reports whether routes are declared as router method calls.
func (f Framework) callStyle() bool {
	switch f {
	case FrameworkExpress, FrameworkFastify, FrameworkHono, FrameworkNone:
		return true
	}
	return false
}

// Route is one HTTP endpoint.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Handler string `json:"handler,omitempty"`
}

var (
	callRouteRe    = regexp.MustCompile(`\b\w+\.(get|post|put|patch|delete|all)\s*\(\s*['"](/[^'"\n]*)['"]\s*(?:,\s*([A-Za-z_$][\w$]*)\s*\))?`)
	routeHandlerRe = regexp.MustCompile(`export\s+(?:(?:async\s+)?function\s+(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s*\(|const\s+(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)\s*=)`)
	routePrefixRe  = regexp.MustCompile(`^(?:src/)?(?:app|pages)/`)
	routeParamRe   = regexp.MustCompile(`^\[([^\]]+)\]$`)
	routeFileRe    = regexp.MustCompile(`^(?:route|page)\.(?:tsx|ts|jsx|js)$`)
)

// Routes extracts the HTTP routes declared by one file under the given
// framework's conventions.
func Routes(file, text string, fw Framework) []Route {
	switch {
	case fw == FrameworkNext:
		return nextRoutes(file, text)
	case fw.callStyle():
		return callRoutes(file, text)
	}
	return nil
}

func callRoutes(file, text string) []Route {
	var out []Route
	lines := newLineIndex(text)
	for _, m := range callRouteRe.FindAllStringSubmatchIndex(text, -1) {
		r := Route{
			Method: strings.ToUpper(text[m[2]:m[3]]),
			Path:   text[m[4]:m[5]],
			File:   file,
			Line:   lines.line(m[0]),
		}
		if m[6] >= 0 {
			r.Handler = text[m[6]:m[7]]
		}
		out = append(out, r)
	}
	return out
}

func nextRoutes(file, text string) []Route {
	base := path.Base(file)
	var out []Route

	if strings.HasPrefix(base, "route.") || strings.Contains(file, "api/") {
		lines := newLineIndex(text)
		urlPath := NextRoutePath(file)
		for _, m := range routeHandlerRe.FindAllStringSubmatchIndex(text, -1) {
			var method string
			if m[2] >= 0 {
				method = text[m[2]:m[3]]
			} else {
				method = text[m[4]:m[5]]
			}
			out = append(out, Route{
				Method:  method,
				Path:    urlPath,
				File:    file,
				Line:    lines.line(m[0]),
				Handler: method,
			})
		}
	}

	if strings.HasPrefix(base, "page.") {
		out = append(out, Route{
			Method:  "GET",
			Path:    NextRoutePath(file),
			File:    file,
			Handler: "Page",
		})
	}
	return out
}

// NextRoutePath derives the URL path of an app-router file: the directory
// segments below app/ become path segments, route groups "(name)" vanish,
// and "[param]" segments become ":param".
func NextRoutePath(file string) string {
	rel := routePrefixRe.ReplaceAllString(file, "")
	segs := strings.Split(rel, "/")

	last := segs[len(segs)-1]
	switch {
	case routeFileRe.MatchString(last):
		segs = segs[:len(segs)-1]
	case strings.Contains(last, "."):
		stem := strings.TrimSuffix(last, path.Ext(last))
		if stem == "index" {
			segs = segs[:len(segs)-1]
		} else {
			segs[len(segs)-1] = stem
		}
	}

	var parts []string
	for _, s := range segs {
		switch {
		case s == "":
		case strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"):
		default:
			parts = append(parts, routeParamRe.ReplaceAllString(s, ":$1"))
		}
	}
	return "/" + strings.Join(parts, "/")
}
