package tsemitter

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mark3labs/swagger2ts/internal/spec"
	"github.com/mark3labs/swagger2ts/internal/transform"
)

// FactoryFile is the shared client factory interface at the output root.
const FactoryFile = "IHttpClientFactory.ts"

// verbOrder fixes the member order of the generated IHttpClient interface.
// get and post are always declared.
var verbOrder = []spec.HttpMethod{spec.GET, spec.POST, spec.PUT, spec.PATCH, spec.DELETE, spec.HEAD, spec.OPTIONS, spec.TRACE}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
}

// Render returns the TypeScript sources for res keyed by slash-separated
// path relative to the output directory. The same Result always renders to
// the same bytes.
func Render(res *transform.Result) (map[string][]byte, error) {
	if res == nil {
		return nil, fmt.Errorf("tsemitter: nil result")
	}
	files := make(map[string][]byte)

	factory, err := execute("factory", usedVerbs(res))
	if err != nil {
		return nil, err
	}
	files[FactoryFile] = factory

	for _, f := range res.Folders {
		for _, c := range f.ClientFiles {
			rel, err := relPath(f.Name, "clients", c.Name)
			if err != nil {
				return nil, err
			}
			out, err := renderClient(c)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", rel, err)
			}
			files[rel] = out
		}
		for _, m := range f.ModelFiles {
			rel, err := relPath(f.Name, "models", m.Name)
			if err != nil {
				return nil, err
			}
			out, err := renderModel(m)
			if err != nil {
				return nil, fmt.Errorf("render %s: %w", rel, err)
			}
			files[rel] = out
		}
	}
	return files, nil
}

func relPath(folder, kind, name string) (string, error) {
	rel := path.Join(folder, kind, name+".ts")
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", fmt.Errorf("tsemitter: %q escapes the output directory", rel)
	}
	return rel, nil
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("tsemitter: execute %s template: %w", name, err)
	}
	return buf.Bytes(), nil
}

func usedVerbs(res *transform.Result) []string {
	used := map[spec.HttpMethod]bool{spec.GET: true, spec.POST: true}
	for _, f := range res.Folders {
		for _, c := range f.ClientFiles {
			for _, a := range c.Actions {
				used[a.HttpMethod] = true
			}
		}
	}
	verbs := make([]string, 0, len(verbOrder))
	for _, m := range verbOrder {
		if used[m] {
			verbs = append(verbs, string(m))
		}
	}
	return verbs
}

type clientView struct {
	Name    string
	Imports []string
	Methods []methodView
}

type methodView struct {
	Name      string
	Signature string
	Return    string
	Verb      string
	URL       string
	Payload   string
}

type paramView struct {
	Key      string
	Local    string
	Type     string
	Required bool
}

// entry is the destructuring (and payload) form of the parameter.
func (p paramView) entry() string {
	if p.Key == p.Local {
		return p.Local
	}
	return p.Key + ": " + p.Local
}

func renderClient(c *transform.ClientFile) ([]byte, error) {
	view := clientView{Name: c.Name, Imports: c.Imports}
	taken := make(map[string]bool, len(c.Actions))
	for _, a := range c.Actions {
		view.Methods = append(view.Methods, methodFor(a, uniqueName(a.Name, taken)))
	}
	return execute("client", view)
}

// uniqueName keeps colliding names apart (actions inside one class,
// parameter locals inside one method) by numbering later occurrences.
func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	taken[candidate] = true
	return candidate
}

func methodFor(a transform.Action, name string) methodView {
	params := make([]paramView, 0, len(a.Parameters))
	locals := make(map[string]bool, len(a.Parameters))
	keys := make(map[string]bool, len(a.Parameters))
	for _, p := range a.Parameters {
		view := paramView{
			Key:      propertyKey(p.Name),
			Local:    uniqueName(localName(p.Name), locals),
			Type:     p.Type,
			Required: p.Required,
		}
		// The same name in two locations ("id" in path and query) keys the
		// later one by its numbered local.
		if keys[view.Key] {
			view.Key = view.Local
		}
		keys[view.Key] = true
		params = append(params, view)
	}

	ret := a.ReturnType.Type
	if ret == "" {
		ret = "void"
	}
	return methodView{
		Name:      propertyKey(name),
		Signature: signature(params),
		Return:    ret,
		Verb:      string(a.HttpMethod),
		URL:       urlLiteral(a.Path, a.Parameters, params),
		Payload:   payload(params),
	}
}

func signature(params []paramView) string {
	switch len(params) {
	case 0:
		return ""
	case 1:
		return params[0].Local + optional(params[0].Required) + ": " + params[0].Type
	}
	entries := make([]string, 0, len(params))
	types := make([]string, 0, len(params))
	for _, p := range params {
		entries = append(entries, p.entry())
		types = append(types, p.Key+optional(p.Required)+": "+p.Type)
	}
	return "{ " + strings.Join(entries, ", ") + " }: { " + strings.Join(types, "; ") + " }"
}

func optional(required bool) string {
	if required {
		return ""
	}
	return "?"
}

// payload is the data argument: primitives travel wrapped in an object,
// a single model or array is sent as is.
func payload(params []paramView) string {
	switch len(params) {
	case 0:
		return ""
	case 1:
		p := params[0]
		switch p.Type {
		case "boolean", "number", "string":
			return "{ " + p.entry() + " }"
		default:
			return p.Local
		}
	}
	entries := make([]string, 0, len(params))
	for _, p := range params {
		entries = append(entries, p.entry())
	}
	return "{ " + strings.Join(entries, ", ") + " }"
}

// urlLiteral renders the path as a string literal, or as a template literal
// when a {placeholder} names one of the parameters.
func urlLiteral(p string, params []transform.Parameter, views []paramView) string {
	locals := make(map[string]string, len(params))
	for i, param := range params {
		if _, seen := locals[param.Name]; !seen || param.In == "path" {
			locals[param.Name] = views[i].Local
		}
	}
	interpolated := false
	escaped := strings.NewReplacer("\\", "\\\\", "`", "\\`", "${", "\\${").Replace(p)
	out := placeholderRe.ReplaceAllStringFunc(escaped, func(m string) string {
		local, ok := locals[m[1:len(m)-1]]
		if !ok {
			return m
		}
		interpolated = true
		return "${" + local + "}"
	})
	if interpolated {
		return "`" + out + "`"
	}
	return quote(p)
}

type modelView struct {
	Name    string
	Imports []string
	Fields  []fieldView
}

type fieldView struct {
	Key      string
	Type     string
	Required bool
	Value    string
}

func renderModel(m *transform.ModelFile) ([]byte, error) {
	view := modelView{Name: m.Name}
	if m.IsEnum {
		for _, f := range m.Fields {
			view.Fields = append(view.Fields, fieldView{Key: propertyKey(f.Name), Value: enumLiteral(f.Value)})
		}
		return execute("enum", view)
	}
	for _, imp := range m.Imports {
		if imp != m.Name {
			view.Imports = append(view.Imports, imp)
		}
	}
	for _, f := range m.Fields {
		view.Fields = append(view.Fields, fieldView{Key: propertyKey(f.Name), Type: f.Type, Required: f.Required})
	}
	return execute("interface", view)
}

func enumLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return quote(v)
	case bool:
		return quote(strconv.FormatBool(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(v)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return quote(fmt.Sprint(v))
	}
}

func quote(s string) string {
	return "'" + strings.NewReplacer("\\", "\\\\", "'", "\\'", "\n", "\\n", "\r", "\\r").Replace(s) + "'"
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// propertyKey quotes names that are not identifiers.
func propertyKey(name string) string {
	if isIdentifier(name) {
		return name
	}
	return quote(name)
}

// localName turns a parameter name into a usable variable name:
// "X-Request-Id" -> "xRequestId", "page[size]" -> "pageSize", "new" -> "new_".
func localName(name string) string {
	if isIdentifier(name) {
		if reservedWords[name] {
			return name + "_"
		}
		return name
	}
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !(r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r))
	})
	if len(parts) == 0 {
		return "param"
	}
	var b strings.Builder
	for i, part := range parts {
		runes := []rune(part)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		b.WriteString(string(runes))
	}
	out := b.String()
	if unicode.IsDigit([]rune(out)[0]) {
		out = "_" + out
	}
	if reservedWords[out] {
		out += "_"
	}
	return out
}
