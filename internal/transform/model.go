package transform

import "github.com/mark3labs/swagger2ts/internal/spec"

// Intermediate model handed from the engine to emitters and host tooling.

// TypeDescriptor is the canonical form of a resolved schema. Type may carry
// one or more "[]" suffixes; ImportType is the bare component name and is
// empty for primitives.
type TypeDescriptor struct {
	Type       string `json:"type,omitempty" yaml:"type,omitempty"`
	ImportType string `json:"importType,omitempty" yaml:"importType,omitempty"`
}

// IsVoid reports whether the descriptor stands for "no body".
func (t TypeDescriptor) IsVoid() bool { return t.Type == "" }

type Parameter struct {
	Name       string `json:"name" yaml:"name"`
	In         string `json:"in,omitempty" yaml:"in,omitempty"`
	Required   bool   `json:"required" yaml:"required"`
	Type       string `json:"type" yaml:"type"`
	ImportType string `json:"importType,omitempty" yaml:"importType,omitempty"`
}

type Action struct {
	Name        string          `json:"name" yaml:"name"`
	HttpMethod  spec.HttpMethod `json:"httpMethod" yaml:"httpMethod"`
	Path        string          `json:"path" yaml:"path"`
	OperationID string          `json:"operationId,omitempty" yaml:"operationId,omitempty"`
	Parameters  []Parameter     `json:"parameters" yaml:"parameters"`
	ReturnType  TypeDescriptor  `json:"returnType" yaml:"returnType"`
}

type ClientFile struct {
	Name    string   `json:"name" yaml:"name"`
	Actions []Action `json:"actions" yaml:"actions"`
	Imports []string `json:"imports" yaml:"imports"`
}

// addImports merges names into the import list, skipping empties and keeping
// first-seen order.
func (c *ClientFile) addImports(names ...string) {
	c.Imports = appendUnique(c.Imports, names...)
}

// Field is a model property, or for enums a symbolic name paired with its
// literal Value.
type Field struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type,omitempty" yaml:"type,omitempty"`
	Required bool   `json:"required" yaml:"required"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty"`
}

type ModelFile struct {
	Name    string   `json:"name" yaml:"name"`
	IsEnum  bool     `json:"isEnum" yaml:"isEnum"`
	Fields  []Field  `json:"fields" yaml:"fields"`
	Imports []string `json:"imports" yaml:"imports"`
}

// Folder groups client and model files under the first URL segment. Both
// collections keep discovery order and are indexed by name.
type Folder struct {
	Name        string        `json:"name" yaml:"name"`
	ClientFiles []*ClientFile `json:"clientFiles" yaml:"clientFiles"`
	ModelFiles  []*ModelFile  `json:"modelFiles" yaml:"modelFiles"`

	clients map[string]*ClientFile
	models  map[string]*ModelFile
}

func newFolder(name string) *Folder {
	return &Folder{
		Name:    name,
		clients: make(map[string]*ClientFile),
		models:  make(map[string]*ModelFile),
	}
}

// ClientFile returns the client file with the given name, if any.
func (f *Folder) ClientFile(name string) (*ClientFile, bool) {
	c, ok := f.clients[name]
	return c, ok
}

// Model returns the model file with the given name, if any.
func (f *Folder) Model(name string) (*ModelFile, bool) {
	m, ok := f.models[name]
	return m, ok
}

func (f *Folder) clientFile(name string) *ClientFile {
	if c, ok := f.clients[name]; ok {
		return c
	}
	c := &ClientFile{Name: name}
	f.clients[name] = c
	f.ClientFiles = append(f.ClientFiles, c)
	return c
}

// claimModel registers an empty model under name. It returns false when the
// name is already taken; the first registration wins.
func (f *Folder) claimModel(name string) (*ModelFile, bool) {
	if _, exists := f.models[name]; exists {
		return nil, false
	}
	m := &ModelFile{Name: name}
	f.models[name] = m
	f.ModelFiles = append(f.ModelFiles, m)
	return m, true
}

// NameCollision records two actions of one client file that derived the
// same name.
type NameCollision struct {
	Folder     string `json:"folder" yaml:"folder"`
	ClientFile string `json:"clientFile" yaml:"clientFile"`
	Action     string `json:"action" yaml:"action"`
	First      string `json:"first" yaml:"first"`
	Second     string `json:"second" yaml:"second"`
}

// Result is the output of one transformation pass.
type Result struct {
	Title      string          `json:"title,omitempty" yaml:"title,omitempty"`
	Version    string          `json:"version,omitempty" yaml:"version,omitempty"`
	Folders    []*Folder       `json:"folders" yaml:"folders"`
	Collisions []NameCollision `json:"collisions,omitempty" yaml:"collisions,omitempty"`
}

// Folder returns the folder with the given name, if any.
func (r *Result) Folder(name string) (*Folder, bool) {
	for _, f := range r.Folders {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func appendUnique(list []string, names ...string) []string {
	for _, n := range names {
		if n == "" {
			continue
		}
		seen := false
		for _, existing := range list {
			if existing == n {
				seen = true
				break
			}
		}
		if !seen {
			list = append(list, n)
		}
	}
	return list
}
