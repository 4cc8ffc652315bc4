package transform

import (
	"strings"

	"github.com/mark3labs/swagger2ts/internal/naming"
)

const (
	actionSuffix     = "Async"
	clientFileSuffix = "Client"
	rootFolder       = "root"
)

func pathSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

// actionName is the last non-empty path segment plus the async suffix.
func actionName(path string) string {
	segs := pathSegments(path)
	if len(segs) == 0 {
		return rootFolder + actionSuffix
	}
	return segs[len(segs)-1] + actionSuffix
}

// folderName is the first non-empty path segment; "/" maps to "root".
func folderName(path string) string {
	segs := pathSegments(path)
	if len(segs) == 0 {
		return rootFolder
	}
	return segs[0]
}

// effectiveTags returns the declared tags, or the folder name for untagged
// operations.
func effectiveTags(tags []string, folder string) []string {
	for _, t := range tags {
		if strings.TrimSpace(t) != "" {
			return tags
		}
	}
	return []string{folder}
}

// clientFileName derives the client file from the first usable tag.
func clientFileName(tags []string, folder string) string {
	for _, t := range effectiveTags(tags, folder) {
		if id := naming.Identifier(t); id != "" {
			return id + clientFileSuffix
		}
	}
	return naming.Identifier(folder) + clientFileSuffix
}

// grouper appends actions to their folder and client file, tracking folder
// discovery order and name collisions.
type grouper struct {
	folders    []*Folder
	byName     map[string]*Folder
	firstPath  map[string]string
	collisions []NameCollision
}

func newGrouper() *grouper {
	return &grouper{
		byName:    make(map[string]*Folder),
		firstPath: make(map[string]string),
	}
}

func (g *grouper) folder(name string) *Folder {
	if f, ok := g.byName[name]; ok {
		return f
	}
	f := newFolder(name)
	g.byName[name] = f
	g.folders = append(g.folders, f)
	return f
}

// add appends action to folder/client and reports a collision when the
// client file already holds an action with the same name.
func (g *grouper) add(folder, client string, action Action) (NameCollision, bool) {
	f := g.folder(folder)
	c := f.clientFile(client)

	key := folder + "/" + client + "/" + action.Name
	where := strings.ToUpper(string(action.HttpMethod)) + " " + action.Path
	var (
		collision NameCollision
		collided  bool
	)
	if first, seen := g.firstPath[key]; seen {
		collision = NameCollision{
			Folder:     folder,
			ClientFile: client,
			Action:     action.Name,
			First:      first,
			Second:     where,
		}
		collided = true
		g.collisions = append(g.collisions, collision)
	} else {
		g.firstPath[key] = where
	}

	c.Actions = append(c.Actions, action)
	for _, p := range action.Parameters {
		c.addImports(p.ImportType)
	}
	c.addImports(action.ReturnType.ImportType)
	return collision, collided
}
