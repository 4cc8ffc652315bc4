// Package transform turns a description document into the folder/client/model
// structure that the TypeScript emitter renders.
package transform

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mark3labs/swagger2ts/internal/spec"
)

// Option configures a transformation pass.
type Option func(*config)

type config struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[spec.HttpMethod]struct{}
	pathRes     []*regexp.Regexp
	strictNames bool
	logger      *log.Logger
	err         error
}

// WithIncludeTags keeps only operations that have at least one of the given
// tags. Untagged operations are matched by their folder name.
func WithIncludeTags(tags []string) Option {
	return func(c *config) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes operations that have any of the given tags.
func WithExcludeTags(tags []string) Option {
	return func(c *config) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only operations using one of the provided HTTP methods.
func WithMethods(methods []spec.HttpMethod) Option {
	return func(c *config) {
		for _, m := range methods {
			if c.methods == nil {
				c.methods = make(map[spec.HttpMethod]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only operations whose path matches at least one of
// the regular expressions. An invalid pattern fails the pass.
func WithPathPatterns(patterns []string) Option {
	return func(c *config) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				if c.err == nil {
					c.err = fmt.Errorf("invalid path pattern %q: %w", p, err)
				}
				continue
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// WithStrictNames turns action name collisions into DuplicateAction failures.
func WithStrictNames(strict bool) Option {
	return func(c *config) { c.strictNames = strict }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Transform runs the grouping and model passes over doc. It either returns a
// complete Result or an error; a failure leaves no partial output.
func Transform(ctx context.Context, doc *spec.Document, opts ...Option) (*Result, error) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}
	if cfg.logger == nil {
		cfg.logger = log.New(io.Discard)
	}
	if doc == nil || doc.Paths == nil {
		return nil, &TransformError{Code: MalformedDocument, Message: "document has no paths"}
	}

	g := newGrouper()
	for _, item := range doc.Paths.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if item == nil {
			continue
		}
		if !strings.HasPrefix(item.Path, "/") {
			return nil, &TransformError{
				Code:    MalformedDocument,
				Message: "path must start with \"/\"",
				Path:    item.Path,
			}
		}
		if !cfg.allowPath(item.Path) {
			continue
		}
		for _, op := range item.Operations {
			if err := addOperation(cfg, g, doc, item, op); err != nil {
				return nil, err
			}
		}
	}

	b := &modelBuilder{schemas: doc.ComponentSchemas(), logger: cfg.logger}
	for _, f := range g.folders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := b.build(f); err != nil {
			return nil, err
		}
	}

	return &Result{
		Title:      strings.TrimSpace(doc.Info.Title),
		Version:    strings.TrimSpace(doc.Info.Version),
		Folders:    g.folders,
		Collisions: g.collisions,
	}, nil
}

func addOperation(cfg *config, g *grouper, doc *spec.Document, item *spec.PathItem, op *spec.Operation) error {
	if !cfg.allowMethod(op.Method) {
		return nil
	}
	folder := folderName(item.Path)
	tags := effectiveTags(op.Tags, folder)
	if !cfg.allowTags(tags) {
		return nil
	}

	params, err := Parameters(doc, item, op)
	if err != nil {
		return atOperation(err, item.Path, string(op.Method))
	}
	ret, err := ReturnType(op)
	if err != nil {
		return atOperation(err, item.Path, string(op.Method))
	}

	action := Action{
		Name:        actionName(item.Path),
		HttpMethod:  op.Method,
		Path:        item.Path,
		OperationID: op.OperationID,
		Parameters:  params,
		ReturnType:  ret,
	}
	client := clientFileName(op.Tags, folder)
	cfg.logger.Debug("action", "folder", folder, "client", client, "name", action.Name, "method", op.Method, "path", item.Path)

	collision, collided := g.add(folder, client, action)
	if !collided {
		return nil
	}
	if cfg.strictNames {
		return &TransformError{
			Code:    DuplicateAction,
			Message: fmt.Sprintf("action %s in %s/%s is already derived from %s", collision.Action, collision.Folder, collision.ClientFile, collision.First),
			Path:    item.Path,
			Method:  string(op.Method),
		}
	}
	cfg.logger.Debug("name collision", "folder", folder, "client", client, "name", action.Name, "first", collision.First, "second", collision.Second)
	return nil
}

func (c *config) allowMethod(m spec.HttpMethod) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *config) allowPath(path string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (c *config) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}
