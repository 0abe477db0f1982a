package tfsource

import (
	"path/filepath"
	"slices"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultResolverTTL is how long a computed file set stays cached.
const DefaultResolverTTL = 10 * time.Minute

// Resolver answers which files a configuration file depends on: the files
// defining every resource its resources reference, transitively.
type Resolver struct {
	project *Project
	// byAddr maps a resource address to the file defining it.
	byAddr map[string]string
	cache  *gocache.Cache
}

// NewResolver indexes p. A ttl of zero uses DefaultResolverTTL.
func NewResolver(p *Project, ttl time.Duration) *Resolver {
	if ttl <= 0 {
		ttl = DefaultResolverTTL
	}
	byAddr := make(map[string]string, len(p.Resources))
	for _, r := range p.Resources {
		byAddr[r.Address()] = r.File
	}
	return &Resolver{
		project: p,
		byAddr:  byAddr,
		cache:   gocache.New(ttl, 2*ttl),
	}
}

// DependentFiles returns the files path depends on, joined with the project
// root and sorted. path may be absolute or relative to the root; it is never
// part of its own result. Unknown files yield nil.
func (r *Resolver) DependentFiles(path string) []string {
	rel := r.relative(path)
	if v, ok := r.cache.Get(rel); ok {
		if files, ok := v.([]string); ok {
			return slices.Clone(files)
		}
	}

	seen := map[string]bool{rel: true}
	queue := []string{rel}
	var deps []string
	for len(queue) > 0 {
		file := queue[0]
		queue = queue[1:]
		for _, target := range r.referencedFiles(file) {
			if seen[target] {
				continue
			}
			seen[target] = true
			deps = append(deps, target)
			queue = append(queue, target)
		}
	}

	out := make([]string, 0, len(deps))
	for _, f := range deps {
		out = append(out, filepath.Join(r.project.Root, filepath.FromSlash(f)))
	}
	slices.Sort(out)
	if len(out) == 0 {
		out = nil
	}
	r.cache.Set(rel, out, gocache.DefaultExpiration)
	return slices.Clone(out)
}

// Invalidate drops every cached result.
func (r *Resolver) Invalidate() { r.cache.Flush() }

// referencedFiles lists the files defining resources referenced from file.
func (r *Resolver) referencedFiles(file string) []string {
	var out []string
	for _, res := range r.project.Resources {
		if res.File != file {
			continue
		}
		for _, addrs := range res.Refs {
			for _, addr := range addrs {
				if f, ok := r.byAddr[addr]; ok && !slices.Contains(out, f) {
					out = append(out, f)
				}
			}
		}
	}
	return out
}

// relative maps path to the root-relative slash form used in Resource.File.
func (r *Resolver) relative(path string) string {
	root := filepath.Clean(r.project.Root)
	path = filepath.Clean(path)
	if filepath.IsAbs(path) && !filepath.IsAbs(root) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
