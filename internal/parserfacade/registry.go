package parserfacade

import (
	"fmt"
	"os"
	"sync"

	"github.com/polyglotscan/engine/internal/ir"
)

// maxPoolSize bounds the number of pooled parser handles per language: a
// grammar instance is reusable but not concurrently usable, so the registry
// lends a handle and expects it back; callers must not retain it beyond
// one parse.
const maxPoolSize = 10

// Registry dispatches Parse calls to the front-end registered for a file's
// language, lending pooled parser handles rather than sharing one instance
// across goroutines.
type Registry struct {
	mu      sync.Mutex
	pools   map[string][]Parser
	factory map[string]func() Parser
}

// NewRegistry builds a registry with the built-in front-ends registered.
func NewRegistry() *Registry {
	r := &Registry{
		pools:   make(map[string][]Parser),
		factory: make(map[string]func() Parser),
	}
	r.Register("bash", func() Parser { return NewBashParser() })
	r.Register("yaml", func() Parser { return NewConfigParser("yaml") })
	r.Register("json", func() Parser { return NewConfigParser("json") })
	r.Register("terraform", func() Parser { return NewConfigParser("terraform") })
	for _, lang := range []string{"python", "javascript", "typescript", "java", "go", "ruby", "php", "generic"} {
		lang := lang
		r.Register(lang, func() Parser { return NewGenericParser(lang) })
	}
	return r
}

// Register installs a front-end factory for a language tag.
func (r *Registry) Register(language string, factory func() Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory[language] = factory
}

// lease borrows a parser handle for language, creating one if the pool is
// empty or the language is unpooled.
func (r *Registry) lease(language string) (Parser, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if pool := r.pools[language]; len(pool) > 0 {
		p := pool[len(pool)-1]
		r.pools[language] = pool[:len(pool)-1]
		return p, true
	}
	factory, ok := r.factory[language]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// release returns a parser handle to its pool, bounded at maxPoolSize.
func (r *Registry) release(language string, p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pools[language]) >= maxPoolSize {
		return
	}
	r.pools[language] = append(r.pools[language], p)
}

// Parse reads path, infers (or is given) a language, and dispatches to the
// registered front-end. The returned FileIR has SuppressedLines populated
// when opts.SuppressComment is set.
func (r *Registry) Parse(path string, language string, opts Options) (*ir.FileIR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if language == "" {
		language = languageForPath(path)
	}

	parser, ok := r.lease(language)
	if !ok {
		parser, ok = r.lease("generic")
		if !ok {
			return nil, fmt.Errorf("no parser registered for language %q", language)
		}
	}
	defer r.release(language, parser)

	fileIR, err := parser.Parse(path, string(data), opts)
	if err != nil {
		return nil, err
	}
	applySuppression(fileIR, fileIR.Source, opts.SuppressComment)
	return fileIR, nil
}
