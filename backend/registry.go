package backend

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
)

// MemName is the name of the in-memory backend selected by an empty
// scheme.
const MemName = "mem"

type registration struct {
	name   string
	object ObjectFactory
	array  ArrayFactory
}

type association struct {
	name string
	re   *regexp.Regexp
}

// Registry maps backend names and request patterns to factories.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]*registration
	assocs   []association
	log      *slog.Logger
}

// NewRegistry returns a registry holding only the mem backend.
func NewRegistry() *Registry {
	r := &Registry{backends: map[string]*registration{}}
	if err := r.Register(MemName, NewMemStore().Factory()); err != nil {
		panic(err)
	}
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the process wide registry. Backends other than mem are
// added by explicit calls to Register, usually at program start.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = NewRegistry()
	})
	return defaultReg
}

type RegisterOption func(*regOpts)

type regOpts struct {
	array    ArrayFactory
	patterns []string
}

// WithArrayFactory sets the factory used by NewArray for the backend.
func WithArrayFactory(f ArrayFactory) RegisterOption {
	return func(o *regOpts) { o.array = f }
}

// WithPatterns associates regular expressions over request strings with
// the backend, as Associate does.
func WithPatterns(patterns ...string) RegisterOption {
	return func(o *regOpts) { o.patterns = append(o.patterns, patterns...) }
}

func (r *Registry) SetLogger(l *slog.Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.log = l
}

func (r *Registry) logger() *slog.Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.log == nil {
		return slog.Default()
	}
	return r.log
}

// Register adds or replaces the backend called name. Patterns given with
// WithPatterns are added to those already associated with name.
func (r *Registry) Register(name string, f ObjectFactory, opts ...RegisterOption) error {
	if name == "" || f == nil {
		return fmt.Errorf("register %q: name and factory are required", name)
	}
	o := &regOpts{}
	for _, opt := range opts {
		opt(o)
	}
	res, err := compile(o.patterns)
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	r.mu.Lock()
	r.backends[name] = &registration{name: name, object: f, array: o.array}
	for _, re := range res {
		r.assocs = append(r.assocs, association{name: name, re: re})
	}
	r.mu.Unlock()
	r.logger().Debug("registered backend", "name", name, "patterns", o.patterns)
	return nil
}

// Associate adds patterns for the registered backend name. Patterns are
// tried in the order they were associated.
func (r *Registry) Associate(name string, patterns ...string) error {
	res, err := compile(patterns)
	if err != nil {
		return fmt.Errorf("associate %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.backends[name]; !ok {
		return fmt.Errorf("associate: %w %q", ErrUnknownBackend, name)
	}
	for _, re := range res {
		r.assocs = append(r.assocs, association{name: name, re: re})
	}
	return nil
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		res = append(res, re)
	}
	return res, nil
}

// Names returns the registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]string, 0, len(r.backends))
	for name := range r.backends {
		res = append(res, name)
	}
	slices.Sort(res)
	return res
}

// Patterns returns the patterns associated with name in association
// order.
func (r *Registry) Patterns(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var res []string
	for _, a := range r.assocs {
		if a.name == name {
			res = append(res, a.re.String())
		}
	}
	return res
}

// Resolution is the result of resolving a request string.
type Resolution struct {
	// Name is the registered backend name.
	Name string
	// Scheme is the scheme or extension taken from the request.
	Scheme string
	// Locator is what the backend's Load and Save receive.
	Locator string

	reg *registration
}

// Resolve finds the backend for request.
//
// A request "scheme:rest" selects scheme and the locator rest, without a
// leading "//". A "file:" prefix is dropped first. Without a colon the
// scheme is the extension of the request and the locator is the whole
// request. An empty scheme selects mem. A scheme which is not a
// registered name is matched against the associated patterns.
func (r *Registry) Resolve(request string) (*Resolution, error) {
	res, err := r.resolve(request)
	if err != nil {
		if debug.Resolve() {
			debug.Logf("resolve %q: %v\n", request, err)
		}
		return nil, err
	}
	r.logger().Debug("resolved backend", "request", request, "backend", res.Name, "locator", res.Locator)
	return res, nil
}

func (r *Registry) resolve(request string) (*Resolution, error) {
	req := request
	if rest, ok := strings.CutPrefix(req, "file:"); ok {
		req = strings.TrimPrefix(rest, "//")
	}
	scheme, locator := splitScheme(req)

	r.mu.RLock()
	defer r.mu.RUnlock()
	name := scheme
	if scheme == "" {
		name = MemName
	}
	if reg, ok := r.backends[name]; ok {
		return &Resolution{Name: name, Scheme: scheme, Locator: locator, reg: reg}, nil
	}
	for _, a := range r.assocs {
		if !a.re.MatchString(req) {
			continue
		}
		reg, ok := r.backends[a.name]
		if !ok {
			continue
		}
		return &Resolution{Name: a.name, Scheme: scheme, Locator: req, reg: reg}, nil
	}
	return nil, fmt.Errorf("%w: scheme %q in %q", ErrUnknownBackend, scheme, request)
}

func splitScheme(req string) (scheme, locator string) {
	if i := strings.IndexByte(req, ':'); i >= 0 {
		return req[:i], strings.TrimPrefix(req[i+1:], "//")
	}
	base := req[strings.LastIndexByte(req, '/')+1:]
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		return base[i+1:], req
	}
	return "", req
}

// NewObject resolves request and creates a backend object bound to self.
func (r *Registry) NewObject(request string, self *entry.Entry) (Backend, *Resolution, error) {
	res, err := r.Resolve(request)
	if err != nil {
		return nil, nil, err
	}
	b, err := res.reg.object(self)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: create %s object: %w", ErrBackendIO, res.Name, err)
	}
	return b, res, nil
}

// NewArray creates an array bound to self using the array factory of the
// backend called name. Backends without one get an in-memory array.
func (r *Registry) NewArray(name string, self *entry.Entry) (entry.Array, error) {
	r.mu.RLock()
	reg, ok := r.backends[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	if reg.array == nil {
		return entry.NewArray(self), nil
	}
	a, err := reg.array(self)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s array: %w", ErrBackendIO, name, err)
	}
	return a, nil
}

// Load resolves uri and returns a new root entry holding a backend object
// populated from the resolved locator.
func (r *Registry) Load(uri string) (*entry.Entry, error) {
	root := entry.New()
	b, res, err := r.NewObject(uri, root)
	if err != nil {
		return nil, err
	}
	if err := root.SetObject(b); err != nil {
		return nil, err
	}
	if debug.Backend() {
		debug.Logf("load %s from %q\n", res.Name, res.Locator)
	}
	if err := b.Load(res.Locator); err != nil {
		return nil, fmt.Errorf("%w: load %q with %s: %w", ErrBackendIO, uri, res.Name, err)
	}
	r.logger().Debug("loaded", "uri", uri, "backend", res.Name, "size", b.Size())
	return root, nil
}

// Save resolves uri and persists e with the resolved backend.
func (r *Registry) Save(e *entry.Entry, uri string) error {
	b, res, err := r.NewObject(uri, e)
	if err != nil {
		return err
	}
	if debug.Backend() {
		debug.Logf("save %q with %s to %q\n", e.Path(), res.Name, res.Locator)
	}
	if err := b.Save(res.Locator); err != nil {
		return fmt.Errorf("%w: save %q with %s: %w", ErrBackendIO, uri, res.Name, err)
	}
	r.logger().Debug("saved", "uri", uri, "backend", res.Name)
	return nil
}

// Sync saves e back to uri. When e holds a backend object, typically the
// one installed by Load(uri), that object saves itself and can keep state
// from the load; otherwise Sync is Save.
func (r *Registry) Sync(e *entry.Entry, uri string) error {
	ov, ok := e.Value().(entry.ObjectValue)
	if !ok {
		return r.Save(e, uri)
	}
	b, ok := ov.Object.(Backend)
	if !ok || b.Self() != e {
		return r.Save(e, uri)
	}
	res, err := r.Resolve(uri)
	if err != nil {
		return err
	}
	if err := b.Save(res.Locator); err != nil {
		return fmt.Errorf("%w: sync %q: %w", ErrBackendIO, uri, err)
	}
	r.logger().Debug("synced", "uri", uri, "backend", res.Name)
	return nil
}

// Load loads uri with the default registry.
func Load(uri string) (*entry.Entry, error) { return Default().Load(uri) }

// Save saves e to uri with the default registry.
func Save(e *entry.Entry, uri string) error { return Default().Save(e, uri) }

// Register registers a backend with the default registry.
func Register(name string, f ObjectFactory, opts ...RegisterOption) error {
	return Default().Register(name, f, opts...)
}
