package label

import "github.com/ostafen/partedit/internal/perr"

// Factory constructs a fresh Driver instance. Drivers are stateless between
// contexts, so the registry hands out a new one per probe/create rather than
// sharing a singleton.
type Factory func() Driver

// Registry is the ordered set of label drivers a Context may probe or
// create, in probe priority order (more specific formats, like GPT's
// protective-MBR check, generally need to run before the generic MBR
// driver would otherwise claim the sector).
//
// Shipping only MBR, GPT, and BSD disklabel drivers here is a deliberate
// scope decision: spec.md §2 names SGI and SUN label drivers as components
// but gives no layout detail for either, and no file in the reference pack
// implements them. Register is exported specifically so a SGI or SUN driver
// can be added later without touching this package.
type Registry struct {
	order   []string
	byName  map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Factory)}
}

// Register adds a driver factory under name, appending to the probe order.
func (r *Registry) Register(name string, f Factory) {
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = f
}

// New instantiates the driver registered under name.
func (r *Registry) New(name string) (Driver, error) {
	f, ok := r.byName[name]
	if !ok {
		return nil, perr.New(perr.Unsupported, "no label driver registered for %q", name)
	}
	return f(), nil
}

// Names returns the registered driver names in probe order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Probe tries each registered driver's Probe, in registration order, and
// returns the first one that claims ctx's device. It returns a NotFound
// error if none does.
func (r *Registry) Probe(ctx *Context) (Driver, error) {
	for _, name := range r.order {
		drv, err := r.New(name)
		if err != nil {
			return nil, err
		}
		ok, err := drv.Probe(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			return drv, nil
		}
	}
	path := "<unknown>"
	if ctx.Dev != nil {
		path = ctx.Dev.Path()
	}
	return nil, perr.New(perr.NotFound, "no recognized label on %s", path)
}
