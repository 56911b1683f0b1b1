package lazyref

import "log/slog"

type (
	// AttrOption configures an attribute at declaration time.
	AttrOption interface{ applyToAttr(*attrOptions) }

	NameOption         struct{ name string }
	DocOption          struct{ doc string }
	LogOption          struct{ l *slog.Logger }
	MetricsOption      struct{ m AttrMetrics }
	SingleflightOption struct{}
	SlotOption         struct{ accessor any }
)

// WithName overrides the attribute name derived from the loader's function
// name. Required for anonymous loaders, whose runtime names are not stable
// across refactors.
func WithName(name string) NameOption { return NameOption{name: name} }

// WithDoc attaches documentation text, readable via [Attr.Doc] without an
// owner instance.
func WithDoc(doc string) DocOption { return DocOption{doc: doc} }

// WithLog sets the logger. Defaults to slog.Default().
func WithLog(l *slog.Logger) LogOption { return LogOption{l: l} }

// WithMetrics sets the metrics implementation. Defaults to no-op.
func WithMetrics(m AttrMetrics) MetricsOption { return MetricsOption{m: m} }

// WithSingleflight deduplicates concurrent loads per slot: at most one
// loader invocation is in flight per slot, and racing readers share its
// result or error. Without it, racing misses may each invoke the loader;
// the last install wins and every caller still receives a usable value.
func WithSingleflight() SingleflightOption { return SingleflightOption{} }

// WithSlot stores slots on a declared owner field instead of the
// attribute's internal side table. The accessor must return a non-nil
// slot, allocating the field on first use, and must have type
// func(*O) *Slot[V] for the attribute's owner and value types; [New]
// panics otherwise.
//
// Declared-field slots serialize with their owner through [Slot]'s JSON
// methods. They are also the mode to use when slot arguments strongly
// reference the owner itself, which in side-table mode would keep the
// owner reachable forever.
func WithSlot[O, V any](fn func(*O) *Slot[V]) SlotOption { return SlotOption{accessor: fn} }

func (o NameOption) applyToAttr(c *attrOptions)         { c.name = o.name }
func (o DocOption) applyToAttr(c *attrOptions)          { c.doc = o.doc }
func (o LogOption) applyToAttr(c *attrOptions)          { c.log = o.l }
func (o MetricsOption) applyToAttr(c *attrOptions)      { c.metrics = o.m }
func (o SingleflightOption) applyToAttr(c *attrOptions) { c.singleflight = true }
func (o SlotOption) applyToAttr(c *attrOptions)         { c.slotAccessor = o.accessor }

type attrOptions struct {
	name         string
	doc          string
	log          *slog.Logger
	metrics      AttrMetrics
	singleflight bool
	slotAccessor any
}
