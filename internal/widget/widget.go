// Package widget provides the stateful controls driving the accessor:
// range sliders, dropdowns, numeric inputs and toggles. Each control
// holds a value and fires registered callbacks on change; the HTTP API
// mutates them through a name-keyed registry.
package widget

import (
	"fmt"
	"sort"
	"sync"
)

// Widget is a named control the registry can read and mutate. Set
// receives a decoded JSON value and validates it for the concrete
// control type.
type Widget interface {
	Name() string
	Value() interface{}
	Set(v interface{}) error
}

// RangeSlider holds an ordered (lo, hi) pair, used for the Sv display
// range.
type RangeSlider struct {
	name     string
	Lo, Hi   float64
	Min, Max float64
	onChange []func(lo, hi float64)
}

func NewRangeSlider(name string, min, max float64) *RangeSlider {
	return &RangeSlider{name: name, Lo: min, Hi: max, Min: min, Max: max}
}

func (w *RangeSlider) Name() string            { return w.name }
func (w *RangeSlider) Value() interface{}      { return []float64{w.Lo, w.Hi} }
func (w *RangeSlider) Range() (lo, hi float64) { return w.Lo, w.Hi }

func (w *RangeSlider) OnChange(fn func(lo, hi float64)) {
	w.onChange = append(w.onChange, fn)
}

func (w *RangeSlider) SetRange(lo, hi float64) error {
	if hi < lo {
		lo, hi = hi, lo
	}
	w.Lo, w.Hi = lo, hi
	for _, fn := range w.onChange {
		fn(lo, hi)
	}
	return nil
}

func (w *RangeSlider) Set(v interface{}) error {
	pair, ok := v.([]interface{})
	if !ok || len(pair) != 2 {
		return fmt.Errorf("%s: expected [lo, hi]", w.name)
	}
	lo, okLo := asFloat(pair[0])
	hi, okHi := asFloat(pair[1])
	if !okLo || !okHi {
		return fmt.Errorf("%s: expected numeric [lo, hi]", w.name)
	}
	return w.SetRange(lo, hi)
}

// Select holds one choice from a fixed option list.
type Select struct {
	name     string
	options  []string
	value    string
	onChange []func(string)
}

func NewSelect(name string, options []string, value string) *Select {
	return &Select{name: name, options: options, value: value}
}

func (w *Select) Name() string       { return w.name }
func (w *Select) Value() interface{} { return w.value }
func (w *Select) Selected() string   { return w.value }
func (w *Select) Options() []string  { return w.options }

func (w *Select) OnChange(fn func(string)) {
	w.onChange = append(w.onChange, fn)
}

func (w *Select) SetSelected(v string) error {
	found := false
	for _, opt := range w.options {
		if opt == v {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%s: invalid option %q, valid: %v", w.name, v, w.options)
	}
	w.value = v
	for _, fn := range w.onChange {
		fn(v)
	}
	return nil
}

func (w *Select) Set(v interface{}) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s: expected string", w.name)
	}
	return w.SetSelected(s)
}

// FloatInput holds a single float, used for the curtain height ratio.
type FloatInput struct {
	name     string
	value    float64
	onChange []func(float64)
}

func NewFloatInput(name string, value float64) *FloatInput {
	return &FloatInput{name: name, value: value}
}

func (w *FloatInput) Name() string       { return w.name }
func (w *FloatInput) Value() interface{} { return w.value }
func (w *FloatInput) Float() float64     { return w.value }

func (w *FloatInput) OnChange(fn func(float64)) {
	w.onChange = append(w.onChange, fn)
}

func (w *FloatInput) SetFloat(v float64) error {
	w.value = v
	for _, fn := range w.onChange {
		fn(v)
	}
	return nil
}

func (w *FloatInput) Set(v interface{}) error {
	f, ok := asFloat(v)
	if !ok {
		return fmt.Errorf("%s: expected number", w.name)
	}
	return w.SetFloat(f)
}

// IntInput holds a single integer, used for the histogram bin count.
type IntInput struct {
	name     string
	value    int
	onChange []func(int)
}

func NewIntInput(name string, value int) *IntInput {
	return &IntInput{name: name, value: value}
}

func (w *IntInput) Name() string       { return w.name }
func (w *IntInput) Value() interface{} { return w.value }
func (w *IntInput) Int() int           { return w.value }

func (w *IntInput) OnChange(fn func(int)) {
	w.onChange = append(w.onChange, fn)
}

func (w *IntInput) SetInt(v int) error {
	if v < 1 {
		return fmt.Errorf("%s: must be >= 1, got %d", w.name, v)
	}
	w.value = v
	for _, fn := range w.onChange {
		fn(v)
	}
	return nil
}

func (w *IntInput) Set(v interface{}) error {
	f, ok := asFloat(v)
	if !ok || f != float64(int(f)) {
		return fmt.Errorf("%s: expected integer", w.name)
	}
	return w.SetInt(int(f))
}

// Toggle holds a boolean, used for the histogram overlay switch.
type Toggle struct {
	name     string
	value    bool
	onChange []func(bool)
}

func NewToggle(name string, value bool) *Toggle {
	return &Toggle{name: name, value: value}
}

func (w *Toggle) Name() string       { return w.name }
func (w *Toggle) Value() interface{} { return w.value }
func (w *Toggle) Bool() bool         { return w.value }

func (w *Toggle) OnChange(fn func(bool)) {
	w.onChange = append(w.onChange, fn)
}

func (w *Toggle) SetBool(v bool) error {
	w.value = v
	for _, fn := range w.onChange {
		fn(v)
	}
	return nil
}

func (w *Toggle) Set(v interface{}) error {
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%s: expected boolean", w.name)
	}
	return w.SetBool(b)
}

// Registry holds the accessor's widgets by name.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]Widget
}

func NewRegistry() *Registry {
	return &Registry{widgets: make(map[string]Widget)}
}

// Add registers a widget, replacing any widget of the same name.
func (r *Registry) Add(w Widget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.widgets[w.Name()] = w
}

// Get looks up a widget by name.
func (r *Registry) Get(name string) (Widget, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.widgets[name]
	return w, ok
}

// Apply sets the named widget from a decoded JSON value.
func (r *Registry) Apply(name string, v interface{}) error {
	w, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("unknown widget: %s", name)
	}
	return w.Set(v)
}

// Values snapshots every widget's current value.
func (r *Registry) Values() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]interface{}, len(r.widgets))
	for name, w := range r.widgets {
		out[name] = w.Value()
	}
	return out
}

// Names returns the registered widget names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.widgets))
	for name := range r.widgets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
