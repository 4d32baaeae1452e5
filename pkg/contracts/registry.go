package contracts

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/validation"
)

var (
	ErrRegistryFrozen   = errors.New("contracts: registry is frozen")
	ErrDuplicateType    = errors.New("contracts: type already registered")
	ErrInvalidContract  = errors.New("contracts: invalid contract")
	ErrUnsoundDefault   = errors.New("contracts: default data does not satisfy schema")
	ErrContractNotFound = errors.New("contracts: contract not found")
)

// Option configures a Registry.
type Option func(*Registry)

// WithRegistrationOrder makes List return type ids in registration order
// instead of sorted ascending.
func WithRegistrationOrder() Option {
	return func(r *Registry) {
		r.ordered = true
	}
}

// WithSink forwards compile and default-repair diagnostics.
func WithSink(sink diagnostics.Sink) Option {
	return func(r *Registry) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// Registry stores contracts by type id.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
	order     []string
	ordered   bool
	frozen    bool
	sink      diagnostics.Sink
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		contracts: make(map[string]Contract),
		sink:      diagnostics.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register compiles def and stores the resulting contract. Compile errors,
// duplicate ids and unsound defaults are rejected.
func (r *Registry) Register(def Definition) error {
	contract, err := Build(def)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrRegistryFrozen, contract.TypeID)
	}
	if _, exists := r.contracts[contract.TypeID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateType, contract.TypeID)
	}
	r.contracts[contract.TypeID] = contract
	r.order = append(r.order, contract.TypeID)
	diagnostics.Forward(r.sink, contract.diagnostics)
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Get returns the contract registered under typeID.
func (r *Registry) Get(typeID string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contract, ok := r.contracts[typeID]
	return contract, ok
}

// Lookup is Get with an error for missing types.
func (r *Registry) Lookup(typeID string) (Contract, error) {
	contract, ok := r.Get(typeID)
	if !ok {
		return Contract{}, fmt.Errorf("%w: %q", ErrContractNotFound, typeID)
	}
	return contract, nil
}

// List returns the registered type ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := append([]string(nil), r.order...)
	if !r.ordered {
		sort.Strings(names)
	}
	return names
}

// Has reports whether typeID is registered.
func (r *Registry) Has(typeID string) bool {
	_, ok := r.Get(typeID)
	return ok
}

// Freeze rejects further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Build compiles a definition into a contract without registering it.
func Build(def Definition) (Contract, error) {
	typeID := strings.TrimSpace(def.TypeID)
	if typeID == "" {
		return Contract{}, fmt.Errorf("%w: type id is required", ErrInvalidContract)
	}
	if def.Schema == nil {
		return Contract{}, fmt.Errorf("%w: %q has no schema", ErrInvalidContract, typeID)
	}

	node, diags := schema.Compile(def.Schema)
	for _, d := range diags {
		if d.Severity == diagnostics.SeverityError {
			return Contract{}, fmt.Errorf("%w: %q: %s", ErrInvalidContract, typeID, d)
		}
	}
	if node.Kind != schema.KindObject {
		return Contract{}, fmt.Errorf("%w: %q root must be an object, got %s", ErrInvalidContract, typeID, node.Kind)
	}

	validator, err := validation.NewValidator(node)
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %q: %v", ErrInvalidContract, typeID, err)
	}

	var defaults map[string]any
	if def.DefaultData != nil {
		result := normalize.Normalize(node, def.DefaultData)
		defaults, _ = result.Value.(map[string]any)
		diags = append(diags, result.Diagnostics...)
	} else {
		defaults, _ = normalize.Default(node).(map[string]any)
	}
	contract := Contract{
		TypeID:      typeID,
		Def:         def.Schema,
		Node:        node,
		Metadata:    def.Metadata,
		defaults:    defaults,
		validator:   validator,
		constraints: def.Constraints,
		diagnostics: diags,
	}
	if check := contract.Validate(defaults); !check.Valid {
		return Contract{}, fmt.Errorf("%w: %q: %v", ErrUnsoundDefault, typeID, check.Err())
	}
	return contract, nil
}
