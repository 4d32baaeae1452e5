package form

import (
	"fmt"
	"sync"

	"github.com/goliatone/go-sectionform/internal/logging"
	"github.com/goliatone/go-sectionform/pkg/content"
	"github.com/goliatone/go-sectionform/pkg/contracts"
	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/interfaces"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/normalize"
	"github.com/goliatone/go-sectionform/pkg/schema"
	"github.com/goliatone/go-sectionform/pkg/widgets"
	"github.com/google/uuid"
)

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithWalker sets the walker used by Form.
func WithWalker(w *Walker) SessionOption {
	return func(s *Session) {
		if w != nil {
			s.walker = w
		}
	}
}

// WithSessionNormalizer sets the normalizer applied to loaded documents and
// mutation inputs.
func WithSessionNormalizer(n *normalize.Normalizer) SessionOption {
	return func(s *Session) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithPlacement sets where a new section is created.
func WithPlacement(pageID uuid.UUID, orderIndex int) SessionOption {
	return func(s *Session) {
		s.section.PageID = pageID
		s.section.OrderIndex = orderIndex
	}
}

// WithPublished sets the published flag sent on submit.
func WithPublished(published bool) SessionOption {
	return func(s *Session) {
		s.section.Published = published
	}
}

// WithPages attaches the known link targets to the synthesized form.
func WithPages(pages []links.Page) SessionOption {
	return func(s *Session) {
		s.pages = append([]links.Page(nil), pages...)
	}
}

// WithDiagnosticSink forwards session diagnostics.
func WithDiagnosticSink(sink diagnostics.Sink) SessionOption {
	return func(s *Session) {
		if sink != nil {
			s.sink = sink
		}
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger interfaces.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logging.OrNoOp(logger)
	}
}

// MutationResult reports the outcome of a mutation.
type MutationResult struct {
	Applied     bool             `json:"applied"`
	Diagnostics diagnostics.List `json:"diagnostics,omitempty"`
}

// Session owns one section document and the editing state around it.
// All methods are safe for concurrent use.
type Session struct {
	mu         sync.Mutex
	contract   contracts.Contract
	walker     *Walker
	normalizer *normalize.Normalizer
	sink       diagnostics.Sink
	logger     interfaces.Logger
	pages      []links.Page

	section   content.Section
	loadDiags diagnostics.List
	collapsed collapseState
	revision  int
	pending   bool
	closed    bool
}

func newSession(contract contracts.Contract, opts []SessionOption) *Session {
	s := &Session{
		contract:   contract,
		walker:     defaultWalker,
		normalizer: normalize.New(),
		sink:       diagnostics.Discard(),
		logger:     logging.NoOp(),
		collapsed:  collapseState{},
	}
	s.section.SectionType = contract.TypeID
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewSession starts editing a new section seeded with the contract defaults.
func NewSession(contract contracts.Contract, opts ...SessionOption) *Session {
	s := newSession(contract, opts)
	s.section.Data = contract.DefaultData()
	return s
}

// OpenSession starts editing a persisted section. The stored data is
// normalized once; the repairs are available from LoadDiagnostics.
func OpenSession(contract contracts.Contract, section content.Section, opts ...SessionOption) (*Session, error) {
	if section.SectionType != contract.TypeID {
		return nil, fmt.Errorf("form: section type %q does not match contract %q", section.SectionType, contract.TypeID)
	}
	// Placement options only apply to new sections; the stored placement wins.
	s := newSession(contract, opts)
	s.section = section.Clone()

	result := s.normalizer.Normalize(contract.Node, section.Data)
	data, _ := result.Value.(map[string]any)
	if data == nil {
		data = contract.DefaultData()
	}
	s.section.Data = data
	s.loadDiags = result.Diagnostics
	diagnostics.Forward(s.sink, result.Diagnostics)
	return s, nil
}

// Contract returns the contract the session edits.
func (s *Session) Contract() contracts.Contract {
	return s.contract
}

// LoadDiagnostics returns the repairs applied when the session was opened.
func (s *Session) LoadDiagnostics() diagnostics.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(diagnostics.List(nil), s.loadDiags...)
}

// Section returns a deep copy of the section being edited.
func (s *Session) Section() content.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.section.Clone()
}

// Document returns a deep copy of the current document.
func (s *Session) Document() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, _ := normalize.Clone(s.section.Data).(map[string]any)
	return out
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close discards the in-memory document. Later mutations are no-ops.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.section.Data = nil
}

// Form synthesizes the controls for the current document.
func (s *Session) Form() *Form {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &Form{
		TypeID:   s.contract.TypeID,
		Label:    s.contract.Label(),
		Pages:    append([]links.Page(nil), s.pages...),
		ReadOnly: s.closed,
	}
	if !s.section.IsNew() {
		f.SectionID = s.section.ID.String()
	}
	if s.closed {
		return f
	}
	collapsed := make(collapseState, len(s.collapsed))
	for k, v := range s.collapsed {
		collapsed[k] = v
	}
	f.Root = s.walker.walk(s.contract.Node, schema.Path{}, s.section.Data, collapsed)
	f.Diagnostics = collectDiagnostics(f.Root, nil)
	return f
}

// ToggleGroup flips the collapsed state of group g inside the object at
// path. The state is presentational and never stored in the document.
func (s *Session) ToggleGroup(path schema.Path, g widgets.Group) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := !s.collapsed.collapsed(path, g)
	s.collapsed[collapseKey(path, g)] = next
	return next
}

// SetScalar writes a scalar value at path after normalizing it against the
// schema node found there.
func (s *Session) SetScalar(path schema.Path, value any) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, res, ok := s.target(path)
	if !ok {
		return res
	}
	if node.Kind == schema.KindObject || node.Kind == schema.KindArray {
		return s.reject(path, "path addresses a %s, not a scalar", node.Kind)
	}

	normalized := s.normalizer.NormalizeAt(s.contract.Node, path, value)
	res.Diagnostics = append(res.Diagnostics, normalized.Diagnostics...)
	if err := setPath(s.section.Data, path, normalized.Value); err != nil {
		return s.reject(path, "%v", err)
	}
	s.revision++
	res.Applied = true
	s.forward(res.Diagnostics)
	return res
}

// SpliceArray removes count items at index from the array at path and
// inserts items in their place. index and count are clamped to the array
// bounds. Inserted items are normalized against the element schema.
func (s *Session) SpliceArray(path schema.Path, index, count int, items ...any) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.splice(path, index, count, items)
}

func (s *Session) splice(path schema.Path, index, count int, items []any) MutationResult {
	current, res, ok := s.arrayAt(path)
	if !ok {
		return res
	}

	index = clamp(index, 0, len(current))
	count = clamp(count, 0, len(current)-index)
	if count == 0 && len(items) == 0 {
		return res
	}

	next := make([]any, 0, len(current)-count+len(items))
	next = append(next, current[:index]...)
	for i, item := range items {
		normalized := s.normalizer.NormalizeAt(s.contract.Node, path.At(index+i), item)
		res.Diagnostics = append(res.Diagnostics, normalized.Diagnostics...)
		next = append(next, normalized.Value)
	}
	next = append(next, current[index+count:]...)

	if err := s.replaceArray(path, next); err != nil {
		return s.reject(path, "%v", err)
	}
	res.Applied = true
	s.forward(res.Diagnostics)
	return res
}

// MoveArrayItem moves the item at from to position to. Out-of-range
// positions, including moves past either end, are no-ops.
func (s *Session) MoveArrayItem(path schema.Path, from, to int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, res, ok := s.arrayAt(path)
	if !ok {
		return res
	}
	if from == to || from < 0 || to < 0 || from >= len(current) || to >= len(current) {
		return res
	}

	next := make([]any, 0, len(current))
	next = append(next, current[:from]...)
	next = append(next, current[from+1:]...)
	moved := current[from]
	next = append(next[:to], append([]any{moved}, next[to:]...)...)

	if err := s.replaceArray(path, next); err != nil {
		return s.reject(path, "%v", err)
	}
	res.Applied = true
	s.forward(res.Diagnostics)
	return res
}

// Append adds items to the end of the array at path. Without items it adds
// one element built from the element schema's defaults.
func (s *Session) Append(path schema.Path, items ...any) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		node, ok := s.contract.Node.Lookup(path)
		if ok && node.Kind == schema.KindArray {
			items = []any{normalize.Default(node.Element)}
		}
	}
	return s.splice(path, s.lengthAt(path), 0, items)
}

// Remove deletes the item at index.
func (s *Session) Remove(path schema.Path, index int) MutationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= s.lengthAt(path) {
		return MutationResult{}
	}
	return s.splice(path, index, 1, nil)
}

// MoveUp swaps the item at index with its predecessor.
func (s *Session) MoveUp(path schema.Path, index int) MutationResult {
	return s.MoveArrayItem(path, index, index-1)
}

// MoveDown swaps the item at index with its successor.
func (s *Session) MoveDown(path schema.Path, index int) MutationResult {
	return s.MoveArrayItem(path, index, index+1)
}

// Apply dispatches a structural action produced by a control.
func (s *Session) Apply(action Action) MutationResult {
	switch action.Kind {
	case ActionAdd:
		return s.Append(action.Path)
	case ActionRemove:
		return s.Remove(action.Path, action.Index)
	case ActionMoveUp:
		return s.MoveUp(action.Path, action.Index)
	case ActionMoveDown:
		return s.MoveDown(action.Path, action.Index)
	}
	return MutationResult{}
}

func (s *Session) lengthAt(path schema.Path) int {
	current, ok := getPath(s.section.Data, path)
	if !ok {
		return 0
	}
	arr, _ := current.([]any)
	return len(arr)
}

// target resolves the schema node for a mutation. Callers hold s.mu.
func (s *Session) target(path schema.Path) (*schema.Node, MutationResult, bool) {
	if s.closed {
		return nil, MutationResult{}, false
	}
	node, ok := s.contract.Node.Lookup(path)
	if !ok || len(path) == 0 {
		return nil, s.reject(path, "path does not address a field"), false
	}
	return node, MutationResult{}, true
}

// arrayAt returns the current array stored at path, normalizing a
// malformed value first. Callers hold s.mu.
func (s *Session) arrayAt(path schema.Path) ([]any, MutationResult, bool) {
	node, res, ok := s.target(path)
	if !ok {
		return nil, res, false
	}
	if node.Kind != schema.KindArray {
		return nil, s.reject(path, "path addresses a %s, not an array", node.Kind), false
	}
	raw, ok := getPath(s.section.Data, path)
	if !ok {
		return nil, s.reject(path, "path does not exist in document"), false
	}
	current, ok := raw.([]any)
	if !ok {
		normalized := s.normalizer.NormalizeAt(s.contract.Node, path, raw)
		res.Diagnostics = append(res.Diagnostics, normalized.Diagnostics...)
		current, _ = normalized.Value.([]any)
	}
	return current, res, true
}

// replaceArray swaps in a fresh slice so earlier Document copies and form
// snapshots never observe the change.
func (s *Session) replaceArray(path schema.Path, next []any) error {
	if err := setPath(s.section.Data, path, next); err != nil {
		return err
	}
	s.revision++
	return nil
}

func (s *Session) reject(path schema.Path, format string, args ...any) MutationResult {
	d := diagnostics.Diagnostic{
		Code:     diagnostics.SchemaResolutionFailure,
		Severity: diagnostics.SeverityWarn,
		Path:     path.String(),
		Message:  fmt.Sprintf(format, args...),
	}
	s.sink.Report(d)
	return MutationResult{Diagnostics: diagnostics.List{d}}
}

func (s *Session) forward(list diagnostics.List) {
	diagnostics.Forward(s.sink, list)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
