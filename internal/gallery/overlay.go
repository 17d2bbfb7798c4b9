package gallery

import "github.com/sakif/story-cards/internal/model"

// ViewMode selects which collection the gallery shows.
type ViewMode string

const (
	ViewActive   ViewMode = "active"
	ViewArchived ViewMode = "archived"
)

// Capability is a set of mutations the host supports. A missing capability
// hides the matching affordance and turns the operation into a no-op.
type Capability uint8

const (
	CanGenerate Capability = 1 << iota
	CanUpdate
	CanLock
	CanDelete
	CanRestore
)

// Has reports whether every flag in want is present in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

// Actions carries user intents out of the gallery. Implementations own all
// I/O and error reporting; the gallery never waits for or inspects results.
// After a mutation the host is expected to call SetCollections with fresh data.
type Actions interface {
	Capabilities() Capability
	Generate()
	UpdateSnippet(id int64, u model.SnippetUpdate)
	LockSnippet(id int64)
	DeleteSnippet(id int64)
	RestoreSnippet(id int64)
}

// Funcs adapts optional callbacks to Actions. A nil field is a missing capability.
type Funcs struct {
	OnGenerate func()
	OnUpdate   func(id int64, u model.SnippetUpdate)
	OnLock     func(id int64)
	OnDelete   func(id int64)
	OnRestore  func(id int64)
}

func (f Funcs) Capabilities() Capability {
	var c Capability
	if f.OnGenerate != nil {
		c |= CanGenerate
	}
	if f.OnUpdate != nil {
		c |= CanUpdate
	}
	if f.OnLock != nil {
		c |= CanLock
	}
	if f.OnDelete != nil {
		c |= CanDelete
	}
	if f.OnRestore != nil {
		c |= CanRestore
	}
	return c
}

func (f Funcs) Generate() {
	if f.OnGenerate != nil {
		f.OnGenerate()
	}
}

func (f Funcs) UpdateSnippet(id int64, u model.SnippetUpdate) {
	if f.OnUpdate != nil {
		f.OnUpdate(id, u)
	}
}

func (f Funcs) LockSnippet(id int64) {
	if f.OnLock != nil {
		f.OnLock(id)
	}
}

func (f Funcs) DeleteSnippet(id int64) {
	if f.OnDelete != nil {
		f.OnDelete(id)
	}
}

func (f Funcs) RestoreSnippet(id int64) {
	if f.OnRestore != nil {
		f.OnRestore(id)
	}
}

// SaveOutcome reports what SaveEdit did.
type SaveOutcome int

const (
	// SaveBlocked: nothing happened, the editor stays open.
	SaveBlocked SaveOutcome = iota
	// SaveUnchanged: no field differed; the editor closed without an update.
	SaveUnchanged
	// SaveSubmitted: the diff went to Actions.UpdateSnippet and the editor closed.
	SaveSubmitted
)

// RegenerateOutcome reports what RequestRegenerate did.
type RegenerateOutcome int

const (
	RegenerateDisabled RegenerateOutcome = iota
	RegenerateConfirming
	RegenerateStarted
)

// RegenerateSummary holds the counts shown in the regeneration warning.
type RegenerateSummary struct {
	Total    int
	Locked   int
	Unlocked int
}

// Overlay is the gallery state machine.
//
// The zero value is not usable; call New.
type Overlay struct {
	actions Actions

	open       bool
	active     []model.Snippet
	archived   []model.Snippet
	loading    bool
	generating bool
	updating   bool

	page       int
	mode       ViewMode
	editing    *Draft // nil when no card is being edited
	confirming bool
}

// New returns a closed overlay in the active view.
func New(actions Actions) *Overlay {
	if actions == nil {
		actions = Funcs{}
	}
	return &Overlay{actions: actions, mode: ViewActive}
}

// --- inputs ---------------------------------------------------------------

func (o *Overlay) Open() { o.open = true }

// Close hides the overlay and resets every piece of local state.
func (o *Overlay) Close() {
	o.open = false
	o.page = 0
	o.editing = nil
	o.confirming = false
	o.mode = ViewActive
}

func (o *Overlay) IsOpen() bool { return o.open }

// SetCollections replaces both collections. The slices are read, never
// modified. The page is re-clamped so it cannot point past a shrunken list,
// and an archived view whose list became empty falls back to the active view.
func (o *Overlay) SetCollections(active, archived []model.Snippet) {
	o.active = active
	o.archived = archived
	if o.mode == ViewArchived && len(o.archived) == 0 {
		o.mode = ViewActive
		o.page = 0
	}
	o.page = ClampPage(o.page, len(o.current()))
}

func (o *Overlay) SetLoading(v bool)    { o.loading = v }
func (o *Overlay) SetGenerating(v bool) { o.generating = v }
func (o *Overlay) SetUpdating(v bool)   { o.updating = v }

func (o *Overlay) Loading() bool    { return o.loading }
func (o *Overlay) Generating() bool { return o.generating }
func (o *Overlay) Updating() bool   { return o.updating }

// Capabilities returns what the host supports.
func (o *Overlay) Capabilities() Capability { return o.actions.Capabilities() }

// --- view mode and paging -------------------------------------------------

func (o *Overlay) ViewMode() ViewMode { return o.mode }

// SetViewMode switches collections and always returns to the first page.
func (o *Overlay) SetViewMode(mode ViewMode) {
	if mode != ViewArchived {
		mode = ViewActive
	}
	o.mode = mode
	o.page = 0
}

// ShowViewToggle reports whether there is an archived view worth switching to.
func (o *Overlay) ShowViewToggle() bool { return len(o.archived) > 0 }

func (o *Overlay) current() []model.Snippet {
	if o.mode == ViewArchived {
		return o.archived
	}
	return o.active
}

func (o *Overlay) Page() int       { return o.page }
func (o *Overlay) TotalPages() int { return TotalPages(len(o.current())) }

// NextPage advances one page; it stays put on the last page.
func (o *Overlay) NextPage() {
	o.page = ClampPage(o.page+1, len(o.current()))
}

// PrevPage goes back one page; it stays put on the first page.
func (o *Overlay) PrevPage() {
	o.page = ClampPage(o.page-1, len(o.current()))
}

func (o *Overlay) HasPrev() bool { return o.page > 0 }
func (o *Overlay) HasNext() bool { return o.page < o.TotalPages()-1 }

// ShowPagination reports whether the selected collection spans more than one page.
func (o *Overlay) ShowPagination() bool { return len(o.current()) > PageSize }

// Visible returns the cards on the current page. A closed overlay shows nothing.
func (o *Overlay) Visible() []model.Snippet {
	if !o.open {
		return nil
	}
	return PageSlice(o.current(), o.page)
}

// VisibleIndex maps a position on the current page to its index in the collection.
func (o *Overlay) VisibleIndex(i int) int { return o.page*PageSize + i }

// Len is the size of the selected collection.
func (o *Overlay) Len() int { return len(o.current()) }

func (o *Overlay) ActiveCount() int   { return len(o.active) }
func (o *Overlay) ArchivedCount() int { return len(o.archived) }

// LockedCount is derived from the active collection, so it cannot disagree
// with the cards on screen.
func (o *Overlay) LockedCount() int { return model.CountLocked(o.active) }

func (o *Overlay) UnlockedCount() int { return len(o.active) - o.LockedCount() }

// --- card affordances -----------------------------------------------------

// CardActions returns the affordances offered on s in the current view.
// Edit, lock and delete belong to the active view; restore to the archived one.
func (o *Overlay) CardActions(s model.Snippet) Capability {
	caps := o.actions.Capabilities()
	var out Capability
	switch o.mode {
	case ViewActive:
		out = caps & (CanUpdate | CanLock | CanDelete)
		if !s.Persisted() {
			out &^= CanLock | CanDelete
		}
	case ViewArchived:
		if s.Persisted() {
			out = caps & CanRestore
		}
	}
	return out
}

// EditCard opens the editor on s, replacing any edit already in progress.
func (o *Overlay) EditCard(s model.Snippet) {
	if !o.CardActions(s).Has(CanUpdate) {
		return
	}
	o.editing = NewDraft(s)
}

// Editing returns the open draft, if any.
func (o *Overlay) Editing() (*Draft, bool) {
	return o.editing, o.editing != nil
}

// CancelEdit discards the draft.
func (o *Overlay) CancelEdit() { o.editing = nil }

// SaveEdit emits the draft's diff. An unchanged draft just closes.
func (o *Overlay) SaveEdit() SaveOutcome {
	d := o.editing
	if d == nil || !d.CanSave(o.updating) {
		return SaveBlocked
	}
	diff := d.Diff()
	if diff.IsEmpty() {
		o.editing = nil
		return SaveUnchanged
	}
	id := d.Original().ID
	if id == 0 || !o.actions.Capabilities().Has(CanUpdate) {
		return SaveBlocked
	}
	o.actions.UpdateSnippet(id, diff)
	o.editing = nil
	return SaveSubmitted
}

// LockCard toggles the lock on s.
func (o *Overlay) LockCard(s model.Snippet) {
	if o.CardActions(s).Has(CanLock) {
		o.actions.LockSnippet(s.ID)
	}
}

// DeleteCard archives s.
func (o *Overlay) DeleteCard(s model.Snippet) {
	if o.CardActions(s).Has(CanDelete) {
		o.actions.DeleteSnippet(s.ID)
	}
}

// RestoreCard moves an archived card back to the active list.
func (o *Overlay) RestoreCard(s model.Snippet) {
	if o.CardActions(s).Has(CanRestore) {
		o.actions.RestoreSnippet(s.ID)
	}
}

// --- regeneration ---------------------------------------------------------

// ShowGenerate reports whether the generate control is offered.
func (o *Overlay) ShowGenerate() bool {
	return o.mode == ViewActive && o.actions.Capabilities().Has(CanGenerate)
}

// GenerateLabel is the caption of the generate control.
func (o *Overlay) GenerateLabel() string {
	switch {
	case o.generating:
		return "Generating..."
	case len(o.active) > 0:
		return "Regenerate"
	default:
		return "Generate Cards"
	}
}

// RequestRegenerate starts generation, or asks for confirmation first when
// there are unlocked cards that regeneration would replace.
func (o *Overlay) RequestRegenerate() RegenerateOutcome {
	if !o.ShowGenerate() || o.generating {
		return RegenerateDisabled
	}
	if len(o.active) > 0 && o.UnlockedCount() > 0 {
		o.confirming = true
		return RegenerateConfirming
	}
	o.actions.Generate()
	return RegenerateStarted
}

// ConfirmingRegenerate reports whether the warning is showing.
func (o *Overlay) ConfirmingRegenerate() bool { return o.confirming }

// ConfirmRegenerate closes the warning and starts generation once.
func (o *Overlay) ConfirmRegenerate() bool {
	if !o.confirming {
		return false
	}
	o.confirming = false
	o.actions.Generate()
	return true
}

// CancelRegenerate closes the warning without generating.
func (o *Overlay) CancelRegenerate() { o.confirming = false }

// RegenerateSummary returns the counts behind the warning text.
func (o *Overlay) RegenerateSummary() RegenerateSummary {
	locked := o.LockedCount()
	return RegenerateSummary{
		Total:    len(o.active),
		Locked:   locked,
		Unlocked: len(o.active) - locked,
	}
}
