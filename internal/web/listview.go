package web

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"clinic-admin/internal/appointment"
	"clinic-admin/internal/model"
)

// Repository is the appointment store as the list view sees it.
type Repository interface {
	FetchAll(ctx context.Context, ownerID string) ([]model.Appointment, error)
	Create(ctx context.Context, ownerID string, d model.Draft) (string, error)
	Update(ctx context.Context, id string, d model.Draft) error
	Delete(ctx context.Context, id string) error
}

type State int

const (
	Listing State = iota
	Editing
)

func (s State) String() string {
	if s == Editing {
		return "editing"
	}
	return "listing"
}

// ListView is one browser's appointments screen. Either the table or the
// form is showing, never both.
type ListView struct {
	mu     sync.Mutex
	repo   Repository
	owner  string
	loaded bool
	// fetched is set once a fetch for owner succeeded
	fetched bool
	items  []model.Appointment
	state  State
	form   *Form
	err    error
}

func NewListView(repo Repository) *ListView {
	return &ListView{repo: repo}
}

// Snapshot is a copy of the view safe to render without the lock.
type Snapshot struct {
	Owner string
	State State
	Items []model.Appointment
	Form  *Form
	Err   error
}

func (v *ListView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := Snapshot{Owner: v.owner, State: v.state, Items: slices.Clone(v.items), Err: v.err}
	if s.Items == nil {
		s.Items = []model.Appointment{}
	}
	if v.form != nil {
		f := *v.form
		f.Errors = maps.Clone(v.form.Errors)
		s.Form = &f
	}
	return s
}

// SetIdentity switches the view to ownerID. A change drops the current items
// and form and re-fetches; the same identity is a no-op once a fetch has
// succeeded, and retries the fetch until then.
func (v *ListView) SetIdentity(ctx context.Context, ownerID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded && v.owner == ownerID {
		if v.fetched {
			return nil
		}
		return v.refresh(ctx)
	}
	v.reset(ownerID)
	return v.refresh(ctx)
}

// Open is what a page load does: switch identity when it changed, otherwise
// re-fetch.
func (v *ListView) Open(ctx context.Context, ownerID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded || v.owner != ownerID {
		v.reset(ownerID)
	}
	return v.refresh(ctx)
}

// Refresh re-fetches. On failure the previous items stay and the error is
// kept for display.
func (v *ListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.refresh(ctx)
}

func (v *ListView) Add() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.form = NewForm()
	v.state = Editing
	v.err = nil
}

// Edit opens the form on a displayed row.
func (v *ListView) Edit(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.index(id)
	if i < 0 {
		return appointment.ErrNotFound
	}
	v.form = &Form{}
	v.form.Load(&v.items[i])
	v.state = Editing
	v.err = nil
	return nil
}

func (v *ListView) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.form != nil {
		v.form.Cancel()
	}
	v.form = nil
	v.state = Listing
	v.err = nil
}

// Submit saves f. On success the view returns to the table and re-fetches;
// on failure the form stays open with the error.
func (v *ListView) Submit(ctx context.Context, f *Form) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	intent, err := f.Submit()
	if err == nil {
		if intent.ID == "" {
			_, err = v.repo.Create(ctx, v.owner, intent.Draft)
		} else if v.index(intent.ID) < 0 {
			// only rows this identity can see are editable
			err = appointment.ErrNotFound
		} else {
			err = v.repo.Update(ctx, intent.ID, intent.Draft)
		}
	}
	if err != nil {
		v.keep(f, err)
		return err
	}

	v.form = nil
	v.state = Listing
	v.err = nil
	// the save stands even if the re-fetch fails; the error stays visible
	_ = v.refresh(ctx)
	return nil
}

// Delete removes id and prunes the row without waiting for the re-fetch. A
// record that is already gone counts as deleted.
func (v *ListView) Delete(ctx context.Context, id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.index(id) < 0 {
		return nil
	}
	if err := v.repo.Delete(ctx, id); err != nil && !errors.Is(err, appointment.ErrNotFound) {
		v.err = err
		return err
	}
	v.items = slices.DeleteFunc(v.items, func(a model.Appointment) bool { return a.ID == id })
	v.err = nil
	_ = v.refresh(ctx)
	return nil
}

// Keep leaves f open after a failed save so the input is not lost.
func (v *ListView) Keep(f *Form, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.keep(f, err)
}

func (v *ListView) keep(f *Form, err error) {
	v.form = f
	v.state = Editing
	v.err = err
}

func (v *ListView) reset(ownerID string) {
	v.owner = ownerID
	v.loaded = true
	v.fetched = false
	v.items = nil
	v.form = nil
	v.state = Listing
	v.err = nil
}

func (v *ListView) refresh(ctx context.Context) error {
	items, err := v.repo.FetchAll(ctx, v.owner)
	if err != nil {
		v.err = err
		return err
	}
	v.items = items
	v.fetched = true
	if v.state == Listing {
		v.err = nil
	}
	return nil
}

func (v *ListView) index(id string) int {
	return slices.IndexFunc(v.items, func(a model.Appointment) bool { return a.ID == id })
}
