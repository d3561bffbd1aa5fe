// Package form mediates create and edit intent for a single catalog item.
//
// A Controller moves between three states:
//
//	Idle --OpenCreate/OpenEdit--> Editing --Submit--> Submitting
//	Submitting --success--> Idle
//	Submitting --failure--> Editing (fields and staged image kept)
//
// At most one submit is in flight per controller.
package form

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/erazemk/vitrina/internal/catalog"
	"github.com/erazemk/vitrina/internal/imaging"
	"github.com/erazemk/vitrina/internal/model"
)

// State is the controller's position in the form lifecycle.
type State int

// Controller states.
const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

var (
	// ErrNotEditing is returned by operations that need an open form.
	ErrNotEditing = errors.New("form is not open")
	// ErrBusy is returned while a save is in flight.
	ErrBusy = errors.New("save already in progress")
)

// Fields are the editable values of the form, as entered.
type Fields struct {
	Name        string
	Price       string
	Description string
	Category    string
	State       model.State
}

// Saver persists items. *catalog.Store implements it.
type Saver interface {
	Create(ctx context.Context, draft model.Draft) (*model.Item, error)
	Update(ctx context.Context, id int64, patch model.Patch) (*model.Item, error)
}

// Controller is the create/edit form state machine.
type Controller struct {
	saver    Saver
	objects  catalog.Objects
	compress func([]byte) (*imaging.Result, error)
	now      func() time.Time

	mu       sync.Mutex
	state    State
	fields   Fields
	original *model.Item
	preview  string
	staged   *imaging.Result
	err      error
	gen      uint64 // bumped whenever the form is closed or reopened
}

// New returns an idle controller that saves through saver and uploads
// images to objects.
func New(saver Saver, objects catalog.Objects) *Controller {
	return &Controller{
		saver:    saver,
		objects:  objects,
		compress: imaging.Compress,
		now:      time.Now,
	}
}

// OpenCreate opens a blank form.
func (c *Controller) OpenCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrBusy
	}
	c.reset()
	c.state = Editing
	c.fields = Fields{State: model.StateToSell}
	return nil
}

// OpenEdit opens the form seeded with item. Its current image, if any, is
// the initial preview.
func (c *Controller) OpenEdit(item model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrBusy
	}
	c.reset()
	c.state = Editing
	c.original = &item
	c.fields = Fields{
		Name:        item.Name,
		Price:       item.Price.String(),
		Description: item.Description,
		Category:    item.Category,
		State:       item.State,
	}
	c.preview = item.ImageURL.String()
	return nil
}

// Cancel dismisses an open form.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case Submitting:
		return ErrBusy
	case Editing:
		c.reset()
	}
	return nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Fields returns the current field values.
func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetFields replaces the field values.
func (c *Controller) SetFields(f Fields) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireEditing(); err != nil {
		return err
	}
	c.fields = f
	return nil
}

// Preview returns what should be displayed as the item photo: a data URI
// for a freshly picked image, the stored URL when editing, or "".
func (c *Controller) Preview() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Staged reports whether a compressed image is waiting to be uploaded.
func (c *Controller) Staged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.staged != nil
}

// EditingID returns the id of the item being edited.
func (c *Controller) EditingID() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.original == nil {
		return 0, false
	}
	return c.original.ID, true
}

// Err returns the problem from the last failed operation, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SelectImage compresses data and stages it for upload on submit. On
// failure the previous preview and staged image stay in place.
func (c *Controller) SelectImage(data []byte) error {
	c.mu.Lock()
	err := c.requireEditing()
	gen := c.gen
	c.mu.Unlock()
	if err != nil {
		return err
	}

	result, err := c.compress(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		// The form was closed or reopened meanwhile; the image belongs to
		// a form that no longer exists.
		return ErrNotEditing
	}
	if err != nil {
		c.err = err
		return err
	}
	if err := c.requireEditing(); err != nil {
		return err
	}
	c.staged = result
	c.preview = result.Preview()
	c.err = nil
	return nil
}

// Submit validates the form, uploads a staged image and saves the item.
// On success the form closes and the saved item is returned. On failure
// the form stays open with its input intact.
func (c *Controller) Submit(ctx context.Context) (*model.Item, error) {
	c.mu.Lock()
	if err := c.requireEditing(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	draft, err := c.draft()
	if err != nil {
		c.err = err
		c.mu.Unlock()
		return nil, err
	}
	c.state = Submitting
	c.err = nil
	original := c.original
	staged := c.staged
	c.mu.Unlock()

	item, err := c.save(ctx, draft, original, staged)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		slog.Warn("saving item failed", "error", err)
		c.state = Editing
		c.err = err
		return nil, err
	}
	c.reset()
	return item, nil
}

func (c *Controller) save(ctx context.Context, draft model.Draft, original *model.Item, staged *imaging.Result) (*model.Item, error) {
	var uploaded string
	if staged != nil {
		url, err := c.objects.UploadObject(ctx, staged.Data, imaging.ObjectName(c.now()))
		if err != nil {
			return nil, err
		}
		uploaded = url
	}

	if original == nil {
		if uploaded != "" {
			draft.ImageURL = model.SomeImage(uploaded)
		}
		return c.saver.Create(ctx, draft)
	}

	patch := diff(*original, draft)
	if uploaded != "" {
		patch.ImageURL = &uploaded
	}
	return c.saver.Update(ctx, original.ID, patch)
}

// draft must be called with mu held.
func (c *Controller) draft() (model.Draft, error) {
	f := c.fields
	d := model.Draft{
		Name:        strings.TrimSpace(f.Name),
		Description: f.Description,
		Category:    strings.TrimSpace(f.Category),
		State:       f.State,
	}
	if c.original != nil {
		d.ImageURL = c.original.ImageURL
	}

	price, err := model.ParsePrice(f.Price)
	if err != nil {
		return d, err
	}
	d.Price = price
	return d, d.Validate()
}

// requireEditing must be called with mu held.
func (c *Controller) requireEditing() error {
	switch c.state {
	case Editing:
		return nil
	case Submitting:
		return ErrBusy
	default:
		return ErrNotEditing
	}
}

// reset must be called with mu held.
func (c *Controller) reset() {
	c.gen++
	c.state = Idle
	c.fields = Fields{}
	c.original = nil
	c.preview = ""
	c.staged = nil
	c.err = nil
}

// diff returns a patch holding only the fields of d that differ from item.
func diff(item model.Item, d model.Draft) model.Patch {
	var p model.Patch
	if d.Name != item.Name {
		p.Name = &d.Name
	}
	if !d.Price.Equal(item.Price) {
		p.Price = &d.Price
	}
	if d.Description != item.Description {
		p.Description = &d.Description
	}
	if d.Category != item.Category {
		p.Category = &d.Category
	}
	if d.State != item.State {
		p.State = &d.State
	}
	return p
}
