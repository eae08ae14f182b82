// Package grid keeps a journal's trade collection in sync with its store while
// the user selects rows, edits cells inline and works in the trade form.
//
// Inline edits are optimistic: the local row changes first and is rolled back
// if the store refuses. Form saves are not: they persist and then reload the
// whole collection, because the derived columns depend on the committed record.
package grid

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/logging"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

var (
	ErrNoSelection  = errors.New("no trade selected")
	ErrUnknownTrade = errors.New("trade is not in the grid")
	ErrNotEditable  = errors.New("column is not editable")
	ErrFormOpen     = errors.New("trade form is open")
	ErrNoForm       = errors.New("trade form is not open")
	ErrNoImage      = errors.New("no image at that position")
)

// Controller owns the displayed collection and the selection state machine.
// It is driven from one goroutine; the mutex only makes reads from another
// goroutine safe.
type Controller struct {
	store Store

	mu       sync.Mutex
	trades   []journal.Trade
	rows     []metrics.DisplayRow
	state    State
	selected string
	draft    *Draft
	images   Carousel
	lastErr  error
}

// New returns a controller with an empty collection. Call Load to fill it.
func New(store Store) *Controller {
	return &Controller{store: store}
}

// Load replaces the collection with the store's current contents.
func (c *Controller) Load(ctx context.Context) error {
	trades, err := c.store.ListTrades(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		lg := logging.FromContext(ctx)
		lg.Warn().Err(err).Msg("load trades")
		return fmt.Errorf("load trades: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.trades = trades
	c.reproject()
	if c.selected != "" && c.indexOf(c.selected) < 0 {
		c.selected = ""
		if !c.state.FormOpen() {
			c.state = NoSelection
		}
	}
	c.clampImages()
	return nil
}

// reproject recomputes every display row. Callers hold mu.
func (c *Controller) reproject() {
	c.rows = metrics.ProjectAll(c.trades)
}

func (c *Controller) indexOf(tradeID string) int {
	return slices.IndexFunc(c.trades, func(t journal.Trade) bool { return t.ID == tradeID })
}

// Rows returns the projected rows in collection order.
func (c *Controller) Rows() []metrics.DisplayRow {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

// Trades returns a copy of the backing records.
func (c *Controller) Trades() []journal.Trade {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]journal.Trade, len(c.trades))
	for i, t := range c.trades {
		out[i] = t.Clone()
	}
	return out
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastError is the most recent store failure, cleared by the next success.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Select makes tradeID the selected row.
func (c *Controller) Select(tradeID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.FormOpen() {
		return ErrFormOpen
	}
	if c.indexOf(tradeID) < 0 {
		return fmt.Errorf("%s: %w", tradeID, ErrUnknownTrade)
	}
	if c.selected != tradeID {
		c.images.Reset()
	}
	c.selected = tradeID
	c.state = RowSelected
	return nil
}

func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.FormOpen() {
		return
	}
	c.selected = ""
	c.state = NoSelection
	c.images.Reset()
}

// Selected returns the full backing record of the selected row.
func (c *Controller) Selected() (journal.Trade, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(c.selected)
	if c.selected == "" || i < 0 {
		return journal.Trade{}, false
	}
	return c.trades[i].Clone(), true
}

// EditCell commits one inline edit. The row changes immediately; if the
// store rejects the update the previous value is put back and the error is
// returned.
func (c *Controller) EditCell(ctx context.Context, tradeID, name, value string) error {
	col, ok := lookupColumn(name)
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotEditable)
	}

	c.mu.Lock()
	if c.state.FormOpen() {
		c.mu.Unlock()
		return ErrFormOpen
	}
	i := c.indexOf(tradeID)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", tradeID, ErrUnknownTrade)
	}
	old := *col.field(&c.trades[i])
	next := col.accept(old, value)
	if next == old {
		c.mu.Unlock()
		return nil
	}
	*col.field(&c.trades[i]) = next
	c.reproject()
	prior := c.state
	c.state = EditingCell
	c.mu.Unlock()

	err := c.store.UpdateTrade(ctx, tradeID, journal.Patch{col.Key: next})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = prior
	if err != nil {
		if j := c.indexOf(tradeID); j >= 0 {
			*col.field(&c.trades[j]) = old
			c.reproject()
		}
		c.lastErr = err
		lg := logging.FromContext(ctx)
		lg.Warn().Err(err).
			Str("trade", tradeID).Str("column", col.Name).
			Msg("inline edit rolled back")
		return fmt.Errorf("update %s: %w", col.Name, err)
	}
	c.lastErr = nil
	return nil
}

// OpenEditor opens the form on a copy of the selected record.
func (c *Controller) OpenEditor() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.FormOpen() {
		return ErrFormOpen
	}
	i := c.indexOf(c.selected)
	if c.selected == "" || i < 0 {
		return ErrNoSelection
	}
	d := DraftFromTrade(c.trades[i])
	c.draft = &d
	c.state = FormEditingExisting
	return nil
}

// NewTrade opens the form on an empty draft.
func (c *Controller) NewTrade(now time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.FormOpen() {
		return ErrFormOpen
	}
	d := EmptyDraft(now)
	c.draft = &d
	c.state = FormCreatingNew
	return nil
}

// Draft returns a copy of the open form.
func (c *Controller) Draft() (Draft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return Draft{}, false
	}
	d := *c.draft
	d.Trade = c.draft.Trade.Clone()
	return d, true
}

// UpdateDraft applies fn to the open form.
func (c *Controller) UpdateDraft(fn func(*Draft)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return ErrNoForm
	}
	fn(c.draft)
	return nil
}

// Save validates and persists the open form, then reloads the collection and
// selects the saved trade. A validation failure makes no store call and
// leaves the form open, as does a store failure.
func (c *Controller) Save(ctx context.Context, now time.Time) error {
	c.mu.Lock()
	if c.draft == nil {
		c.mu.Unlock()
		return ErrNoForm
	}
	if err := Validate(*c.draft); err != nil {
		c.mu.Unlock()
		return err
	}
	creating := c.state == FormCreatingNew
	tradeID := c.selected
	if creating {
		tradeID = id.NewAt(now)
	}
	rec := c.draft.Record(tradeID, now)
	c.mu.Unlock()

	log := logging.FromContext(ctx).With().Str("trade", tradeID).Logger()

	var err error
	if creating {
		err = c.store.CreateTrade(ctx, rec)
	} else {
		var p journal.Patch
		if p, err = journal.PatchFromTrade(rec); err == nil {
			err = c.store.UpdateTrade(ctx, tradeID, p)
		}
	}
	if err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		log.Warn().Err(err).Bool("create", creating).Msg("save trade")
		return fmt.Errorf("save trade: %w", err)
	}

	c.mu.Lock()
	c.draft = nil
	c.selected = tradeID
	c.state = RowSelected
	c.lastErr = nil
	c.mu.Unlock()

	return c.Load(ctx)
}

// Cancel discards the form.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.FormOpen() {
		return
	}
	c.draft = nil
	if c.selected != "" && c.indexOf(c.selected) >= 0 {
		c.state = RowSelected
	} else {
		c.selected = ""
		c.state = NoSelection
	}
}

// patchSelected sends p for the selected trade and, once the store accepts
// it, applies apply to the local copy.
func (c *Controller) patchSelected(ctx context.Context, p journal.Patch, apply func(*journal.Trade)) error {
	c.mu.Lock()
	if c.state.FormOpen() {
		c.mu.Unlock()
		return ErrFormOpen
	}
	tradeID := c.selected
	if tradeID == "" || c.indexOf(tradeID) < 0 {
		c.mu.Unlock()
		return ErrNoSelection
	}
	c.mu.Unlock()

	if err := c.store.UpdateTrade(ctx, tradeID, p); err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		lg := logging.FromContext(ctx)
		lg.Warn().Err(err).Str("trade", tradeID).Msg("update selected trade")
		return fmt.Errorf("update trade: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(tradeID); i >= 0 {
		apply(&c.trades[i])
		c.reproject()
	}
	c.clampImages()
	c.lastErr = nil
	return nil
}

// SaveReview attaches the post-trade review to the selected trade and marks
// it closed.
func (c *Controller) SaveReview(ctx context.Context, r journal.Review, now time.Time) error {
	r.UpdatedAt = now.UTC()
	p := journal.Patch{"review": r, "status": journal.StatusClosed}
	return c.patchSelected(ctx, p, func(t *journal.Trade) {
		rc := r
		t.Review = &rc
		t.Status = journal.StatusClosed
	})
}

// AddImages appends hosted image URLs to the selected trade.
func (c *Controller) AddImages(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	sel, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	images := append(slices.Clone(sel.Images), urls...)
	return c.patchSelected(ctx, journal.Patch{"images": images}, func(t *journal.Trade) {
		t.Images = images
	})
}

// RemoveImage deletes the image at idx from the selected trade. The carousel
// index is clamped to what is left.
func (c *Controller) RemoveImage(ctx context.Context, idx int) error {
	sel, ok := c.Selected()
	if !ok {
		return ErrNoSelection
	}
	if idx < 0 || idx >= len(sel.Images) {
		return fmt.Errorf("image %d: %w", idx, ErrNoImage)
	}
	images := slices.Delete(slices.Clone(sel.Images), idx, idx+1)
	return c.patchSelected(ctx, journal.Patch{"images": images}, func(t *journal.Trade) {
		t.Images = images
	})
}

// DeleteSelected removes the selected trade from the store and the grid.
func (c *Controller) DeleteSelected(ctx context.Context) error {
	c.mu.Lock()
	if c.state.FormOpen() {
		c.mu.Unlock()
		return ErrFormOpen
	}
	tradeID := c.selected
	if tradeID == "" {
		c.mu.Unlock()
		return ErrNoSelection
	}
	c.mu.Unlock()

	if err := c.store.DeleteTrade(ctx, tradeID); err != nil {
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		lg := logging.FromContext(ctx)
		lg.Warn().Err(err).Str("trade", tradeID).Msg("delete trade")
		return fmt.Errorf("delete trade: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(tradeID); i >= 0 {
		c.trades = slices.Delete(c.trades, i, i+1)
		c.reproject()
	}
	c.selected = ""
	c.state = NoSelection
	c.images.Reset()
	c.lastErr = nil
	return nil
}

// imageCount is the number of images on the selected trade. Callers hold mu.
func (c *Controller) imageCount() int {
	if i := c.indexOf(c.selected); c.selected != "" && i >= 0 {
		return len(c.trades[i].Images)
	}
	return 0
}

func (c *Controller) clampImages() {
	c.images.Clamp(c.imageCount())
}

// ImageIndex is the carousel position on the selected trade.
func (c *Controller) ImageIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Index()
}

// CurrentImage returns the URL under the carousel, or false when the
// selected trade has no images.
func (c *Controller) CurrentImage() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.imageCount()
	if n == 0 {
		return "", false
	}
	return c.trades[c.indexOf(c.selected)].Images[c.images.Index()], true
}

func (c *Controller) NextImage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Next(c.imageCount())
}

func (c *Controller) PrevImage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.images.Prev(c.imageCount())
}
