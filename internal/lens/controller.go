package lens

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/panel"
	"github.com/mesdx/classlens/internal/scanner"
)

// Opener loads the current text of a document by reference.
type Opener interface {
	Open(uri string) (*document.Document, error)
}

// Picker presents a fixed list of choices and returns the selected one.
// ok is false when the user dismissed the prompt.
type Picker interface {
	Pick(ctx context.Context, placeholder string, options []string) (choice string, ok bool, err error)
}

// Activation describes one completed "Show Testable Methods" run.
type Activation struct {
	URI       string         `json:"uri"`
	Path      string         `json:"path"`
	Class     string         `json:"class"`
	Range     document.Range `json:"range"`
	Offset    int            `json:"offset"`
	BodyEnd   int            `json:"bodyEnd"`
	Methods   []string       `json:"methods"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recorder persists activations. Recording is best-effort.
type Recorder interface {
	Record(ctx context.Context, a Activation) error
}

// Controller owns the markers of the active document and the results panel.
// Every refresh recomputes the markers from the whole text and replaces the
// previous set.
type Controller struct {
	opts     Options
	opener   Opener
	picker   Picker
	panels   *panel.Manager
	recorder Recorder

	mu        sync.Mutex
	active    *document.Document
	current   Snapshot
	listeners []func(Snapshot)
}

// NewController creates a controller. picker and recorder may be nil.
func NewController(opts Options, opener Opener, picker Picker, panels *panel.Manager, recorder Recorder) *Controller {
	return &Controller{
		opts:     opts.withDefaults(),
		opener:   opener,
		picker:   picker,
		panels:   panels,
		recorder: recorder,
	}
}

// Subscribe registers fn to receive every new snapshot.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Active returns the tracked document, or nil.
func (c *Controller) Active() *document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Current returns the markers currently shown.
func (c *Controller) Current() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Panels returns the panel manager.
func (c *Controller) Panels() *panel.Manager {
	return c.panels
}

// OnActiveDocumentChanged switches the tracked document and refreshes. A nil
// document leaves the current markers untouched.
func (c *Controller) OnActiveDocumentChanged(doc *document.Document) bool {
	if doc == nil {
		return false
	}
	c.mu.Lock()
	c.active = doc
	c.mu.Unlock()
	return c.Refresh(doc)
}

// OnDocumentChanged refreshes when doc is the tracked document. Changes to
// other documents are ignored.
func (c *Controller) OnDocumentChanged(doc *document.Document) bool {
	if doc == nil {
		return false
	}
	c.mu.Lock()
	tracked := c.active != nil && c.active.Path == doc.Path
	if tracked {
		c.active = doc
	}
	c.mu.Unlock()
	if !tracked {
		return false
	}
	return c.Refresh(doc)
}

// Refresh recomputes the markers for doc and notifies listeners. It returns
// false when there is no document to scan.
func (c *Controller) Refresh(doc *document.Document) bool {
	if doc == nil {
		log.Printf("lens: no active document")
		return false
	}
	snap := Compute(doc, c.opts)

	c.mu.Lock()
	c.current = snap
	listeners := append([]func(Snapshot){}, c.listeners...)
	c.mu.Unlock()

	log.Printf("lens: found %d classes in %s", len(snap.Lenses), doc.Path)
	for _, fn := range listeners {
		fn(snap)
	}
	return true
}

// ShowOptions runs a lens command: it offers the options menu and, when the
// user picks "Show Testable Methods", shows the methods of the class at args.
// Dismissing the menu returns a nil activation and no error.
func (c *Controller) ShowOptions(ctx context.Context, args Arguments) (*Activation, error) {
	if c.picker == nil {
		return nil, fmt.Errorf("no picker configured")
	}
	choice, ok, err := c.picker.Pick(ctx, OptionsPlaceholder, []string{OptionShowTestableMethods})
	if err != nil {
		return nil, fmt.Errorf("options prompt failed: %w", err)
	}
	if !ok || choice != OptionShowTestableMethods {
		return nil, nil
	}
	return c.ShowTestableMethods(ctx, args)
}

// ShowTestableMethods re-opens the document, extracts the body starting at
// the lens range and lists its method names in the results panel.
func (c *Controller) ShowTestableMethods(ctx context.Context, args Arguments) (*Activation, error) {
	a, err := c.Extract(args)
	if err != nil {
		return nil, err
	}

	title := c.opts.PanelTitle
	if title == "" {
		title = panel.DefaultTitle
	}
	if _, _, err := c.panels.Show(panel.Content{
		Title:    title,
		Document: a.Path,
		Class:    a.Class,
		Methods:  a.Methods,
	}); err != nil {
		return nil, err
	}

	if c.recorder != nil {
		if err := c.recorder.Record(ctx, *a); err != nil {
			log.Printf("lens: failed to record activation: %v", err)
		}
	}
	return a, nil
}

// Extract computes the testable methods for a lens without touching the
// panel.
func (c *Controller) Extract(args Arguments) (*Activation, error) {
	doc, err := c.opener.Open(args.URI)
	if err != nil {
		return nil, err
	}

	start := doc.OffsetAt(args.Range.Start)
	end := scanner.FindBodyEnd(doc.Text, start)
	methods := scanner.FindMethodNames(doc.Text[start:end])

	return &Activation{
		URI:       doc.URI,
		Path:      doc.Path,
		Class:     classNameAt(doc, start, args.Range),
		Range:     args.Range,
		Offset:    start,
		BodyEnd:   end,
		Methods:   methods,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// classNameAt names the class whose declaration starts at offset. When the
// text moved since the lens was computed it falls back to the last word of
// the lens range.
func classNameAt(doc *document.Document, offset int, rng document.Range) string {
	for _, m := range scanner.FindClasses(doc.Text) {
		if m.Start == offset {
			return m.Name
		}
	}
	text := doc.Slice(rng)
	for i := len(text) - 1; i >= 0; i-- {
		if text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r' {
			return text[i+1:]
		}
	}
	return text
}
