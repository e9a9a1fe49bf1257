// Package panel owns the single results surface that lists testable methods.
// At most one panel exists at a time; showing new results replaces the
// content of the open panel instead of creating another one.
package panel

import (
	"fmt"
	"sync"
)

// ViewType identifies the testable-methods surface.
const ViewType = "testableMethods"

// DefaultTitle is the panel heading.
const DefaultTitle = "Testable Methods"

// Content is what a panel displays.
type Content struct {
	Title    string   `json:"title"`
	Document string   `json:"document,omitempty"`
	Class    string   `json:"class,omitempty"`
	Methods  []string `json:"methods"`
}

// Renderer turns content into the text a surface displays.
type Renderer interface {
	Render(c Content) (string, error)
}

// Panel is one open results surface.
type Panel struct {
	mu        sync.Mutex
	title     string
	content   Content
	body      string
	disposed  bool
	onDispose []func()
}

// Title returns the panel title.
func (p *Panel) Title() string {
	return p.title
}

// Content returns the content last shown in the panel.
func (p *Panel) Content() Content {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// Body returns the rendered panel body.
func (p *Panel) Body() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.body
}

// Disposed reports whether the panel was closed.
func (p *Panel) Disposed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disposed
}

// OnDispose registers fn to run when the panel is closed.
func (p *Panel) OnDispose(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDispose = append(p.onDispose, fn)
}

// Dispose closes the panel. Calling it more than once is a no-op.
func (p *Panel) Dispose() {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return
	}
	p.disposed = true
	callbacks := p.onDispose
	p.onDispose = nil
	p.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
}

func (p *Panel) set(c Content, body string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = c
	p.body = body
}

// Manager holds the one optional panel handle. The handle is created lazily
// on the first Show and cleared when the user disposes the panel.
type Manager struct {
	mu       sync.Mutex
	renderer Renderer
	current  *Panel
}

// NewManager creates a panel manager rendering with r.
func NewManager(r Renderer) *Manager {
	return &Manager{renderer: r}
}

// Current returns the open panel, or nil.
func (m *Manager) Current() *Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Show renders c into the open panel, creating it if none is open. The
// returned bool reports whether a new panel was created.
func (m *Manager) Show(c Content) (*Panel, bool, error) {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	body, err := m.renderer.Render(c)
	if err != nil {
		return nil, false, fmt.Errorf("failed to render panel: %w", err)
	}

	m.mu.Lock()
	p := m.current
	created := false
	if p == nil {
		p = &Panel{title: c.Title}
		m.current = p
		created = true
	}
	m.mu.Unlock()

	if created {
		p.OnDispose(func() {
			m.mu.Lock()
			if m.current == p {
				m.current = nil
			}
			m.mu.Unlock()
		})
	}

	p.set(c, body)
	return p, created, nil
}

// Close disposes the open panel, if any.
func (m *Manager) Close() {
	if p := m.Current(); p != nil {
		p.Dispose()
	}
}
