// Package lens turns scanner output into class markers and runs the
// "Show Testable Methods" action behind them.
package lens

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mesdx/classlens/internal/document"
	"github.com/mesdx/classlens/internal/scanner"
)

const (
	// ShowOptionsCommand is the command attached to every class lens.
	ShowOptionsCommand = "classlens.showOptions"

	// OptionShowTestableMethods is the only entry of the options menu.
	OptionShowTestableMethods = "Show Testable Methods"

	// OptionsPlaceholder is the prompt shown above the options menu.
	OptionsPlaceholder = "Select an option"

	DefaultHoverMessage = "Click to show options"
	DefaultLensTitle    = "Show Options"
	DefaultGutterIcon   = "resources/logo.png"
)

// Options are the user-visible strings of the markers.
type Options struct {
	HoverMessage string
	LensTitle    string
	GutterIcon   string
	PanelTitle   string
}

func (o Options) withDefaults() Options {
	if o.HoverMessage == "" {
		o.HoverMessage = DefaultHoverMessage
	}
	if o.LensTitle == "" {
		o.LensTitle = DefaultLensTitle
	}
	if o.GutterIcon == "" {
		o.GutterIcon = DefaultGutterIcon
	}
	return o
}

// Decoration is a gutter marker over one class declaration.
type Decoration struct {
	Range        document.Range     `json:"range"`
	HoverMessage string             `json:"hoverMessage"`
	GutterIcon   string             `json:"gutterIcon"`
	Class        scanner.ClassMatch `json:"class"`
}

// Arguments is the activation payload of a class lens.
type Arguments struct {
	URI   string         `json:"uri"`
	Range document.Range `json:"range"`
}

// Command is what activating a lens runs.
type Command struct {
	Title     string    `json:"title"`
	ID        string    `json:"command"`
	Arguments Arguments `json:"arguments"`
}

// CodeLens is a clickable marker over one class declaration.
type CodeLens struct {
	Range   document.Range `json:"range"`
	Command Command        `json:"command"`
}

// Snapshot is the full set of markers computed for one document version.
type Snapshot struct {
	URI         string       `json:"uri"`
	Path        string       `json:"path"`
	Version     int          `json:"version"`
	Decorations []Decoration `json:"decorations"`
	Lenses      []CodeLens   `json:"lenses"`
}

// Compute builds the markers for doc. Documents that are not Java produce an
// empty snapshot.
func Compute(doc *document.Document, opts Options) Snapshot {
	opts = opts.withDefaults()
	snap := Snapshot{URI: doc.URI, Path: doc.Path, Version: doc.Version}
	if doc.Lang != document.LangJava {
		return snap
	}

	for _, m := range scanner.FindClasses(doc.Text) {
		rng := doc.RangeOf(m.Start, m.End)
		snap.Decorations = append(snap.Decorations, Decoration{
			Range:        rng,
			HoverMessage: opts.HoverMessage,
			GutterIcon:   opts.GutterIcon,
			Class:        m,
		})
		snap.Lenses = append(snap.Lenses, CodeLens{
			Range: rng,
			Command: Command{
				Title:     opts.LensTitle,
				ID:        ShowOptionsCommand,
				Arguments: Arguments{URI: doc.URI, Range: rng},
			},
		})
	}
	return snap
}

// ErrNoClass is returned when a selector matches no class marker.
var ErrNoClass = errors.New("no matching class")

// Select returns the lens for the class called name, or the class declared
// on the 1-based line. With neither selector the snapshot must hold exactly
// one class.
func (s Snapshot) Select(name string, line int) (CodeLens, error) {
	for i, d := range s.Decorations {
		switch {
		case name != "" && d.Class.Name == name:
			return s.Lenses[i], nil
		case name == "" && line > 0 && d.Range.Start.Line == line-1:
			return s.Lenses[i], nil
		}
	}
	if name != "" || line > 0 {
		return CodeLens{}, fmt.Errorf("%w: %s", ErrNoClass, describeSelector(name, line))
	}

	switch len(s.Lenses) {
	case 0:
		return CodeLens{}, fmt.Errorf("%w: no class declarations in %s", ErrNoClass, s.Path)
	case 1:
		return s.Lenses[0], nil
	}
	names := make([]string, 0, len(s.Decorations))
	for _, d := range s.Decorations {
		names = append(names, d.Class.Name)
	}
	return CodeLens{}, fmt.Errorf("%d classes found (%s); choose one by name or line", len(names), strings.Join(names, ", "))
}

func describeSelector(name string, line int) string {
	if name != "" {
		return "class " + name
	}
	return fmt.Sprintf("line %d", line)
}
