package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/mesdx/classlens/internal/lens"
)

// quitOption ends the interactive class loop.
const quitOption = "Quit"

// huhPicker implements lens.Picker with a huh select prompt. Aborting the
// prompt counts as a dismissal.
type huhPicker struct{}

func (huhPicker) Pick(ctx context.Context, placeholder string, options []string) (string, bool, error) {
	opts := make([]huh.Option[string], 0, len(options))
	for _, o := range options {
		opts = append(opts, huh.NewOption(o, o))
	}

	var choice string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(placeholder).
				Options(opts...).
				Value(&choice),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", false, nil
		}
		return "", false, err
	}
	return choice, true, nil
}

// classOptions labels every lens of snap as "Name (line:col)". The returned
// slice is parallel to snap.Lenses.
func classOptions(snap lens.Snapshot) []string {
	labels := make([]string, 0, len(snap.Decorations))
	for _, d := range snap.Decorations {
		labels = append(labels, fmt.Sprintf("%s (%d:%d)", d.Class.Name, d.Range.Start.Line+1, d.Range.Start.Character+1))
	}
	return labels
}

// pickClass asks the user which class marker to activate. ok is false when
// the user quits.
func pickClass(ctx context.Context, p lens.Picker, snap lens.Snapshot) (lens.CodeLens, bool, error) {
	labels := classOptions(snap)
	choice, ok, err := p.Pick(ctx, "Select a class", append(labels, quitOption))
	if err != nil || !ok || choice == quitOption {
		return lens.CodeLens{}, false, err
	}
	for i, l := range labels {
		if l == choice {
			return snap.Lenses[i], true, nil
		}
	}
	return lens.CodeLens{}, false, fmt.Errorf("unknown class choice %q", choice)
}
