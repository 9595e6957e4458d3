package termview

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gdamore/tcell/v2"

	globe "github.com/phanxgames/anomalyglobe"
)

// statusRows is the number of terminal rows reserved below the heatmap.
const statusRows = 1

// View shows one year's heatmap and a status line. It drives the same
// OverlayManager state machine as the desktop globe.
type View struct {
	screen   tcell.Screen
	dataset  *globe.ClimateDataset
	backend  *Backend
	overlays *globe.OverlayManager
	logger   *slog.Logger

	years   []int
	index   int
	visible bool
}

// NewView creates a view over an initialized screen. The newest year is
// selected and shown.
func NewView(screen tcell.Screen, dataset *globe.ClimateDataset, resolution int, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	cols, rows := screen.Size()
	v := &View{
		screen:  screen,
		dataset: dataset,
		backend: NewBackend(cols, rows-statusRows),
		logger:  logger,
		years:   dataset.Years(),
		visible: true,
	}
	v.overlays = globe.NewOverlayManager(dataset, globe.NewSynthesizer(resolution), v.backend,
		globe.WithOverlayLogger(logger))
	v.index = len(v.years) - 1
	v.refresh()
	return v
}

// Year returns the selected year, or 0 for an empty dataset.
func (v *View) Year() int {
	if v.index < 0 || v.index >= len(v.years) {
		return 0
	}
	return v.years[v.index]
}

// Visible reports whether the heatmap is switched on.
func (v *View) Visible() bool { return v.visible }

// Overlays returns the view's overlay manager.
func (v *View) Overlays() *globe.OverlayManager { return v.overlays }

// Backend returns the view's terminal backend.
func (v *View) Backend() *Backend { return v.backend }

// Step moves the selection by delta years present in the dataset.
func (v *View) Step(delta int) {
	if len(v.years) == 0 {
		return
	}
	v.index = max(0, min(len(v.years)-1, v.index+delta))
	v.refresh()
}

// Toggle flips heatmap visibility.
func (v *View) Toggle() {
	v.visible = !v.visible
	v.refresh()
}

func (v *View) refresh() {
	if err := v.overlays.SetActiveYear(v.Year(), v.visible); err != nil {
		v.logger.Error("heatmap update failed", slog.Int("year", v.Year()), slog.Any("error", err))
	}
}

// resize rebuilds the overlay for a new terminal size.
func (v *View) resize() {
	cols, rows := v.screen.Size()
	v.backend.Resize(cols, rows-statusRows)
	v.overlays.Release()
	v.refresh()
}

// HandleEvent applies one terminal event. It returns false when the view
// should quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.Step(-1)
		case tcell.KeyRight:
			v.Step(1)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'h':
				v.Toggle()
			}
		}
	case *tcell.EventResize:
		v.resize()
		v.screen.Sync()
	}
	return true
}

// Draw paints the heatmap and the status line.
func (v *View) Draw() {
	v.screen.Clear()
	if o := v.backend.Live(); o != nil {
		o.paint(v.screen)
	}
	_, rows := v.screen.Size()
	status := fmt.Sprintf(" %d  heatmap %s  [←/→] year  [h] toggle  [q] quit", v.Year(), onOff(v.visible))
	if len(v.years) == 0 {
		status = " no data  [q] quit"
	}
	drawText(v.screen, 0, rows-1, status, tcell.StyleDefault.Reverse(true))
	v.screen.Show()
}

// Run processes events until the user quits or ctx is canceled. The
// overlay is released on return.
func (v *View) Run(ctx context.Context) {
	defer v.overlays.Release()

	// PollEvent returns nil once the screen is finalized.
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	v.Draw()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return
			}
			v.Draw()
		}
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
