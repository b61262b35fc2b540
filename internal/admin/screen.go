package admin

import (
	"context"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

var (
	titleStyle = tcell.StyleDefault.Reverse(true).Bold(true)
	bodyStyle  = tcell.StyleDefault
	hintStyle  = tcell.StyleDefault.Dim(true)
)

// Render draws page on screen: a title bar on the first row, the body
// from the third row and a key hint on the last row. Text past the screen
// edges is clipped.
func Render(screen tcell.Screen, title, body string) {
	screen.Clear()
	width, height := screen.Size()
	if width <= 0 || height <= 0 {
		return
	}

	for x := 0; x < width; x++ {
		screen.SetContent(x, 0, ' ', nil, titleStyle)
	}
	drawText(screen, 1, 0, width-1, title, titleStyle)

	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, line := range lines {
		y := 2 + i
		if y >= height-1 {
			break
		}
		drawText(screen, 1, y, width-1, line, bodyStyle)
	}

	if height > 2 {
		drawText(screen, 1, height-1, width-1, "Press any key to close", hintStyle)
	}
	screen.Show()
}

// drawText writes s from column x on row y, stopping before column limit.
// It returns the column after the last cell written.
func drawText(screen tcell.Screen, x, y, limit int, s string, style tcell.Style) int {
	state := -1
	for s != "" {
		var (
			cluster string
			w       int
		)
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if w == 0 {
			continue
		}
		if x+w > limit {
			break
		}
		runes := []rune(cluster)
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

// Run renders page on screen and waits for a key press, a resize
// re-renders it. Run returns when a key is pressed, ctx is done or the
// screen is finalized. The caller owns screen initialization.
func Run(ctx context.Context, screen tcell.Screen, page Page) error {
	body := ""
	if page.Render != nil {
		var err error
		body, err = page.Render(ctx)
		if err != nil {
			return err
		}
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = screen.PostEvent(tcell.NewEventInterrupt(nil)) // best-effort; queue may be full
		case <-done:
		}
	}()

	Render(screen, page.Title, body)
	for {
		switch screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			screen.Sync()
			Render(screen, page.Title, body)
		case *tcell.EventKey:
			return nil
		case *tcell.EventInterrupt:
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
}
