package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"blockfall/tetris"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	resetPos    = "\033[H"        // Reset cursor position to 0,0
	clearScreen = "\033[2J\033[H" // Clear the screen and reset the cursor

	emptyCell = "  "
	lobbyRow  = 10 // first terminal row of the lobby box
	lobbyCol  = 2
	lobbyLen  = 38 // inner width of the lobby box
)

//go:embed "layout.tmpl"
var layout string

var colorMap = map[tetris.Colour]string{
	tetris.Cyan:   Cyan,
	tetris.Blue:   Blue,
	tetris.Orange: Orange,
	tetris.Yellow: Yellow,
	tetris.Green:  Green,
	tetris.Red:    Red,
	tetris.Purple: Magenta,
}

type templateData struct {
	Local   *tetris.Snapshot
	Name    string
	NoColor bool
}

// message is the text shown inside the lobby box.
type message [3]string

func defaultLobby(online bool) message {
	if online {
		return message{"Welcome to Blockfall", "", "(p)lay   (o)nline   (q)uit"}
	}
	return message{"Welcome to Blockfall", "", "(p)lay   (q)uit"}
}

func gameOver(score int) message {
	return message{"Game Over :)", fmt.Sprintf("score %d", score), "(p)lay again   (q)uit"}
}

func connecting() message {
	return message{"", "connecting to server...", ""}
}

func errorMessage() message {
	return message{"something went wrong :(", "", "(p)lay   (q)uit"}
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	mu       sync.Mutex
	*templateData
}

func newRender(w io.Writer, l *slog.Logger, name string, noColor bool) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:       w,
		logger:       l,
		template:     tmp,
		templateData: &templateData{Name: name, NoColor: noColor},
	}, nil
}

func (r *render) game(s *tetris.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.templateData.Local == nil || s == nil || r.templateData.Local.Height != s.Height {
		fmt.Fprint(r.writer, clearScreen)
	}
	r.templateData.Local = s
	fmt.Fprint(r.writer, resetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// reset makes the next game() call start from a clear screen.
func (r *render) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Local = nil
}

func (r *render) lobby(m message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	edge := "+" + strings.Repeat("-", lobbyLen) + "+"
	lines := []string{edge}
	for _, text := range m {
		lines = append(lines, "|"+center(text, lobbyLen)+"|")
	}
	lines = append(lines, edge)
	for i, l := range lines {
		fmt.Fprintf(r.writer, "\033[%d;%dH%s", lobbyRow+i, lobbyCol, l)
	}
}

func center(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack":  stack,
		"border": border,
		"score":  score,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	l = strings.ReplaceAll(l, "Blockfall", "\033[1mBlockfall\033[0m")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func colorCell(c tetris.Colour, noColor bool) string {
	code, ok := colorMap[c]
	if !ok {
		return emptyCell
	}
	if noColor {
		return "[]"
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", code)
}

// stack renders the settled cells and the active piece, top row first.
func stack(t *templateData) [][]string {
	if t == nil || t.Local == nil {
		return nil
	}
	s := t.Local
	rendered := make([][]string, s.Height)
	for y := range s.Height {
		rendered[y] = make([]string, s.Width)
		for x := range s.Width {
			rendered[y][x] = colorCell(s.Stack[y][x], t.NoColor)
		}
	}

	// renders the current piece if exist
	if s.Piece != nil {
		for _, c := range s.Piece.Cells {
			if c.Y >= 0 && c.Y < s.Height && c.X >= 0 && c.X < s.Width {
				rendered[c.Y][c.X] = colorCell(s.Piece.Colour, t.NoColor)
			}
		}
	}
	return rendered
}

func border(t *templateData) string {
	if t == nil || t.Local == nil {
		return ""
	}
	return strings.Repeat("--", t.Local.Width)
}

func score(t *templateData) string {
	if t == nil || t.Local == nil {
		return ""
	}
	return fmt.Sprintf("Score: %-8d Lines: %d", t.Local.Score, t.Local.Lines)
}
