package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/driveline/internal/geo"
	"github.com/san-kum/driveline/internal/odom"
	"github.com/san-kum/driveline/internal/simbot"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

const (
	fieldW = 61
	fieldH = 21
	// scale is field units per canvas cell.
	scale = 4.0
)

// Live is a terminal view of the running controller: estimated pose,
// ground truth, wheel voltages and a trail across the field.
type Live struct {
	est   *odom.Estimator
	robot *simbot.Robot

	trail []geo.Point
	start time.Time

	width  int
	height int
}

func NewLive(est *odom.Estimator, robot *simbot.Robot) *Live {
	return &Live{
		est:   est,
		robot: robot,
		trail: make([]geo.Point, 0, 200),
		start: time.Now(),
		width: 80,
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(50*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (l *Live) Init() tea.Cmd { return tick() }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		}
	case tea.WindowSizeMsg:
		l.width = msg.Width
		l.height = msg.Height
	case tickMsg:
		pose := l.est.Pose()
		l.trail = append(l.trail, pose.Point())
		if len(l.trail) > 200 {
			l.trail = l.trail[1:]
		}
		return l, tick()
	}
	return l, nil
}

func (l *Live) View() string {
	pose := l.est.Pose()
	truth := l.robot.Pose()
	lv, rv := l.robot.Voltages()

	canvas := make([][]rune, fieldH)
	for i := range canvas {
		canvas[i] = make([]rune, fieldW)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for _, p := range l.trail {
		set(canvas, p, '.')
	}
	set(canvas, pose.Point(), robotGlyph(pose.Theta))

	var b strings.Builder
	b.WriteString(cyan.Render("driveline live") + dim.Render(fmt.Sprintf("  t=%.1fs", time.Since(l.start).Seconds())) + "\n")

	border := dim.Render("+" + strings.Repeat("-", fieldW) + "+")
	b.WriteString(border + "\n")
	for _, row := range canvas {
		b.WriteString(dim.Render("|") + string(row) + dim.Render("|") + "\n")
	}
	b.WriteString(border + "\n")

	b.WriteString(white.Render(fmt.Sprintf("  est   (%7.2f, %7.2f, %7.1f°)", pose.X, pose.Y, geo.ToDeg(pose.Theta))) + "\n")
	b.WriteString(dim.Render(fmt.Sprintf("  truth (%7.2f, %7.2f, %7.1f°)", truth.X, truth.Y, geo.ToDeg(truth.Theta))) + "\n")
	b.WriteString(fmt.Sprintf("  %s %s\n",
		green.Render(fmt.Sprintf("L %6.0f mV", lv)),
		yellow.Render(fmt.Sprintf("R %6.0f mV", rv))))
	b.WriteString(dim.Render("  q to quit") + "\n")
	return b.String()
}

func set(canvas [][]rune, p geo.Point, c rune) {
	x := fieldW/2 + int(math.Round(p.X/scale))
	y := fieldH/2 - int(math.Round(p.Y/scale))
	if x >= 0 && x < fieldW && y >= 0 && y < fieldH {
		canvas[y][x] = c
	}
}

func robotGlyph(theta float64) rune {
	deg := math.Mod(geo.ToDeg(theta)+360+22.5, 360)
	glyphs := []rune{'>', '/', '^', '\\', '<', '/', 'v', '\\'}
	return glyphs[int(deg/45)%8]
}
