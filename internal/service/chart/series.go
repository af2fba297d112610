package chart

import (
	"strconv"
	"strings"

	"github.com/wonny/stockpulse/internal/domain/market"
)

// Line colors
const (
	ColorUp   = "#22c55e"
	ColorDown = "#ef4444"
)

// Series represents a chart-ready view of a bar sequence
// Y values live in [0, 100], 0 at the top of the plot
type Series struct {
	Empty    bool
	Bars     []market.Bar
	Min      float64
	Max      float64
	Positive bool
	Color    string
	Width    int    // viewBox width, one unit per bar
	LinePath string // SVG path of the close line
	AreaPath string // LinePath closed down to y=100
	Latest   market.Bar
}

// Build projects bars into plot coordinates
func Build(bars []market.Bar) Series {
	if len(bars) == 0 {
		return Series{Empty: true}
	}

	lo, hi := bars[0].Close, bars[0].Close
	for _, b := range bars[1:] {
		if b.Close < lo {
			lo = b.Close
		}
		if b.Close > hi {
			hi = b.Close
		}
	}

	first, last := bars[0], bars[len(bars)-1]
	s := Series{
		Bars:     bars,
		Min:      lo,
		Max:      hi,
		Positive: last.Close >= first.Close,
		Width:    len(bars),
		Latest:   last,
	}

	s.Color = ColorDown
	if s.Positive {
		s.Color = ColorUp
	}

	s.LinePath = s.path()
	s.AreaPath = s.LinePath + " L " + strconv.Itoa(len(bars)-1) + " 100 L 0 100 Z"

	return s
}

// Y maps a close price to the vertical plot coordinate
// A flat series has zero range and maps every close to 100
func (s Series) Y(close float64) float64 {
	rng := s.Max - s.Min
	if rng == 0 {
		rng = 1
	}
	return 100 - (close-s.Min)/rng*100
}

// Points returns the number of bars plotted
func (s Series) Points() int {
	return len(s.Bars)
}

func (s Series) path() string {
	var sb strings.Builder
	sb.WriteString("M 0 ")
	sb.WriteString(formatCoord(s.Y(s.Bars[0].Close)))
	for i, b := range s.Bars {
		sb.WriteString(" L ")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteByte(' ')
		sb.WriteString(formatCoord(s.Y(b.Close)))
	}
	return sb.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
