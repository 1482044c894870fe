package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/tui/styles"
)

// CardWidth is the outer width of a widget card including its border
const CardWidth = 30

const cardInnerWidth = CardWidth - 4 // border + padding

// Card is the terminal rendition of one home-screen widget
type Card struct {
	Widget domain.WidgetInstance
	Frame  domain.Frame
	Drawn  bool // false until the first frame arrives
}

// Clickable reports whether a tap on the card should start a refresh
func (c Card) Clickable() bool {
	return !c.Drawn || c.Frame.ClickEnabled
}

// View renders the card. now drives the relative refresh time.
func (c Card) View(selected bool, now time.Time) string {
	title := fmt.Sprintf("#%d", c.Widget.ID)
	if c.Widget.CarrierID != "" {
		title += " · " + c.Widget.CarrierID
	}

	bar := progress.New(
		progress.WithSolidFill(string(styles.GaugeColor(c.Frame.Color))),
		progress.WithoutPercentage(),
		progress.WithWidth(cardInnerWidth),
	)

	var usage string
	switch {
	case !c.Drawn:
		usage = styles.DimStyle.Render("waiting for first update")
	case c.Frame.PrimaryText != "" || c.Frame.SecondaryText != "":
		usage = styles.TitleStyle.Render(c.Frame.PrimaryText) + " " + styles.SubtitleStyle.Render(c.Frame.SecondaryText)
	default:
		usage = styles.DimStyle.Render(fmt.Sprintf("%d%%", c.Frame.Progress))
	}

	lines := []string{
		styles.TitleStyle.Render(styles.Truncate(title, cardInnerWidth)),
		bar.ViewAs(float64(c.Frame.Progress) / 100),
		usage,
	}
	if c.Frame.TimestampText != "" {
		lines = append(lines, styles.SubtitleStyle.Render(c.Frame.TimestampText))
	}
	if c.Frame.HintText != "" {
		lines = append(lines, styles.AccentStyle.Render(styles.Truncate(c.Frame.HintText, cardInnerWidth)))
	}
	lines = append(lines, styles.DimStyle.Render(lastRefresh(c.Widget.LastRefreshTimestamp, now)))
	if c.Drawn && !c.Frame.ClickEnabled {
		lines = append(lines, styles.SpinnerStyle.Render("updating…"))
	}

	style := styles.CardStyle
	if selected {
		style = styles.CardSelectedStyle
	}
	return style.Width(CardWidth - 2).Render(strings.Join(lines, "\n"))
}

func lastRefresh(t, now time.Time) string {
	if t.IsZero() {
		return "never refreshed"
	}
	return "refreshed " + humanize.RelTime(t, now, "ago", "from now")
}

// JoinCards lays cards out in rows that fit width
func JoinCards(cards []string, width int) string {
	perRow := max(width/CardWidth, 1)
	var rows []string
	for i := 0; i < len(cards); i += perRow {
		end := min(i+perRow, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
