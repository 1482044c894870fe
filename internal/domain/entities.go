package domain

import (
	"fmt"
	"time"
)

// Unit is a data-volume unit as printed on the carrier page
type Unit string

const (
	UnitKB Unit = "kB"
	UnitMB Unit = "MB"
	UnitGB Unit = "GB"
)

// ParseUnit maps the literal page token to a Unit
func ParseUnit(s string) (Unit, bool) {
	switch Unit(s) {
	case UnitKB, UnitMB, UnitGB:
		return Unit(s), true
	default:
		return "", false
	}
}

// UsageSnapshot is one successful reading of the carrier page.
// Used amounts are already normalized to the available unit.
type UsageSnapshot struct {
	UsedAmount       float64
	UsedUnit         Unit
	AvailableAmount  float64
	AvailableUnit    Unit
	WastedPercentage int       // 0..100, truncated
	LastUpdate       time.Time // zero when the page carried no timestamp
	Hint             string
}

// LastUpdateDisplayLayout is the short form shown under the gauge
const LastUpdateDisplayLayout = "02.01. - 15:04"

// LastUpdateText returns the display timestamp or "" if unknown
func (s UsageSnapshot) LastUpdateText() string {
	if s.LastUpdate.IsZero() {
		return ""
	}
	return s.LastUpdate.Format(LastUpdateDisplayLayout)
}

// Proportion renders "used/available" in the carrier's locale
func (s UsageSnapshot) Proportion() string {
	return fmt.Sprintf("%s/%s", FormatAmount(s.UsedAmount, s.AvailableUnit), FormatAmount(s.AvailableAmount, s.AvailableUnit))
}

// OutcomeKind tags the variant held by a FetchOutcome
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeWasted
	OutcomeError
	OutcomeCarrierUnavailable
	OutcomeCarrierNotSelected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeWasted:
		return "wasted"
	case OutcomeError:
		return "error"
	case OutcomeCarrierUnavailable:
		return "carrier_unavailable"
	case OutcomeCarrierNotSelected:
		return "carrier_not_selected"
	default:
		return "unknown"
	}
}

// FetchOutcome is the result of one refresh attempt. Snapshot is set only
// for OutcomeSuccess; Err only for OutcomeError.
type FetchOutcome struct {
	Kind     OutcomeKind
	Snapshot UsageSnapshot
	Err      error
}

func Success(s UsageSnapshot) FetchOutcome { return FetchOutcome{Kind: OutcomeSuccess, Snapshot: s} }
func Wasted() FetchOutcome { return FetchOutcome{Kind: OutcomeWasted} }
func Failed(err error) FetchOutcome { return FetchOutcome{Kind: OutcomeError, Err: err} }
func CarrierUnavailable() FetchOutcome { return FetchOutcome{Kind: OutcomeCarrierUnavailable} }
func CarrierNotSelected() FetchOutcome { return FetchOutcome{Kind: OutcomeCarrierNotSelected} }

// CarrierNotSelectedID is stored for widgets whose carrier was never chosen
const CarrierNotSelectedID = "CARRIER_NOT_SELECTED"

// WidgetInstance is one placed gauge. CarrierID is sticky until reassigned.
type WidgetInstance struct {
	ID                   int
	CarrierID            string
	LastRefreshTimestamp time.Time // zero = never refreshed
}

// UpdateMode controls animation and user notifications for one refresh
type UpdateMode int

const (
	UpdateRegular     UpdateMode = iota // animation + notifications
	UpdateSilent                        // animation only
	UpdateUltraSilent                   // final render only
)

func (m UpdateMode) String() string {
	switch m {
	case UpdateRegular:
		return "regular"
	case UpdateSilent:
		return "silent"
	case UpdateUltraSilent:
		return "ultra_silent"
	default:
		return "unknown"
	}
}

// Animated reports whether the refresh shows the loading animation
func (m UpdateMode) Animated() bool { return m != UpdateUltraSilent }

// Notifies reports whether the refresh raises user notifications
func (m UpdateMode) Notifies() bool { return m == UpdateRegular }

// ConnectivityType is the host's current active network class
type ConnectivityType int

const (
	ConnectivityNone ConnectivityType = iota
	ConnectivityCellular
	ConnectivityWiFi
	ConnectivityOther
)

func (c ConnectivityType) String() string {
	switch c {
	case ConnectivityCellular:
		return "cellular"
	case ConnectivityWiFi:
		return "wifi"
	case ConnectivityOther:
		return "other"
	default:
		return "none"
	}
}

// ColorTag is the semantic gauge color; surfaces map it to real colors
type ColorTag int

const (
	ColorGray ColorTag = iota
	ColorBlue
	ColorOrange
)

func (c ColorTag) String() string {
	switch c {
	case ColorBlue:
		return "blue"
	case ColorOrange:
		return "orange"
	default:
		return "gray"
	}
}

// Frame is one render of a widget surface
type Frame struct {
	WidgetID      int
	Progress      int // 0..100
	PrimaryText   string
	SecondaryText string
	TimestampText string
	HintText      string
	Color         ColorTag
	ClickEnabled  bool
}
