// Package quantity extracts data-volume readings from carrier page text.
package quantity

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
)

// VolumeUsedUpMarker appears on the page once the plan is exhausted
const VolumeUsedUpMarker = "Datenvolumen ist aufgebraucht"

var (
	// number with "." thousands groups, optional separator (space or nbsp), unit
	amountPattern = regexp.MustCompile(`(\d+(?:\.\d{3})*(?:,\d{1,4})?)[ \x{00A0}]?(GB|MB|kB)`)

	// "17.03.2024 um 09:41"
	timestampPattern = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4}).{4}(\d{2}:\d{2})`)
)

const sourceTimestampLayout = "02.01.2006 15:04"

// Parser turns page text into a FetchOutcome. The zero value is usable.
type Parser struct {
	// WastedMarker overrides VolumeUsedUpMarker when set
	WastedMarker string
	// Location for page timestamps, UTC when nil
	Location *time.Location
}

// Parse is Parser{}.Parse
func Parse(raw string) domain.FetchOutcome {
	return Parser{}.Parse(raw)
}

// Parse scans raw for the used-up marker, then the first two amounts
// (used, available) and the last page timestamp. It never fetches.
func (p Parser) Parse(raw string) domain.FetchOutcome {
	marker := p.WastedMarker
	if marker == "" {
		marker = VolumeUsedUpMarker
	}
	if strings.Contains(raw, marker) {
		return domain.Wasted()
	}

	snap, err := p.Snapshot(raw, raw)
	if err != nil {
		return domain.Failed(err)
	}
	return domain.Success(snap)
}

// Snapshot reads amounts from amountText and the timestamp from dateText.
// Carriers that narrow the page to a region pass different texts.
func (p Parser) Snapshot(amountText, dateText string) (domain.UsageSnapshot, error) {
	matches := amountPattern.FindAllStringSubmatch(amountText, -1)
	if len(matches) < 2 {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: found %d amounts, need 2", domain.ErrParse, len(matches))
	}

	used, usedUnit, err := parseMatch(matches[0])
	if err != nil {
		return domain.UsageSnapshot{}, err
	}
	avail, availUnit, err := parseMatch(matches[1])
	if err != nil {
		return domain.UsageSnapshot{}, err
	}
	if avail <= 0 {
		return domain.UsageSnapshot{}, fmt.Errorf("%w: available amount is zero", domain.ErrParse)
	}

	used, usedUnit = Normalize(used, usedUnit, availUnit)

	snap := domain.UsageSnapshot{
		UsedAmount:       used,
		UsedUnit:         usedUnit,
		AvailableAmount:  avail,
		AvailableUnit:    availUnit,
		WastedPercentage: Percentage(used, avail),
	}

	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	if ts, ok := LastTimestamp(dateText, loc); ok {
		snap.LastUpdate = ts
	}
	return snap, nil
}

func parseMatch(m []string) (float64, domain.Unit, error) {
	v, err := ParseAmount(m[1])
	if err != nil {
		return 0, "", err
	}
	u, ok := domain.ParseUnit(m[2])
	if !ok {
		return 0, "", fmt.Errorf("%w: unknown unit %q", domain.ErrParse, m[2])
	}
	return v, u, nil
}

// ParseAmount reads a German-formatted number: "." groups thousands,
// "," separates decimals.
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad amount %q", domain.ErrParse, s)
	}
	return v, nil
}

// Normalize converts the used amount into the available unit.
// kB usage counts as nothing; MB against a GB plan is divided by 1024.
// Any other pairing is taken as already comparable.
func Normalize(used float64, usedUnit, availUnit domain.Unit) (float64, domain.Unit) {
	switch {
	case usedUnit == domain.UnitKB:
		return 0, availUnit
	case usedUnit == domain.UnitMB && availUnit == domain.UnitGB:
		return used / 1024, availUnit
	default:
		return used, availUnit
	}
}

// Percentage is truncated used/available in [0,100]
func Percentage(used, avail float64) int {
	if avail <= 0 {
		return 0
	}
	p := int(math.Floor(used / avail * 100))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}

// LastTimestamp returns the last "dd.MM.yyyy um HH:mm" on the page
func LastTimestamp(text string, loc *time.Location) (time.Time, bool) {
	var (
		last  time.Time
		found bool
	)
	for _, m := range timestampPattern.FindAllStringSubmatch(text, -1) {
		ts, err := time.ParseInLocation(sourceTimestampLayout, m[1]+" "+m[2], loc)
		if err != nil {
			continue
		}
		last, found = ts, true
	}
	return last, found
}
