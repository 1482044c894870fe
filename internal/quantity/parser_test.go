package quantity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/quantity"
)

func TestParse_GBOfGB(t *testing.T) {
	out := quantity.Parse("Verbraucht 2,50 GB von 5,00 GB Inklusivvolumen")
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v, want success (err %v)", out.Kind, out.Err)
	}
	if out.Snapshot.WastedPercentage != 50 {
		t.Errorf("percentage = %d, want 50", out.Snapshot.WastedPercentage)
	}
	if out.Snapshot.AvailableUnit != domain.UnitGB {
		t.Errorf("unit = %q, want GB", out.Snapshot.AvailableUnit)
	}
}

func TestParse_MBOfGB(t *testing.T) {
	out := quantity.Parse("150 MB von 2 GB verbraucht")
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v, want success (err %v)", out.Kind, out.Err)
	}
	used := 150.0 / 1024
	want := int(used / 2 * 100)
	if out.Snapshot.WastedPercentage != want {
		t.Errorf("percentage = %d, want %d", out.Snapshot.WastedPercentage, want)
	}
	if out.Snapshot.UsedUnit != domain.UnitGB {
		t.Errorf("used unit = %q, want normalized GB", out.Snapshot.UsedUnit)
	}
}

func TestParse_Exhausted(t *testing.T) {
	out := quantity.Parse("Leider: Ihr " + quantity.VolumeUsedUpMarker + ". 5,00 GB von 5,00 GB")
	if out.Kind != domain.OutcomeWasted {
		t.Fatalf("kind = %v, want wasted", out.Kind)
	}
	if out.Snapshot != (domain.UsageSnapshot{}) {
		t.Errorf("wasted outcome carries snapshot %+v", out.Snapshot)
	}
}

func TestParse_KBCountsAsZero(t *testing.T) {
	out := quantity.Parse("512 kB von 1 GB")
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v", out.Kind)
	}
	if out.Snapshot.UsedAmount != 0 || out.Snapshot.WastedPercentage != 0 {
		t.Errorf("got used %v pct %d, want 0/0", out.Snapshot.UsedAmount, out.Snapshot.WastedPercentage)
	}
	if out.Snapshot.UsedUnit != domain.UnitGB {
		t.Errorf("used unit = %q, want GB", out.Snapshot.UsedUnit)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"one amount", "Sie haben 2,5 GB verbraucht"},
		{"no units", "2,5 von 5,0"},
		{"zero available", "1 MB von 0 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := quantity.Parse(tt.raw)
			if out.Kind != domain.OutcomeError {
				t.Fatalf("kind = %v, want error", out.Kind)
			}
			if !errors.Is(out.Err, domain.ErrParse) {
				t.Errorf("err = %v, want ErrParse", out.Err)
			}
		})
	}
}

func TestParse_PercentageBounds(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"0 MB von 500 MB", 0},
		{"500 MB von 500 MB", 100},
		{"6,00 GB von 5,00 GB", 100},
		{"1.023,5 MB von 2.048 MB", 49},
		{"999 MB von 1 GB", 97},
		{"1.536 MB von 20.480 MB", 7},
		{"1024 MB von 4096 MB", 25},
		{"1.048.576 kB von 2 GB", 0},
	}
	for _, tt := range tests {
		out := quantity.Parse(tt.raw)
		if out.Kind != domain.OutcomeSuccess {
			t.Errorf("%q: kind = %v (err %v)", tt.raw, out.Kind, out.Err)
			continue
		}
		p := out.Snapshot.WastedPercentage
		if p < 0 || p > 100 {
			t.Errorf("%q: percentage %d out of range", tt.raw, p)
		}
		if p != tt.want {
			t.Errorf("%q: percentage = %d, want %d", tt.raw, p, tt.want)
		}
	}
}

func TestParse_ThousandsGroups(t *testing.T) {
	out := quantity.Parse("1.536 MB von 20.480 MB")
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v (err %v)", out.Kind, out.Err)
	}
	if out.Snapshot.UsedAmount != 1536 || out.Snapshot.AvailableAmount != 20480 {
		t.Errorf("amounts = %v/%v, want 1536/20480", out.Snapshot.UsedAmount, out.Snapshot.AvailableAmount)
	}
}

func TestParse_Idempotent(t *testing.T) {
	raw := "1.024,5 MB von 3 GB, Stand 17.03.2024 um 09:41 Uhr"
	a := quantity.Parse(raw)
	b := quantity.Parse(raw)
	if a.Kind != b.Kind || a.Snapshot != b.Snapshot {
		t.Errorf("parses differ: %+v vs %+v", a, b)
	}
}

func TestParse_Timestamp(t *testing.T) {
	raw := "Stand: 01.02.2024 um 08:00 ... 2,5 GB von 5 GB ... aktualisiert 17.03.2024 um 09:41"
	out := quantity.Parse(raw)
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v", out.Kind)
	}
	want := time.Date(2024, time.March, 17, 9, 41, 0, 0, time.UTC)
	if !out.Snapshot.LastUpdate.Equal(want) {
		t.Errorf("last update = %v, want %v", out.Snapshot.LastUpdate, want)
	}
	if got := out.Snapshot.LastUpdateText(); got != "17.03. - 09:41" {
		t.Errorf("display = %q", got)
	}
}

func TestParse_NoTimestamp(t *testing.T) {
	out := quantity.Parse("2,5 GB von 5 GB")
	if !out.Snapshot.LastUpdate.IsZero() || out.Snapshot.LastUpdateText() != "" {
		t.Errorf("expected empty timestamp, got %v", out.Snapshot.LastUpdate)
	}
}

func TestParser_CustomMarker(t *testing.T) {
	p := quantity.Parser{WastedMarker: "volume exhausted"}
	if out := p.Parse("your volume exhausted"); out.Kind != domain.OutcomeWasted {
		t.Errorf("kind = %v, want wasted", out.Kind)
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2,50", 2.5},
		{"150", 150},
		{"1.024", 1024},
		{"1.024,75", 1024.75},
	}
	for _, tt := range tests {
		got, err := quantity.ParseAmount(tt.in)
		if err != nil {
			t.Errorf("%q: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%q = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := quantity.ParseAmount("abc"); !errors.Is(err, domain.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		used      float64
		usedUnit  domain.Unit
		availUnit domain.Unit
		want      float64
	}{
		{512, domain.UnitKB, domain.UnitMB, 0},
		{512, domain.UnitMB, domain.UnitGB, 0.5},
		{3, domain.UnitGB, domain.UnitGB, 3},
		{300, domain.UnitMB, domain.UnitMB, 300},
		{1, domain.UnitGB, domain.UnitMB, 1},
	}
	for _, tt := range tests {
		got, unit := quantity.Normalize(tt.used, tt.usedUnit, tt.availUnit)
		if got != tt.want || unit != tt.availUnit {
			t.Errorf("Normalize(%v %s -> %s) = %v %s, want %v %s", tt.used, tt.usedUnit, tt.availUnit, got, unit, tt.want, tt.availUnit)
		}
	}
}
