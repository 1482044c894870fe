package carrier_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/domain"
	"github.com/mmcdole/datapass/internal/log"
	"github.com/mmcdole/datapass/internal/quantity"
)

type fakeFetcher struct {
	mu    sync.Mutex
	body  string
	err   error
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	return f.body, f.err
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

const telekomPage = `<html><body>
<p>Telekom Deutschland GmbH</p>
<p>Stand: 17.03.2024 um 09:41 Uhr</p>
<div class="volume fit-text-to-container">2,50 GB von 5,00 GB</div>
<p>Tarif mit 10 GB Tagesflat</p>
</body></html>`

const congstarPage = `<html><body>
<div class="volume fit-text-to-container">150 MB von 2 GB</div>
</body></html>`

func TestResolve_ExactDispatch(t *testing.T) {
	r := carrier.NewResolver(&fakeFetcher{}, log.NullLogger())
	tests := []struct {
		id   string
		real bool
	}{
		{carrier.TelekomID, true},
		{carrier.CongstarID, true},
		{"Telekom", false},
		{"CONGSTAR", false},
		{"vodafone", false},
		{domain.CarrierNotSelectedID, false},
	}
	for _, tt := range tests {
		s := r.Resolve(tt.id)
		if s.IsRealDataSupplier() != tt.real {
			t.Errorf("Resolve(%q).IsRealDataSupplier() = %v, want %v", tt.id, s.IsRealDataSupplier(), tt.real)
		}
	}
}

func TestResolve_UnknownDoesNotFetch(t *testing.T) {
	f := &fakeFetcher{body: telekomPage}
	r := carrier.NewResolver(f, log.NullLogger())

	out := r.Resolve("vodafone").Fetch(context.Background())
	if out.Kind != domain.OutcomeCarrierUnavailable {
		t.Errorf("kind = %v, want carrier unavailable", out.Kind)
	}
	out = r.Resolve(domain.CarrierNotSelectedID).Fetch(context.Background())
	if out.Kind != domain.OutcomeCarrierNotSelected {
		t.Errorf("kind = %v, want carrier not selected", out.Kind)
	}
	if f.count() != 0 {
		t.Errorf("placeholders made %d network calls", f.count())
	}
}

func TestTelekom_ParsesRegion(t *testing.T) {
	f := &fakeFetcher{body: telekomPage}
	out := carrier.NewResolver(f, log.NullLogger()).Resolve(carrier.TelekomID).Fetch(context.Background())
	if out.Kind != domain.OutcomeSuccess {
		t.Fatalf("kind = %v, err %v", out.Kind, out.Err)
	}
	if out.Snapshot.WastedPercentage != 50 {
		t.Errorf("percentage = %d, want 50", out.Snapshot.WastedPercentage)
	}
	if out.Snapshot.LastUpdateText() != "17.03. - 09:41" {
		t.Errorf("timestamp = %q", out.Snapshot.LastUpdateText())
	}
	if len(f.calls) != 1 || f.calls[0] != "https://datapass.de/" {
		t.Errorf("calls = %v", f.calls)
	}
}

func TestTelekom_RejectsForeignPage(t *testing.T) {
	f := &fakeFetcher{body: congstarPage}
	out := carrier.NewResolver(f, log.NullLogger()).Resolve(carrier.TelekomID).Fetch(context.Background())
	if out.Kind != domain.OutcomeError {
		t.Errorf("kind = %v, want error", out.Kind)
	}
}

func TestCongstar(t *testing.T) {
	r := carrier.NewResolver(&fakeFetcher{body: congstarPage}, log.NullLogger())
	out := r.Resolve(carrier.CongstarID).Fetch(context.Background())
	if out.Kind != domain.OutcomeSuccess || out.Snapshot.WastedPercentage != 7 {
		t.Errorf("outcome = %+v", out)
	}

	r = carrier.NewResolver(&fakeFetcher{body: telekomPage}, log.NullLogger())
	if out := r.Resolve(carrier.CongstarID).Fetch(context.Background()); out.Kind != domain.OutcomeError {
		t.Errorf("congstar accepted a Telekom page: %v", out.Kind)
	}
}

func TestSupplier_Wasted(t *testing.T) {
	body := "<p>Telekom Deutschland</p><p>Ihr " + quantity.VolumeUsedUpMarker + "</p>"
	out := carrier.NewResolver(&fakeFetcher{body: body}, log.NullLogger()).Resolve(carrier.TelekomID).Fetch(context.Background())
	if out.Kind != domain.OutcomeWasted {
		t.Errorf("kind = %v, want wasted", out.Kind)
	}
}

func TestSupplier_WastedBeforeProviderCheck(t *testing.T) {
	body := "<p>Ihr " + quantity.VolumeUsedUpMarker + "</p><footer>Telekom Deutschland GmbH</footer>"
	out := carrier.NewResolver(&fakeFetcher{body: body}, log.NullLogger()).Resolve(carrier.CongstarID).Fetch(context.Background())
	if out.Kind != domain.OutcomeWasted {
		t.Errorf("congstar kind = %v, want wasted", out.Kind)
	}

	body = "<p>Ihr " + quantity.VolumeUsedUpMarker + "</p>"
	out = carrier.NewResolver(&fakeFetcher{body: body}, log.NullLogger()).Resolve(carrier.TelekomID).Fetch(context.Background())
	if out.Kind != domain.OutcomeWasted {
		t.Errorf("telekom kind = %v, want wasted", out.Kind)
	}
}

func TestSupplier_NetworkError(t *testing.T) {
	f := &fakeFetcher{err: domain.ErrNetwork}
	out := carrier.NewResolver(f, log.NullLogger()).Resolve(carrier.CongstarID).Fetch(context.Background())
	if out.Kind != domain.OutcomeError || !errors.Is(out.Err, domain.ErrNetwork) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestSupplier_RegionFallback(t *testing.T) {
	body := "<p>Verbraucht: 300 MB von 600 MB</p>"
	out := carrier.NewResolver(&fakeFetcher{body: body}, log.NullLogger()).Resolve(carrier.CongstarID).Fetch(context.Background())
	if out.Kind != domain.OutcomeSuccess || out.Snapshot.WastedPercentage != 50 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestDetect(t *testing.T) {
	r := carrier.NewResolver(&fakeFetcher{}, log.NullLogger())
	tests := map[string]string{
		"":                    domain.CarrierNotSelectedID,
		"   ":                 domain.CarrierNotSelectedID,
		"Telekom.de":          carrier.TelekomID,
		"Telekom Deutschland": carrier.TelekomID,
		"T-Mobile D":          carrier.TelekomID,
		"congstar":            carrier.CongstarID,
		"Congstar":            carrier.CongstarID,
		"Vodafone.de":         "Vodafone.de",
	}
	for in, want := range tests {
		if got := r.Detect(in); got != want {
			t.Errorf("Detect(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSuggest(t *testing.T) {
	r := carrier.NewResolver(&fakeFetcher{}, log.NullLogger())
	if got := r.Suggest(""); len(got) != 2 {
		t.Errorf("empty query = %d suppliers, want 2", len(got))
	}
	got := r.Suggest("cgs")
	if len(got) != 1 || got[0].ID() != carrier.CongstarID {
		t.Errorf("Suggest(cgs) = %v", got)
	}
	if got := r.Suggest("xyz"); len(got) != 0 {
		t.Errorf("Suggest(xyz) = %v", got)
	}
}
