// Package service turns fetch outcomes into cached results, rendered
// frames and notifications.
package service

import (
	"context"
	"log/slog"

	"github.com/mmcdole/datapass/internal/animator"
	"github.com/mmcdole/datapass/internal/cache"
	"github.com/mmcdole/datapass/internal/carrier"
	"github.com/mmcdole/datapass/internal/domain"
)

// resolver looks up the supplier for a carrier id (consumer-defined interface)
type resolver interface {
	Resolve(id string) carrier.Supplier
}

// UpdateService runs one widget refresh end to end
type UpdateService struct {
	resolver resolver
	cache    *cache.ResultCache
	animator *animator.Animator
	renderer domain.Renderer
	notifier domain.Notifier
	probe    domain.ConnectivityProbe
	operator func() string
	logger   *slog.Logger
}

// NewUpdateService creates a new update service. operator returns the
// network operator name reported by the host, "" when there is none.
func NewUpdateService(
	resolver resolver,
	results *cache.ResultCache,
	anim *animator.Animator,
	renderer domain.Renderer,
	notifier domain.Notifier,
	probe domain.ConnectivityProbe,
	operator func() string,
	logger *slog.Logger,
) *UpdateService {
	if logger == nil {
		logger = slog.Default()
	}
	if operator == nil {
		operator = func() string { return "" }
	}
	return &UpdateService{
		resolver: resolver,
		cache:    results,
		animator: anim,
		renderer: renderer,
		notifier: notifier,
		probe:    probe,
		operator: operator,
		logger:   logger,
	}
}

// Refresh fetches inst's carrier page and hands the result to the
// surface. With an animated mode the final frame is delivered by the
// animator after Refresh returns.
func (s *UpdateService) Refresh(ctx context.Context, inst domain.WidgetInstance, mode domain.UpdateMode) domain.FetchOutcome {
	var an *animator.Animation
	if mode.Animated() {
		an = s.animator.Start(inst.ID, s.cache.Percentage(inst.ID))
	} else {
		s.animator.Cancel(inst.ID)
	}

	outcome := s.resolver.Resolve(inst.CarrierID).Fetch(ctx)
	if outcome.Kind == domain.OutcomeError {
		s.logger.Warn("refresh failed", "widget", inst.ID, "carrier", inst.CarrierID, "error", outcome.Err)
	}

	frame, note := s.Complete(inst, outcome, s.probe.Current())
	if mode.Notifies() && note != nil {
		s.notifier.Notify(ctx, *note)
	}

	if an != nil {
		an.Finish(frame)
	} else {
		frame.ClickEnabled = true
		s.renderer.Render(frame)
	}
	return outcome
}

// Complete maps an outcome to the settled frame and the notification
// it would raise. Success and Wasted outcomes are written to the result cache.
func (s *UpdateService) Complete(inst domain.WidgetInstance, outcome domain.FetchOutcome, conn domain.ConnectivityType) (domain.Frame, *domain.Notification) {
	frame := domain.Frame{WidgetID: inst.ID, Color: domain.ColorGray}
	note := func(kind domain.NotificationKind, msg string) *domain.Notification {
		return &domain.Notification{WidgetID: inst.ID, Kind: kind, Message: msg}
	}

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		snap := outcome.Snapshot
		if err := s.cache.Save(inst.ID, snap); err != nil {
			s.logger.Error("failed to cache result", "widget", inst.ID, "error", err)
		}
		frame.Progress = snap.WastedPercentage
		frame.PrimaryText = snap.Proportion()
		frame.SecondaryText = string(snap.AvailableUnit)
		frame.TimestampText = snap.LastUpdateText()
		frame.HintText = snap.Hint
		frame.Color = domain.ColorBlue
		return frame, note(domain.NotifySuccess, msgSuccess)

	case domain.OutcomeWasted:
		if err := s.cache.Put(inst.ID, cache.Entry{Percentage: 100, Hint: HintVolumeUsedUp}); err != nil {
			s.logger.Error("failed to cache result", "widget", inst.ID, "error", err)
		}
		frame.Progress = 100
		frame.HintText = HintVolumeUsedUp
		frame.Color = domain.ColorOrange
		return frame, note(domain.NotifyVolumeUsedUp, msgVolumeUsedUp)

	case domain.OutcomeError:
		if e, ok := s.cache.Load(inst.ID); ok {
			frame = CachedFrame(inst.ID, e)
			frame.Color = domain.ColorGray
			frame.ClickEnabled = false
		} else {
			frame.PrimaryText = NoDataText
			frame.HintText = failureHint(conn)
		}
		return frame, failureNote(inst.ID, conn)

	case domain.OutcomeCarrierUnavailable:
		frame.HintText = HintCarrierUnsupported
		return frame, note(domain.NotifyCarrierUnsupported, msgCarrierUnsupported)

	case domain.OutcomeCarrierNotSelected:
		if s.operator() == "" {
			frame.HintText = HintCarrierUnsupported
			return frame, note(domain.NotifyFailNoConnection, msgFailNoConnection)
		}
		frame.HintText = HintChooseCarrier
		return frame, note(domain.NotifyCarrierNotSelected, msgCarrierNotSelected)
	}
	return frame, nil
}

// CachedFrame draws a stored reading as a settled frame
func CachedFrame(widgetID int, e cache.Entry) domain.Frame {
	return domain.Frame{
		WidgetID:      widgetID,
		Progress:      max(e.Percentage, 0),
		PrimaryText:   e.Proportion,
		SecondaryText: e.Unit,
		TimestampText: e.LastUpdate,
		HintText:      e.Hint,
		Color:         domain.ColorBlue,
		ClickEnabled:  true,
	}
}

func failureHint(conn domain.ConnectivityType) string {
	switch conn {
	case domain.ConnectivityWiFi:
		return HintTurnOffWiFi
	case domain.ConnectivityNone:
		return HintTurnOnMobileData
	default:
		return HintUpdateFailed
	}
}

func failureNote(widgetID int, conn domain.ConnectivityType) *domain.Notification {
	switch conn {
	case domain.ConnectivityWiFi:
		return &domain.Notification{WidgetID: widgetID, Kind: domain.NotifyFailWiFi, Message: msgFailWiFi}
	case domain.ConnectivityCellular:
		return &domain.Notification{WidgetID: widgetID, Kind: domain.NotifyFail, Message: msgFail}
	case domain.ConnectivityNone:
		return &domain.Notification{WidgetID: widgetID, Kind: domain.NotifyFailNoConnection, Message: msgFailNoConnection}
	default:
		return nil
	}
}
