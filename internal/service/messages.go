package service

// User-facing hint and notification texts
const (
	HintVolumeUsedUp       = "Data volume used up"
	HintCarrierUnsupported = "Unsupported carrier"
	HintChooseCarrier      = "Choose your carrier"
	HintTurnOffWiFi        = "Turn off WiFi to update"
	HintUpdateFailed       = "Update failed, tap to retry"
	HintTurnOnMobileData   = "Turn on mobile data to update"

	NoDataText = "No data yet"

	msgSuccess            = "Data usage updated"
	msgVolumeUsedUp       = "Your data volume is used up"
	msgFailWiFi           = "Update failed: the usage page is only reachable over mobile data"
	msgFail               = "Update failed"
	msgFailNoConnection   = "Update failed: no connection"
	msgCarrierUnsupported = "Your carrier is not supported"
	msgCarrierNotSelected = "Please choose your carrier"
)
