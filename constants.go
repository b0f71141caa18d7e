package main

// Session configuration constants
const (
	SessionCookieName = "session_id"
	AppName           = "luckycard"
)

// Route constants
const (
	RouteHome    = "/"
	RouteState   = "/state"
	RouteStart   = "/start"
	RouteSelect  = "/select"
	RouteClaim   = "/claim"
	RouteRestart = "/restart"
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)

// Ignored-trigger notices returned to the presentation layer
const (
	NoticeInvalidTransition = "Not available on this screen."
	NoticeInvalidCard       = "Pick one of the nine cards."
	NoticeMissingResult     = "No result to show."
	HeaderTriggerIgnored    = "X-Trigger-Ignored"
)
