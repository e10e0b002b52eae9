package entity

// Route はリクエストの送信先バックエンドです。
type Route string

const (
	RouteDefault Route = "default"
	RouteCustom  Route = "custom"
	RouteText    Route = "text"
)
