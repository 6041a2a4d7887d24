// Package api implements the HTTP REST API and WebSocket server for
// SmartHouse Core.
//
// This package provides:
//   - read endpoints for the house report and per-device snapshots
//   - a toggle endpoint for smart sockets
//   - a WebSocket hub that pushes report and device events
//   - request ID, logging and recovery middleware
//
// # Routes
//
//	GET    /api/v1/health
//	GET    /api/v1/report
//	GET    /api/v1/devices?kind=smart_socket
//	GET    /api/v1/devices/{location}/{name}
//	DELETE /api/v1/devices/{location}/{name}
//	POST   /api/v1/devices/{location}/{name}/turn
//	GET    /api/v1/ws
//
// WebSocket clients receive nothing until they subscribe:
//
//	{"type":"subscribe","id":"1","data":{"channels":["house.report"]}}
//
// There is no authentication. Bind the server to a trusted interface.
package api
