// Package events distributes committed store changes to interested parties.
//
// The store invokes a single Observer per collection. Fanout combines the
// WebSocket hub and the MQTT publisher behind that one hook.
package events
