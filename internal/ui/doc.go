// Package ui renders git command and remote connection events as concise
// console messages while structured telemetry keeps flowing through zap fields.
package ui
