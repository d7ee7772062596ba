// Package manager owns compiled topology models and coordinates prediction
// requests against them. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Instance, Snapshot).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, IsBadRequest).
//   - admission.go: bounded concurrency with a wait queue in front of it.
//   - ensure.go: EnsureInstance loads each model once and shares it.
//   - predict.go: Predict, the request entry point.
//   - metrics.go: Prometheus collectors for loads and predictions.
//   - status_report.go: Status/Snapshot reporting helpers.
//   - events.go, eventpub_*.go: lifecycle events and publishers.
//   - ops.go: background preloading and draining.
//
// Compiled models are immutable, so any number of predictions may share one
// Instance; admission only bounds CPU use.
//
// External packages should treat this package as the orchestration layer and use
// public methods only (e.g., New/NewWithConfig, Ready, ListModels, Status, Predict).
package manager
