// Package klimozawr is the data model shared by the monitoring engine and its consumers.
//
// It defines the endpoint configuration, the per-tick result, the alert event and the status values.
// Consumers of the engine, such as storages or user interfaces, only need to import this package.
package klimozawr
