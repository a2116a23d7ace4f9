// Package connector defines the uniform contract every backend connector
// presents: connect, execute, upload a tabular dataset, and the generic
// table operations (copy, drop, grant).
//
// Connectors obtain their full parameter mapping from the configuration
// resolution engine at construction time; the resolved mapping is their
// sole configuration input. Construction validates the backend's required
// parameters and reports every missing one at once.
//
// Frame is the module's tabular interchange type. SQL backends return
// query results as Frames and accept Frames for bulk upload; the object
// store encodes Frames to CSV or JSON objects.
package connector
