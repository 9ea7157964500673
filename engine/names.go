package engine

// Export names a Halcyon wasm build must provide, and the host module its
// imports resolve against. These names are part of the binary contract.
const (
	exportRuntimeStart    = "halcyon_runtime_start"
	exportDBConnect       = "halcyon_db_connect"
	exportDBFree          = "halcyon_db_free"
	exportRuntimeShutdown = "halcyon_runtime_shutdown"
	exportAlloc           = "halcyon_alloc"
	exportFree            = "halcyon_free"

	hostModuleName = "halcyon_host"

	hostRuntimeStarted = "runtime_started"
	hostDBConnected    = "db_connected"
	hostRuntimeStopped = "runtime_stopped"
)

// requiredExports lists every function the guest must export.
var requiredExports = []string{
	exportRuntimeStart,
	exportDBConnect,
	exportDBFree,
	exportRuntimeShutdown,
	exportAlloc,
	exportFree,
}
