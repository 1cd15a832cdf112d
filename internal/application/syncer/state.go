// Package syncer owns the synchronization state machine: it serializes all
// writes to the progress aggregate, mirrors them into the durable local
// store and the offline queue, and reconciles with the remote service when
// connectivity allows.
package syncer

// State is the coordinator's synchronization state.
type State int

const (
	// StateLocal: mutations accumulate in the durable queue; the local
	// store is the only persistence in use.
	StateLocal State = iota

	// StateSyncing: a reconciliation pass is in flight.
	StateSyncing

	// StateRemote: the queue has been drained and the local aggregate is
	// aligned with the server; new mutations are pushed promptly.
	StateRemote
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLocal:
		return "local"
	case StateSyncing:
		return "syncing"
	case StateRemote:
		return "remote"
	default:
		return "unknown"
	}
}
