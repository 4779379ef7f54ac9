package domain

// BuildID numbers builds in the order they start. The first build is 1.
type BuildID uint32

// EventKind tags the variants of Event.
type EventKind uint8

const (
	// EventKeepAlive carries no state and only signals liveness.
	EventKeepAlive EventKind = iota
	// EventBuildStarted is published when a compiler invocation begins.
	EventBuildStarted
	// EventBuildEnded is published after a successful build with its full closure.
	EventBuildEnded
	// EventBuildFailed is published when a build or its dependency resolution fails.
	EventBuildFailed
	// EventAssetUpdated is published when an asset file changed.
	EventAssetUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventKeepAlive:
		return "keep_alive"
	case EventBuildStarted:
		return "build_started"
	case EventBuildEnded:
		return "build_ended"
	case EventBuildFailed:
		return "build_failed"
	case EventAssetUpdated:
		return "asset_updated"
	default:
		return "unknown"
	}
}

// Event is one message of the update protocol. Only the fields of its Kind are set.
type Event struct {
	Kind EventKind
	ID   BuildID

	// BuildEnded
	RootLibrary string
	Libraries   []HashedFileRecord

	// BuildFailed
	Reason string

	// AssetUpdated
	Name      string
	LocalPath string
}

// BuildStarted creates a build-started event.
func BuildStarted(id BuildID) Event {
	return Event{Kind: EventBuildStarted, ID: id}
}

// BuildEnded creates a build-ended event.
func BuildEnded(id BuildID, rootLibrary string, libraries []HashedFileRecord) Event {
	return Event{Kind: EventBuildEnded, ID: id, RootLibrary: rootLibrary, Libraries: libraries}
}

// BuildFailed creates a build-failed event.
func BuildFailed(id BuildID, reason string) Event {
	return Event{Kind: EventBuildFailed, ID: id, Reason: reason}
}

// AssetUpdated creates an asset-updated event.
func AssetUpdated(name, localPath string) Event {
	return Event{Kind: EventAssetUpdated, Name: name, LocalPath: localPath}
}

// KeepAlive creates a keep-alive event.
func KeepAlive() Event {
	return Event{Kind: EventKeepAlive}
}

// Library returns the record named name from a build-ended event.
func (e Event) Library(name string) (HashedFileRecord, bool) {
	for _, lib := range e.Libraries {
		if lib.Name == name {
			return lib, true
		}
	}
	return HashedFileRecord{}, false
}
