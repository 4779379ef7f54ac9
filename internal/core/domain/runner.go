package domain

// RunnerMessageKind tags the variants of RunnerMessage.
type RunnerMessageKind uint8

const (
	// MsgLoadRootLib asks the runner to load a new root library.
	MsgLoadRootLib RunnerMessageKind = iota
	// MsgAssetUpdated forwards an asset change to the loaded library.
	MsgAssetUpdated
	// MsgConnectionClosed reports that the update stream ended.
	MsgConnectionClosed
)

// RunnerMessage is what an update source hands to the runner loop.
type RunnerMessage struct {
	Kind RunnerMessageKind
	// ID is the build that produced the library, for MsgLoadRootLib.
	ID BuildID
	// Path is the local library path or the asset path.
	Path string
	// Name is the asset name, for MsgAssetUpdated.
	Name string
	// Err is why the stream closed, for MsgConnectionClosed. Nil on a clean shutdown.
	Err error
}

// LoadRootLib creates a load request.
func LoadRootLib(id BuildID, path string) RunnerMessage {
	return RunnerMessage{Kind: MsgLoadRootLib, ID: id, Path: path}
}

// AssetChanged creates an asset notification.
func AssetChanged(name, path string) RunnerMessage {
	return RunnerMessage{Kind: MsgAssetUpdated, Name: name, Path: path}
}

// ConnectionClosed creates the final message of a stream.
func ConnectionClosed(err error) RunnerMessage {
	return RunnerMessage{Kind: MsgConnectionClosed, Err: err}
}
