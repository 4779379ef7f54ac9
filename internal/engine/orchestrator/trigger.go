package orchestrator

// TriggerKind distinguishes the inputs of the orchestrator.
type TriggerKind uint8

const (
	// RequestBuild asks for a build, for example when a runner connects.
	RequestBuild TriggerKind = iota
	// SourceChanged reports a change below a code watch directory.
	SourceChanged
	// AssetChanged reports a change to an asset file.
	AssetChanged
)

// Trigger is one input of the orchestrator.
type Trigger struct {
	Kind TriggerKind
	// Name and Path identify the asset of an AssetChanged trigger.
	Name string
	Path string
}

// Build returns a build request.
func Build() Trigger { return Trigger{Kind: RequestBuild} }

// Source returns a source change.
func Source() Trigger { return Trigger{Kind: SourceChanged} }

// Asset returns an asset change.
func Asset(name, path string) Trigger { return Trigger{Kind: AssetChanged, Name: name, Path: path} }

// key groups triggers within one debounce window: build triggers by kind and asset
// triggers by path.
func (t Trigger) key() string {
	switch t.Kind {
	case RequestBuild:
		return "build"
	case SourceChanged:
		return "source"
	default:
		return "asset:" + t.Path
	}
}

func (t Trigger) buildsCode() bool {
	return t.Kind == RequestBuild || t.Kind == SourceChanged
}
