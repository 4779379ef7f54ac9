package mirror

import "go.trai.ch/hotswap/internal/core/ports"

type ObjectStore = objectStore

func NewWithStore(store ObjectStore, bucket string, logger ports.Logger) *Mirror {
	return newMirror(store, bucket, "us-east-1", logger)
}
