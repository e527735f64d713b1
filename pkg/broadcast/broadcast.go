// Package broadcast publishes signed beacon blocks to the gossip network.
package broadcast

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec"
)

// Broadcaster enqueues a block for delivery to the network. Delivery is
// fire-and-forget: a nil return means the message was accepted for
// propagation, not that any peer received it. An error indicates a broken
// network subsystem rather than a problem with the block.
type Broadcaster interface {
	BroadcastBlock(ctx context.Context, block *spec.VersionedSignedBeaconBlock) error
}
