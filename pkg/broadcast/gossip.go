package broadcast

import (
	"context"
	"fmt"

	"github.com/attestantio/go-eth2-client/spec"
	"github.com/golang/snappy"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Gossipsub topic constants for beacon blocks.
const (
	GossipsubTopicFormat = "/eth2/%x/%s/ssz_snappy"
	BeaconBlockTopicName = "beacon_block"
)

// BeaconBlockTopic constructs the beacon block gossipsub topic name.
func BeaconBlockTopic(forkDigest [4]byte) string {
	return fmt.Sprintf(GossipsubTopicFormat, forkDigest, BeaconBlockTopicName)
}

// Gossip broadcasts blocks on the beacon block gossipsub topic, encoded as
// snappy-compressed SSZ.
type Gossip struct {
	log   logrus.FieldLogger
	topic *pubsub.Topic
}

// NewGossip creates a gossipsub instance on the given host and joins the
// beacon block topic for the given fork digest.
func NewGossip(ctx context.Context, log logrus.FieldLogger, h host.Host, forkDigest [4]byte) (*Gossip, error) {
	ps, err := pubsub.NewGossipSub(ctx, h)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gossipsub")
	}

	return NewGossipWithPubSub(log, ps, forkDigest)
}

// NewGossipWithPubSub joins the beacon block topic on an existing pubsub
// instance.
func NewGossipWithPubSub(log logrus.FieldLogger, ps *pubsub.PubSub, forkDigest [4]byte) (*Gossip, error) {
	topic, err := ps.Join(BeaconBlockTopic(forkDigest))
	if err != nil {
		return nil, errors.Wrap(err, "failed to join beacon block topic")
	}

	return &Gossip{
		log:   log.WithField("component", "gossip_broadcast"),
		topic: topic,
	}, nil
}

// BroadcastBlock encodes and publishes a block to the beacon block topic.
func (g *Gossip) BroadcastBlock(ctx context.Context, block *spec.VersionedSignedBeaconBlock) error {
	data, err := EncodeBlockGossip(block)
	if err != nil {
		return errors.Wrap(err, "failed to encode block")
	}

	if err := g.topic.Publish(ctx, data); err != nil {
		return errors.Wrap(err, "failed to publish block")
	}

	g.log.WithField("topic", g.topic.String()).Debug("Broadcast block")

	return nil
}

// Close leaves the beacon block topic.
func (g *Gossip) Close() error {
	return g.topic.Close()
}

// EncodeBlockGossip encodes a block in the gossip wire format: SSZ
// serialization of the fork-specific container, snappy block compression.
func EncodeBlockGossip(block *spec.VersionedSignedBeaconBlock) ([]byte, error) {
	if block == nil {
		return nil, errors.New("nil block")
	}

	var (
		ssz []byte
		err error
	)

	switch block.Version {
	case spec.DataVersionPhase0:
		if block.Phase0 == nil {
			return nil, errors.New("no phase0 block")
		}

		ssz, err = block.Phase0.MarshalSSZ()
	case spec.DataVersionAltair:
		if block.Altair == nil {
			return nil, errors.New("no altair block")
		}

		ssz, err = block.Altair.MarshalSSZ()
	case spec.DataVersionBellatrix:
		if block.Bellatrix == nil {
			return nil, errors.New("no bellatrix block")
		}

		ssz, err = block.Bellatrix.MarshalSSZ()
	default:
		return nil, errors.Errorf("unknown block version %v", block.Version)
	}

	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal block")
	}

	return snappy.Encode(nil, ssz), nil
}

var _ Broadcaster = (*Gossip)(nil)
