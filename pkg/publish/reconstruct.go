package publish

import (
	"context"

	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"

	"github.com/ethpandaops/blockpub/pkg/blocks"
	"github.com/ethpandaops/blockpub/pkg/serialize"
)

// PublishBlindedBlock converts a blinded block into a full block and
// publishes it.
func (p *Publisher) PublishBlindedBlock(ctx context.Context, blinded *blocks.SignedBlindedBeaconBlock) error {
	full, err := p.ReconstructBlock(ctx, blinded)
	if err != nil {
		return err
	}

	return p.PublishBlock(ctx, full)
}

// ReconstructBlock deconstructs a blinded block and builds the full block it
// commits to. Execution-era payloads are resolved from the local payload
// cache where possible, falling back to a blind block proposal against the
// builder network. The reconstructed payload always carries the header
// fields of the signed blinded header; only the transaction list comes from
// the resolved source, so the result cannot diverge from what the proposer
// signed.
//
// The bodies are rebuilt field by field on purpose. Adding a field to a fork
// variant breaks this function at compile time instead of silently dropping
// data at the blinded/full boundary.
func (p *Publisher) ReconstructBlock(ctx context.Context, blinded *blocks.SignedBlindedBeaconBlock) (*spec.VersionedSignedBeaconBlock, error) {
	if blinded == nil {
		return nil, errors.New("nil blinded block")
	}

	switch blinded.Version {
	case spec.DataVersionPhase0:
		return p.reconstructPhase0(blinded.Phase0)
	case spec.DataVersionAltair:
		return p.reconstructAltair(blinded.Altair)
	case spec.DataVersionBellatrix:
		return p.reconstructBellatrix(ctx, blinded)
	default:
		return nil, errors.Errorf("unknown block version %v", blinded.Version)
	}
}

// reconstructPhase0 rebuilds a phase0 block. The fork has no execution
// payload, so this is a structural copy with no provider involvement.
func (p *Publisher) reconstructPhase0(signed *phase0.SignedBeaconBlock) (*spec.VersionedSignedBeaconBlock, error) {
	if signed == nil || signed.Message == nil || signed.Message.Body == nil {
		return nil, errors.New("incomplete phase0 block")
	}

	message := signed.Message
	body := message.Body

	return &spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionPhase0,
		Phase0: &phase0.SignedBeaconBlock{
			Message: &phase0.BeaconBlock{
				Slot:          message.Slot,
				ProposerIndex: message.ProposerIndex,
				ParentRoot:    message.ParentRoot,
				StateRoot:     message.StateRoot,
				Body: &phase0.BeaconBlockBody{
					RANDAOReveal:      body.RANDAOReveal,
					ETH1Data:          body.ETH1Data,
					Graffiti:          body.Graffiti,
					ProposerSlashings: body.ProposerSlashings,
					AttesterSlashings: body.AttesterSlashings,
					Attestations:      body.Attestations,
					Deposits:          body.Deposits,
					VoluntaryExits:    body.VoluntaryExits,
				},
			},
			Signature: signed.Signature,
		},
	}, nil
}

// reconstructAltair rebuilds an altair block, carrying the sync aggregate the
// fork introduced. No provider involvement.
func (p *Publisher) reconstructAltair(signed *altair.SignedBeaconBlock) (*spec.VersionedSignedBeaconBlock, error) {
	if signed == nil || signed.Message == nil || signed.Message.Body == nil {
		return nil, errors.New("incomplete altair block")
	}

	message := signed.Message
	body := message.Body

	return &spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionAltair,
		Altair: &altair.SignedBeaconBlock{
			Message: &altair.BeaconBlock{
				Slot:          message.Slot,
				ProposerIndex: message.ProposerIndex,
				ParentRoot:    message.ParentRoot,
				StateRoot:     message.StateRoot,
				Body: &altair.BeaconBlockBody{
					RANDAOReveal:      body.RANDAOReveal,
					ETH1Data:          body.ETH1Data,
					Graffiti:          body.Graffiti,
					ProposerSlashings: body.ProposerSlashings,
					AttesterSlashings: body.AttesterSlashings,
					Attestations:      body.Attestations,
					Deposits:          body.Deposits,
					VoluntaryExits:    body.VoluntaryExits,
					SyncAggregate:     body.SyncAggregate,
				},
			},
			Signature: signed.Signature,
		},
	}, nil
}

// reconstructBellatrix rebuilds an execution-era block by filling in the
// execution payload the blinded header commits to.
func (p *Publisher) reconstructBellatrix(ctx context.Context, blinded *blocks.SignedBlindedBeaconBlock) (*spec.VersionedSignedBeaconBlock, error) {
	signed := blinded.Bellatrix
	if signed == nil || signed.Message == nil || signed.Message.Body == nil {
		return nil, errors.New("incomplete bellatrix block")
	}

	message := signed.Message
	body := message.Body

	header := body.ExecutionPayloadHeader
	if header == nil {
		return nil, errors.New("blinded block has no execution payload header")
	}

	if p.execution == nil {
		return nil, &ConfigurationError{Msg: "missing execution provider"}
	}

	payloadRoot, err := header.HashTreeRoot()
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute payload root")
	}

	var transactions []bellatrix.Transaction

	// A zero execution block hash is the designated encoding for "no payload
	// yet", i.e. a pre-merge transition block. The payload stays empty.
	if header.BlockHash != (phase0.Hash32{}) {
		if cached, ok := p.execution.PayloadByRoot(phase0.Root(payloadRoot)); ok {
			p.log.WithField("block_hash", serialize.HashAsString(cached.BlockHash)).
				Info("Reconstructing a full block using a local payload")

			transactions = cached.Transactions
		} else {
			full, err := p.execution.ProposeBlindedBlock(ctx, signed)
			if err != nil {
				return nil, &ReconstructionError{Cause: err.Error()}
			}

			p.log.WithField("block_hash", serialize.HashAsString(full.BlockHash)).
				Info("Successfully published a block to the builder network")

			transactions = full.Transactions
		}
	}

	return &spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionBellatrix,
		Bellatrix: &bellatrix.SignedBeaconBlock{
			Message: &bellatrix.BeaconBlock{
				Slot:          message.Slot,
				ProposerIndex: message.ProposerIndex,
				ParentRoot:    message.ParentRoot,
				StateRoot:     message.StateRoot,
				Body: &bellatrix.BeaconBlockBody{
					RANDAOReveal:      body.RANDAOReveal,
					ETH1Data:          body.ETH1Data,
					Graffiti:          body.Graffiti,
					ProposerSlashings: body.ProposerSlashings,
					AttesterSlashings: body.AttesterSlashings,
					Attestations:      body.Attestations,
					Deposits:          body.Deposits,
					VoluntaryExits:    body.VoluntaryExits,
					SyncAggregate:     body.SyncAggregate,
					// Header fields come from the signed blinded header, not
					// from whatever the cache or builder returned. Only the
					// transaction list is newly supplied.
					ExecutionPayload: &bellatrix.ExecutionPayload{
						ParentHash:    header.ParentHash,
						FeeRecipient:  header.FeeRecipient,
						StateRoot:     header.StateRoot,
						ReceiptsRoot:  header.ReceiptsRoot,
						LogsBloom:     header.LogsBloom,
						PrevRandao:    header.PrevRandao,
						BlockNumber:   header.BlockNumber,
						GasLimit:      header.GasLimit,
						GasUsed:       header.GasUsed,
						Timestamp:     header.Timestamp,
						ExtraData:     header.ExtraData,
						BaseFeePerGas: header.BaseFeePerGas,
						BlockHash:     header.BlockHash,
						Transactions:  transactions,
					},
				},
			},
			Signature: signed.Signature,
		},
	}, nil
}
