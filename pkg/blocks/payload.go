package blocks

import (
	apiv1bellatrix "github.com/attestantio/go-eth2-client/api/v1/bellatrix"
	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	ssz "github.com/prysmaticlabs/fastssz"
)

// SSZ list bounds for the execution payload transactions field.
const (
	maxTransactionsPerPayload = 1048576
	maxBytesPerTransaction    = 1073741824
)

// TransactionsRoot computes the hash tree root of an execution payload
// transactions list. This is the commitment a blinded payload header carries
// in place of the transaction bodies.
func TransactionsRoot(txs []bellatrix.Transaction) (phase0.Root, error) {
	hh := ssz.DefaultHasherPool.Get()
	defer ssz.DefaultHasherPool.Put(hh)

	subIndx := hh.Index()

	num := uint64(len(txs))
	if num > maxTransactionsPerPayload {
		return phase0.Root{}, errors.New("too many transactions in payload")
	}

	for _, tx := range txs {
		elemIndx := hh.Index()

		byteLen := uint64(len(tx))
		if byteLen > maxBytesPerTransaction {
			return phase0.Root{}, errors.New("transaction exceeds maximum size")
		}

		hh.AppendBytes32(tx)
		hh.MerkleizeWithMixin(elemIndx, byteLen, (maxBytesPerTransaction+31)/32)
	}

	hh.MerkleizeWithMixin(subIndx, num, maxTransactionsPerPayload)

	root, err := hh.HashRoot()
	if err != nil {
		return phase0.Root{}, errors.Wrap(err, "failed to merkleize transactions")
	}

	return phase0.Root(root), nil
}

// PayloadToHeader derives the blinded header for a full execution payload.
// The header carries every field of the payload except the transactions,
// which are replaced by their hash tree root, so the two shapes share the
// same hash tree root.
func PayloadToHeader(payload *bellatrix.ExecutionPayload) (*bellatrix.ExecutionPayloadHeader, error) {
	if payload == nil {
		return nil, errors.New("nil execution payload")
	}

	txRoot, err := TransactionsRoot(payload.Transactions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute transactions root")
	}

	return &bellatrix.ExecutionPayloadHeader{
		ParentHash:       payload.ParentHash,
		FeeRecipient:     payload.FeeRecipient,
		StateRoot:        payload.StateRoot,
		ReceiptsRoot:     payload.ReceiptsRoot,
		LogsBloom:        payload.LogsBloom,
		PrevRandao:       payload.PrevRandao,
		BlockNumber:      payload.BlockNumber,
		GasLimit:         payload.GasLimit,
		GasUsed:          payload.GasUsed,
		Timestamp:        payload.Timestamp,
		ExtraData:        payload.ExtraData,
		BaseFeePerGas:    payload.BaseFeePerGas,
		BlockHash:        payload.BlockHash,
		TransactionsRoot: txRoot,
	}, nil
}

// BlindedFromFull derives the blinded form of a full signed block. For
// pre-bellatrix forks the block has no payload and the result carries the
// input unchanged.
func BlindedFromFull(block *spec.VersionedSignedBeaconBlock) (*SignedBlindedBeaconBlock, error) {
	if block == nil {
		return nil, errors.New("nil block")
	}

	switch block.Version {
	case spec.DataVersionPhase0:
		if block.Phase0 == nil {
			return nil, errors.New("no phase0 block")
		}

		return &SignedBlindedBeaconBlock{
			Version: spec.DataVersionPhase0,
			Phase0:  block.Phase0,
		}, nil
	case spec.DataVersionAltair:
		if block.Altair == nil {
			return nil, errors.New("no altair block")
		}

		return &SignedBlindedBeaconBlock{
			Version: spec.DataVersionAltair,
			Altair:  block.Altair,
		}, nil
	case spec.DataVersionBellatrix:
		if block.Bellatrix == nil || block.Bellatrix.Message == nil || block.Bellatrix.Message.Body == nil {
			return nil, errors.New("no bellatrix block")
		}

		message := block.Bellatrix.Message
		body := message.Body

		header, err := PayloadToHeader(body.ExecutionPayload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to derive payload header")
		}

		return &SignedBlindedBeaconBlock{
			Version: spec.DataVersionBellatrix,
			Bellatrix: &apiv1bellatrix.SignedBlindedBeaconBlock{
				Message: &apiv1bellatrix.BlindedBeaconBlock{
					Slot:          message.Slot,
					ProposerIndex: message.ProposerIndex,
					ParentRoot:    message.ParentRoot,
					StateRoot:     message.StateRoot,
					Body: &apiv1bellatrix.BlindedBeaconBlockBody{
						RANDAOReveal:           body.RANDAOReveal,
						ETH1Data:               body.ETH1Data,
						Graffiti:               body.Graffiti,
						ProposerSlashings:      body.ProposerSlashings,
						AttesterSlashings:      body.AttesterSlashings,
						Attestations:           body.Attestations,
						Deposits:               body.Deposits,
						VoluntaryExits:         body.VoluntaryExits,
						SyncAggregate:          body.SyncAggregate,
						ExecutionPayloadHeader: header,
					},
				},
				Signature: block.Bellatrix.Signature,
			},
		}, nil
	default:
		return nil, errors.Errorf("unknown block version %v", block.Version)
	}
}
