package blocks

import (
	"testing"

	apiv1bellatrix "github.com/attestantio/go-eth2-client/api/v1/bellatrix"
	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedBlindedBeaconBlock_Accessors(t *testing.T) {
	tests := []struct {
		name         string
		block        *SignedBlindedBeaconBlock
		wantSlot     phase0.Slot
		wantProposer phase0.ValidatorIndex
		wantErr      bool
	}{
		{
			name: "phase0",
			block: &SignedBlindedBeaconBlock{
				Version: spec.DataVersionPhase0,
				Phase0: &phase0.SignedBeaconBlock{
					Message: &phase0.BeaconBlock{Slot: 1, ProposerIndex: 10},
				},
			},
			wantSlot:     1,
			wantProposer: 10,
		},
		{
			name: "altair",
			block: &SignedBlindedBeaconBlock{
				Version: spec.DataVersionAltair,
				Altair: &altair.SignedBeaconBlock{
					Message: &altair.BeaconBlock{Slot: 2, ProposerIndex: 20},
				},
			},
			wantSlot:     2,
			wantProposer: 20,
		},
		{
			name: "bellatrix",
			block: &SignedBlindedBeaconBlock{
				Version: spec.DataVersionBellatrix,
				Bellatrix: &apiv1bellatrix.SignedBlindedBeaconBlock{
					Message: &apiv1bellatrix.BlindedBeaconBlock{Slot: 3, ProposerIndex: 30},
				},
			},
			wantSlot:     3,
			wantProposer: 30,
		},
		{
			name: "version without block",
			block: &SignedBlindedBeaconBlock{
				Version: spec.DataVersionBellatrix,
			},
			wantErr: true,
		},
		{
			name: "unknown version",
			block: &SignedBlindedBeaconBlock{
				Version: spec.DataVersionDeneb,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := tt.block.Slot()
			if tt.wantErr {
				require.Error(t, err)

				_, err = tt.block.ProposerIndex()
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSlot, slot)

			proposer, err := tt.block.ProposerIndex()
			require.NoError(t, err)
			assert.Equal(t, tt.wantProposer, proposer)
		})
	}
}

func TestTransactionsRoot_MatchesPayloadRoot(t *testing.T) {
	// The header derived from a payload must share its hash tree root, since
	// the transactions root stands in for the transaction list.
	payload := testExecutionPayload(t, []bellatrix.Transaction{
		{0x01, 0x02, 0x03},
		{0x04, 0x05},
	})

	header, err := PayloadToHeader(payload)
	require.NoError(t, err)

	payloadRoot, err := payload.HashTreeRoot()
	require.NoError(t, err)

	headerRoot, err := header.HashTreeRoot()
	require.NoError(t, err)

	assert.Equal(t, payloadRoot, headerRoot)
}

func TestTransactionsRoot_EmptyList(t *testing.T) {
	root, err := TransactionsRoot(nil)
	require.NoError(t, err)
	assert.NotEqual(t, phase0.Root{}, root)

	emptyRoot, err := TransactionsRoot([]bellatrix.Transaction{})
	require.NoError(t, err)
	assert.Equal(t, root, emptyRoot)
}

func TestPayloadToHeader_CarriesAllFields(t *testing.T) {
	payload := testExecutionPayload(t, []bellatrix.Transaction{{0xff}})

	header, err := PayloadToHeader(payload)
	require.NoError(t, err)

	assert.Equal(t, payload.ParentHash, header.ParentHash)
	assert.Equal(t, payload.FeeRecipient, header.FeeRecipient)
	assert.Equal(t, payload.StateRoot, header.StateRoot)
	assert.Equal(t, payload.ReceiptsRoot, header.ReceiptsRoot)
	assert.Equal(t, payload.LogsBloom, header.LogsBloom)
	assert.Equal(t, payload.PrevRandao, header.PrevRandao)
	assert.Equal(t, payload.BlockNumber, header.BlockNumber)
	assert.Equal(t, payload.GasLimit, header.GasLimit)
	assert.Equal(t, payload.GasUsed, header.GasUsed)
	assert.Equal(t, payload.Timestamp, header.Timestamp)
	assert.Equal(t, payload.ExtraData, header.ExtraData)
	assert.Equal(t, payload.BaseFeePerGas, header.BaseFeePerGas)
	assert.Equal(t, payload.BlockHash, header.BlockHash)

	txRoot, err := TransactionsRoot(payload.Transactions)
	require.NoError(t, err)
	assert.Equal(t, txRoot, header.TransactionsRoot)
}

func TestPayloadToHeader_NilPayload(t *testing.T) {
	_, err := PayloadToHeader(nil)
	require.Error(t, err)
}

func TestBlindedFromFull_Bellatrix(t *testing.T) {
	payload := testExecutionPayload(t, []bellatrix.Transaction{{0x0a}, {0x0b}})

	full := &spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionBellatrix,
		Bellatrix: &bellatrix.SignedBeaconBlock{
			Message: &bellatrix.BeaconBlock{
				Slot:          100,
				ProposerIndex: 5,
				ParentRoot:    phase0.Root{0x01},
				StateRoot:     phase0.Root{0x02},
				Body: &bellatrix.BeaconBlockBody{
					RANDAOReveal:      phase0.BLSSignature{0x03},
					ETH1Data:          &phase0.ETH1Data{DepositCount: 1, BlockHash: make([]byte, 32)},
					Graffiti:          [32]byte{0x04},
					ProposerSlashings: []*phase0.ProposerSlashing{},
					AttesterSlashings: []*phase0.AttesterSlashing{},
					Attestations:      []*phase0.Attestation{},
					Deposits:          []*phase0.Deposit{},
					VoluntaryExits:    []*phase0.SignedVoluntaryExit{},
					SyncAggregate:     &altair.SyncAggregate{},
					ExecutionPayload:  payload,
				},
			},
			Signature: phase0.BLSSignature{0x05},
		},
	}

	blinded, err := BlindedFromFull(full)
	require.NoError(t, err)
	require.Equal(t, spec.DataVersionBellatrix, blinded.Version)
	require.NotNil(t, blinded.Bellatrix)

	message := blinded.Bellatrix.Message
	require.NotNil(t, message)
	assert.Equal(t, full.Bellatrix.Message.Slot, message.Slot)
	assert.Equal(t, full.Bellatrix.Message.ProposerIndex, message.ProposerIndex)
	assert.Equal(t, full.Bellatrix.Message.ParentRoot, message.ParentRoot)
	assert.Equal(t, full.Bellatrix.Message.StateRoot, message.StateRoot)
	assert.Equal(t, full.Bellatrix.Signature, blinded.Bellatrix.Signature)

	header := message.Body.ExecutionPayloadHeader
	require.NotNil(t, header)
	assert.Equal(t, payload.BlockHash, header.BlockHash)

	txRoot, err := TransactionsRoot(payload.Transactions)
	require.NoError(t, err)
	assert.Equal(t, txRoot, header.TransactionsRoot)
}

func TestBlindedFromFull_PreExecutionForks(t *testing.T) {
	phase0Block := &phase0.SignedBeaconBlock{
		Message: &phase0.BeaconBlock{Slot: 1},
	}

	blinded, err := BlindedFromFull(&spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionPhase0,
		Phase0:  phase0Block,
	})
	require.NoError(t, err)
	assert.Equal(t, spec.DataVersionPhase0, blinded.Version)
	assert.Same(t, phase0Block, blinded.Phase0)

	altairBlock := &altair.SignedBeaconBlock{
		Message: &altair.BeaconBlock{Slot: 2},
	}

	blinded, err = BlindedFromFull(&spec.VersionedSignedBeaconBlock{
		Version: spec.DataVersionAltair,
		Altair:  altairBlock,
	})
	require.NoError(t, err)
	assert.Equal(t, spec.DataVersionAltair, blinded.Version)
	assert.Same(t, altairBlock, blinded.Altair)
}

func testExecutionPayload(t *testing.T, txs []bellatrix.Transaction) *bellatrix.ExecutionPayload {
	t.Helper()

	return &bellatrix.ExecutionPayload{
		ParentHash:    phase0.Hash32{0x11},
		FeeRecipient:  bellatrix.ExecutionAddress{0x22},
		StateRoot:     [32]byte{0x33},
		ReceiptsRoot:  [32]byte{0x44},
		LogsBloom:     [256]byte{0x55},
		PrevRandao:    [32]byte{0x66},
		BlockNumber:   12345,
		GasLimit:      30_000_000,
		GasUsed:       21_000,
		Timestamp:     1_600_000_000,
		ExtraData:     []byte{0x77, 0x88},
		BaseFeePerGas: [32]byte{0x99},
		BlockHash:     phase0.Hash32{0xaa},
		Transactions:  txs,
	}
}
