// Package blocks provides versioned containers for signed beacon blocks as
// they cross the publish boundary, together with helpers for moving between
// the blinded and full payload shapes.
package blocks

import (
	apiv1bellatrix "github.com/attestantio/go-eth2-client/api/v1/bellatrix"
	"github.com/attestantio/go-eth2-client/spec"
	"github.com/attestantio/go-eth2-client/spec/altair"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

// SignedBlindedBeaconBlock is a versioned union over the signed blinded block
// variants accepted by the publish pipeline. Blinded shapes only exist from
// the bellatrix fork onward, so the phase0 and altair variants carry the full
// block types directly. Exactly one variant pointer is set, matching Version.
type SignedBlindedBeaconBlock struct {
	Version   spec.DataVersion
	Phase0    *phase0.SignedBeaconBlock
	Altair    *altair.SignedBeaconBlock
	Bellatrix *apiv1bellatrix.SignedBlindedBeaconBlock
}

// Slot returns the slot of the contained block.
func (b *SignedBlindedBeaconBlock) Slot() (phase0.Slot, error) {
	switch b.Version {
	case spec.DataVersionPhase0:
		if b.Phase0 == nil || b.Phase0.Message == nil {
			return 0, errors.New("no phase0 block")
		}

		return b.Phase0.Message.Slot, nil
	case spec.DataVersionAltair:
		if b.Altair == nil || b.Altair.Message == nil {
			return 0, errors.New("no altair block")
		}

		return b.Altair.Message.Slot, nil
	case spec.DataVersionBellatrix:
		if b.Bellatrix == nil || b.Bellatrix.Message == nil {
			return 0, errors.New("no bellatrix block")
		}

		return b.Bellatrix.Message.Slot, nil
	default:
		return 0, errors.Errorf("unknown block version %v", b.Version)
	}
}

// ProposerIndex returns the proposer index of the contained block.
func (b *SignedBlindedBeaconBlock) ProposerIndex() (phase0.ValidatorIndex, error) {
	switch b.Version {
	case spec.DataVersionPhase0:
		if b.Phase0 == nil || b.Phase0.Message == nil {
			return 0, errors.New("no phase0 block")
		}

		return b.Phase0.Message.ProposerIndex, nil
	case spec.DataVersionAltair:
		if b.Altair == nil || b.Altair.Message == nil {
			return 0, errors.New("no altair block")
		}

		return b.Altair.Message.ProposerIndex, nil
	case spec.DataVersionBellatrix:
		if b.Bellatrix == nil || b.Bellatrix.Message == nil {
			return 0, errors.New("no bellatrix block")
		}

		return b.Bellatrix.Message.ProposerIndex, nil
	default:
		return 0, errors.Errorf("unknown block version %v", b.Version)
	}
}

// Signature returns the signature over the contained block.
func (b *SignedBlindedBeaconBlock) Signature() (phase0.BLSSignature, error) {
	switch b.Version {
	case spec.DataVersionPhase0:
		if b.Phase0 == nil {
			return phase0.BLSSignature{}, errors.New("no phase0 block")
		}

		return b.Phase0.Signature, nil
	case spec.DataVersionAltair:
		if b.Altair == nil {
			return phase0.BLSSignature{}, errors.New("no altair block")
		}

		return b.Altair.Signature, nil
	case spec.DataVersionBellatrix:
		if b.Bellatrix == nil {
			return phase0.BLSSignature{}, errors.New("no bellatrix block")
		}

		return b.Bellatrix.Signature, nil
	default:
		return phase0.BLSSignature{}, errors.Errorf("unknown block version %v", b.Version)
	}
}
