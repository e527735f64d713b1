package execution

import (
	"context"

	apiv1bellatrix "github.com/attestantio/go-eth2-client/api/v1/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/bellatrix"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Provider resolves the full execution payload a blinded block commits to.
type Provider interface {
	// PayloadByRoot returns a locally cached payload by the hash tree root
	// of its header. No network round trip is involved.
	PayloadByRoot(root phase0.Root) (*bellatrix.ExecutionPayload, bool)

	// ProposeBlindedBlock submits a blinded block to the builder network and
	// returns the full payload it commits to. It may block on the remote
	// call.
	ProposeBlindedBlock(ctx context.Context, block *apiv1bellatrix.SignedBlindedBeaconBlock) (*bellatrix.ExecutionPayload, error)
}

// BuilderClient performs remote blind block proposals against an external
// builder. Implementations live outside this module.
type BuilderClient interface {
	SubmitBlindedBlock(ctx context.Context, block *apiv1bellatrix.SignedBlindedBeaconBlock) (*bellatrix.ExecutionPayload, error)
}

// Engine implements Provider by combining the local payload cache with a
// builder fallback. The builder client is optional; without one, blind
// proposals fail.
type Engine struct {
	log     logrus.FieldLogger
	cache   *PayloadCache
	builder BuilderClient
}

// NewEngine creates an Engine. builder may be nil if no builder network is
// configured.
func NewEngine(log logrus.FieldLogger, cache *PayloadCache, builder BuilderClient) *Engine {
	return &Engine{
		log:     log.WithField("component", "execution_engine"),
		cache:   cache,
		builder: builder,
	}
}

func (e *Engine) PayloadByRoot(root phase0.Root) (*bellatrix.ExecutionPayload, bool) {
	return e.cache.ByRoot(root)
}

func (e *Engine) ProposeBlindedBlock(ctx context.Context, block *apiv1bellatrix.SignedBlindedBeaconBlock) (*bellatrix.ExecutionPayload, error) {
	if e.builder == nil {
		return nil, errors.New("no builder client configured")
	}

	payload, err := e.builder.SubmitBlindedBlock(ctx, block)
	if err != nil {
		return nil, err
	}

	if payload == nil {
		return nil, errors.New("builder returned no payload")
	}

	return payload, nil
}

var _ Provider = (*Engine)(nil)
