package kafka

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"

	"vn.io.arda/provisioner/internal/application"
	"vn.io.arda/provisioner/internal/kafka/registry"

	// Blank import triggers init() in each handler file,
	// registering all event handlers into the registry.
	_ "vn.io.arda/provisioner/internal/kafka/handlers"
)

// Consumer wraps the franz-go Kafka client. It receives bucket-notification
// events announcing delivered batch files and hands each reference to the
// batch runner.
type Consumer struct {
	client  *kgo.Client
	service *application.Service
}

// New creates a Consumer with the given brokers, group ID, and topics.
func New(brokers []string, groupID string, topics []string, svc *application.Service) (*Consumer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topics...),
		kgo.DisableAutoCommit(),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, service: svc}, nil
}

// Start begins polling Kafka and processing records. Blocks until ctx is
// cancelled.
func (c *Consumer) Start(ctx context.Context) {
	log.Info().Msg("kafka consumer started")

	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			break
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			log.Error().Err(err).Str("topic", topic).Int32("partition", partition).Msg("kafka fetch error")
		})

		fetches.EachRecord(func(r *kgo.Record) {
			c.process(ctx, r)
		})

		if err := c.client.CommitUncommittedOffsets(ctx); err != nil {
			log.Error().Err(err).Msg("kafka commit error")
		}
	}

	c.client.Close()
	log.Info().Msg("kafka consumer stopped")
}

// process dispatches a record to the registered handler, then runs each
// announced batch. A failed batch is logged and the record still committed:
// the batch runner owns retry semantics (there are none by design).
func (c *Consumer) process(ctx context.Context, r *kgo.Record) {
	log.Debug().
		Str("topic", r.Topic).
		Str("key", string(r.Key)).
		Msg("processing kafka record")

	// provision-commands doesn't use event-name routing
	refs := registry.DispatchDirect(r.Topic, r.Value)
	if refs == nil {
		refs = registry.Dispatch(r.Topic, r.Value)
	}
	if len(refs) == 0 {
		log.Debug().Str("topic", r.Topic).Msg("no handler matched, skipping")
		return
	}

	for _, ref := range refs {
		if _, err := c.service.RunBatch(ctx, ref); err != nil {
			log.Error().Err(err).
				Str("topic", r.Topic).
				Str("object", ref.String()).
				Msg("batch run failed")
		}
	}
}
