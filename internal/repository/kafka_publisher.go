package repository

import (
	"context"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
	pkgkafka "SwingRank/pkg/kafka"
	"SwingRank/pkg/util"
)

// KafkaRankingPublisher sends each finished run as one message keyed by run date.
type KafkaRankingPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRankingPublisher(producer *pkgkafka.Producer, topic string) *KafkaRankingPublisher {
	return &KafkaRankingPublisher{producer: producer, topic: topic}
}

func (p *KafkaRankingPublisher) Name() string { return "kafka" }

func (p *KafkaRankingPublisher) Publish(ctx context.Context, run *models.RankingRun) error {
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:     []byte(util.FormatDay(run.Date)),
		Value:   run,
		Headers: map[string]string{"run_id": run.ID, "regime": string(run.Regime)},
	}})
}

func (p *KafkaRankingPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.RankingSink = (*KafkaRankingPublisher)(nil)
