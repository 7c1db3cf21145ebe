// Package eventos publica los eventos del ciclo de vida de las consultas.
//
// La publicación es best-effort: el cambio ya está persistido cuando se emite.
// Los errores se devuelven sin loguear; el servicio de consultas es quien los registra.
package eventos

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"cic-consultas/internal/domain/consultas"
	"cic-consultas/internal/platform/logger"
)

// producer es la parte de *kgo.Client que usamos.
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Kafka publica cada evento como JSON, con el id de la consulta como key
// (todos los eventos de una consulta caen en la misma partición, en orden).
type Kafka struct {
	client  producer
	topic   string
	log     logger.Logger
	timeout time.Duration
}

type Option func(*Kafka)

func WithLogger(l logger.Logger) Option {
	return func(k *Kafka) { k.log = l }
}

func WithTimeout(d time.Duration) Option {
	return func(k *Kafka) { k.timeout = d }
}

// NewKafka abre un cliente franz-go contra brokers.
func NewKafka(brokers []string, topic string, opts ...Option) (*Kafka, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers")
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka: new client: %w", err)
	}
	return newKafka(cl, topic, opts...), nil
}

func newKafka(p producer, topic string, opts ...Option) *Kafka {
	k := &Kafka{
		client:  p,
		topic:   topic,
		log:     logger.Nop(),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

var _ consultas.Publicador = (*Kafka)(nil)

func (k *Kafka) Publicar(ctx context.Context, e consultas.Evento) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka: marshal evento: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	rec := &kgo.Record{
		Topic: k.topic,
		Key:   []byte(e.ConsultaID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "tipo", Value: []byte(e.Tipo)},
		},
		Timestamp: e.Fecha,
	}
	if err := k.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka: produce %s: %w", e.Tipo, err)
	}
	k.log.Debug("evento publicado", map[string]any{
		"tipo":        e.Tipo,
		"consulta_id": e.ConsultaID,
		"topic":       k.topic,
	})
	return nil
}

func (k *Kafka) Close() error {
	k.client.Close()
	return nil
}
