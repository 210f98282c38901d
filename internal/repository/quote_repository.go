package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"BotBourse/internal/domain/models"
	"BotBourse/internal/domain/repository"
	pkgkafka "BotBourse/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, q *models.Quote) error {
	query := fmt.Sprintf("INSERT INTO %s (ts, ticker, price, volume, source, event_id, seq) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	// Idempotency placeholders: event_id and seq derived from ticker+timestamp
	eventID := fmt.Sprintf("%s-%d", q.Ticker, q.Timestamp)
	seq := uint64(q.Timestamp)
	_, err := s.db.ExecContext(ctx, query,
		time.UnixMilli(q.Timestamp),
		q.Ticker,
		q.Price,
		q.Volume,
		"stream",
		eventID,
		seq,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
	const chunkSize = 2000
	for start := 0; start < len(quotes); start += chunkSize {
		end := start + chunkSize
		if end > len(quotes) {
			end = len(quotes)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*7)
		for _, q := range quotes[start:end] {
			if q == nil || q.Ticker == "" || q.Timestamp == 0 {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", q.Ticker, q.Timestamp)
			seq := uint64(q.Timestamp)
			values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.UnixMilli(q.Timestamp),
				q.Ticker,
				q.Price,
				q.Volume,
				"stream",
				eventID,
				seq,
			)
		}
		if len(values) == 0 {
			continue
		}
		query := fmt.Sprintf("INSERT INTO %s (ts, ticker, price, volume, source, event_id, seq) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, ticker string, from, to time.Time, limit int) ([]*models.Quote, error) {
	query := fmt.Sprintf("SELECT ticker, ts, price, volume FROM %s WHERE ticker = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, query, ticker, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []*models.Quote
	for rows.Next() {
		var q models.Quote
		var ts time.Time
		if err := rows.Scan(&q.Ticker, &ts, &q.Price, &q.Volume); err != nil {
			return nil, err
		}
		q.Timestamp = ts.UnixMilli()
		quotes = append(quotes, &q)
	}
	return quotes, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, q *models.Quote) error {
	return p.producer.Publish(ctx, p.topic, []byte(q.Ticker), map[string]interface{}{
		"ticker": q.Ticker,
		"t":      q.Timestamp,
		"c":      q.Price,
		"v":      q.Volume,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, quotes []*models.Quote) error {
	if len(quotes) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(quotes))
	for i, q := range quotes {
		msgs[i] = pkgkafka.Message{
			Key: []byte(q.Ticker),
			Value: map[string]interface{}{
				"ticker": q.Ticker,
				"t":      q.Timestamp,
				"c":      q.Price,
				"v":      q.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
