package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"unipathway-admin-auth/internal/bucketing"
	"unipathway-admin-auth/internal/client"
	"unipathway-admin-auth/internal/models"
	"unipathway-admin-auth/internal/util"
)

const sinkTimeout = 5 * time.Second

// Recorder fans security events out to Kafka, ClickHouse and
// Elasticsearch. All sinks are optional and best effort: a failed write
// is logged and never surfaces to the auth path that produced the event.
type Recorder struct {
	buckets    *bucketing.BucketingManager
	producer   *client.KafkaProducer
	clickhouse *client.ClickHouseClient
	search     *client.ESClient
}

func NewRecorder(
	buckets *bucketing.BucketingManager,
	producer *client.KafkaProducer,
	clickhouse *client.ClickHouseClient,
	search *client.ESClient,
) *Recorder {
	return &Recorder{
		buckets:    buckets,
		producer:   producer,
		clickhouse: clickhouse,
		search:     search,
	}
}

// Record builds the event row and writes it to every configured sink.
// Sinks run concurrently and independently; the slowest one bounds the
// call, which is why callers usually run Record on its own goroutine.
func (r *Recorder) Record(ctx context.Context, eventType string, session *models.AdminSession, ipAddress, details string) {
	now := time.Now().UTC()

	// Failure events carry user-supplied input in details; scrub anything
	// script-like before it reaches the sinks.
	if util.ContainsSuspicious(details) {
		details = util.SanitizeInput(details)
	}

	event := models.SecurityEvent{
		EventDate: r.buckets.GetDateBucket(now),
		EventTime: now,
		EventType: eventType,
		IPAddress: ipAddress,
		Details:   details,
	}
	if session != nil {
		event.AdminID = session.AdminID
		event.Email = session.Email
		event.SessionID = session.Token
		event.EventBucket = r.buckets.GetAdminBucket(session.AdminID)
	} else {
		event.EventBucket = r.buckets.GetEventBucket(ipAddress + eventType)
	}

	// Detach from the request context so in-flight audit writes survive
	// the response being sent.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(sinkCtx)

	if r.producer != nil {
		g.Go(func() error {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			key := []byte(fmt.Sprintf("%d", event.EventBucket))
			return r.producer.Produce(gctx, key, payload, map[string]string{
				"event_type": event.EventType,
			})
		})
	}

	if r.clickhouse != nil {
		g.Go(func() error {
			query := fmt.Sprintf(`INSERT INTO %s (
                event_bucket, admin_id, email, event_date, event_time,
                event_type, ip_address, session_id, details
            )`, r.clickhouse.Table())
			return r.clickhouse.BatchInsert(gctx, query, [][]interface{}{{
				event.EventBucket, event.AdminID, event.Email,
				event.EventDate, event.EventTime, event.EventType,
				event.IPAddress, event.SessionID, event.Details,
			}})
		})
	}

	if r.search != nil {
		g.Go(func() error {
			res, err := r.search.IndexDocument(r.search.Index(), uuid.New().String(), event)
			if err != nil {
				return err
			}
			defer res.Body.Close()
			if res.IsError() {
				return fmt.Errorf("elasticsearch index error: %s", res.Status())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		util.Warn("Audit event write failed",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

// SearchResult is a page of audit events from Elasticsearch.
type SearchResult struct {
	Total  int                    `json:"total"`
	Events []models.SecurityEvent `json:"events"`
}

type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			Source models.SecurityEvent `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search queries the audit index for events, newest first. An empty
// eventType matches everything. Returns an error when no search sink is
// configured.
func (r *Recorder) Search(ctx context.Context, eventType, email string, size int) (*SearchResult, error) {
	if r.search == nil {
		return nil, fmt.Errorf("audit search is not configured")
	}
	if size <= 0 || size > 100 {
		size = 50
	}

	must := []map[string]interface{}{}
	if eventType != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"event_type": eventType},
		})
	}
	if email != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"email": email},
		})
	}

	query := map[string]interface{}{
		"size": size,
		"sort": []map[string]interface{}{
			{"event_time": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
	}

	res, err := r.search.Search(ctx, r.search.Index(), query)
	if err != nil {
		return nil, fmt.Errorf("audit search failed: %w", err)
	}

	var parsed esSearchResponse
	if err := r.search.ParseResponse(res, &parsed); err != nil {
		return nil, fmt.Errorf("audit search failed: %w", err)
	}

	result := &SearchResult{
		Total:  parsed.Hits.Total.Value,
		Events: make([]models.SecurityEvent, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		result.Events = append(result.Events, hit.Source)
	}

	return result, nil
}
