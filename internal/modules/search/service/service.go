package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	eventsIndex = "events"
	talksIndex  = "talks"
)

// ErrUnavailable is returned by Search* when no search backend is configured.
var ErrUnavailable = errors.New("search backend unavailable")

type SearchService interface {
	IndexEvent(ctx context.Context, event *entity.Event) error
	IndexTalk(ctx context.Context, talk *entity.Talk) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	DeleteTalk(ctx context.Context, id uuid.UUID) error
	SearchEvents(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
	SearchTalks(ctx context.Context, query string, limit int) ([]uuid.UUID, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	log       *zap.Logger
}

// NewSearchService returns a Meilisearch-backed index, or a no-op one when client is nil.
func NewSearchService(client meilisearch.ServiceManager, log *zap.Logger) SearchService {
	if client == nil {
		return noopSearch{}
	}

	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		log:       log,
	}
	s.initIndexes()
	return s
}

func (s *meiliSearchService) initIndexes() {
	sortable := []string{"cfp_deadline"}
	if _, err := s.client.Index(eventsIndex).UpdateSortableAttributes(&sortable); err != nil {
		s.log.Warn("update events sortable attributes", zap.Error(err))
	}

	filterable := []interface{}{"user_id"}
	if _, err := s.client.Index(talksIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn("update talks filterable attributes", zap.Error(err))
	}
}

type eventDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Notes       string `json:"notes"`
	CFPDeadline int64  `json:"cfp_deadline"`
}

type talkDoc struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	UserID   string `json:"user_id"`
}

// cleanText strips markup so only readable words are indexed.
func (s *meiliSearchService) cleanText(content string) string {
	content = strings.NewReplacer("</p>", " ", "<br>", " ", "</div>", " ").Replace(content)
	clean := html.UnescapeString(s.sanitizer.Sanitize(content))
	return strings.Join(strings.Fields(clean), " ")
}

func (s *meiliSearchService) IndexEvent(ctx context.Context, event *entity.Event) error {
	doc := eventDoc{
		ID:       event.ID.String(),
		Name:     event.Name,
		Location: event.Location,
		Notes:    s.cleanText(event.Notes),
	}
	if event.CFPDeadline != nil {
		doc.CFPDeadline = event.CFPDeadline.Unix()
	}

	task, err := s.client.Index(eventsIndex).AddDocumentsWithContext(ctx, []eventDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed event", zap.Stringer("id", event.ID), zap.Int64("task", task.TaskUID))
	return nil
}

func (s *meiliSearchService) IndexTalk(ctx context.Context, talk *entity.Talk) error {
	doc := talkDoc{
		ID:       talk.ID.String(),
		Title:    talk.Title,
		Abstract: s.cleanText(talk.Abstract),
		UserID:   talk.UserID.String(),
	}

	task, err := s.client.Index(talksIndex).AddDocumentsWithContext(ctx, []talkDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	s.log.Debug("indexed talk", zap.Stringer("id", talk.ID), zap.Int64("task", task.TaskUID))
	return nil
}

func (s *meiliSearchService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(eventsIndex).DeleteDocumentWithContext(ctx, id.String())
	return err
}

func (s *meiliSearchService) DeleteTalk(ctx context.Context, id uuid.UUID) error {
	_, err := s.client.Index(talksIndex).DeleteDocumentWithContext(ctx, id.String())
	return err
}

func (s *meiliSearchService) SearchEvents(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	return s.search(ctx, eventsIndex, query, limit)
}

func (s *meiliSearchService) SearchTalks(ctx context.Context, query string, limit int) ([]uuid.UUID, error) {
	return s.search(ctx, talksIndex, query, limit)
}

func (s *meiliSearchService) search(ctx context.Context, index, query string, limit int) ([]uuid.UUID, error) {
	raw, err := s.client.Index(index).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	})
	if err != nil {
		return nil, err
	}
	return decodeHitIDs(*raw)
}

func decodeHitIDs(raw []byte) ([]uuid.UUID, error) {
	var body struct {
		Hits []struct {
			ID string `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(body.Hits))
	for _, hit := range body.Hits {
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}

type noopSearch struct{}

func (noopSearch) IndexEvent(context.Context, *entity.Event) error { return nil }
func (noopSearch) IndexTalk(context.Context, *entity.Talk) error   { return nil }
func (noopSearch) DeleteEvent(context.Context, uuid.UUID) error    { return nil }
func (noopSearch) DeleteTalk(context.Context, uuid.UUID) error     { return nil }

func (noopSearch) SearchEvents(context.Context, string, int) ([]uuid.UUID, error) {
	return nil, ErrUnavailable
}

func (noopSearch) SearchTalks(context.Context, string, int) ([]uuid.UUID, error) {
	return nil, ErrUnavailable
}
