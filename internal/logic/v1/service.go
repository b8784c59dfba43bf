package v1

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/client-service/internal/core/domain"
	"github.com/duynhne/client-service/middleware"
)

// ClientService holds the business rules of the client directory.
// Input is validated here before any storage round trip; the repository
// remains the authority for uniqueness and referential integrity.
type ClientService struct {
	repo   domain.ClientRepository
	logger *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(repo domain.ClientRepository, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, logger: logger}
}

// observe ends span and records the operation outcome.
func (s *ClientService) observe(span trace.Span, op string, start time.Time, err error) {
	kind := domain.KindOf(err)
	if err != nil {
		middleware.RecordError(span, err)
		if kind == domain.KindStorage {
			s.logger.Error("Directory operation failed", zap.String("operation", op), zap.Error(err))
		} else {
			s.logger.Debug("Directory operation rejected", zap.String("operation", op), zap.String("kind", kind), zap.Error(err))
		}
	}
	span.SetAttributes(attribute.String("result", resultLabel(kind)))
	middleware.ObserveOperation(op, kind, time.Since(start))
	span.End()
}

func resultLabel(kind string) string {
	if kind == "" {
		return "ok"
	}
	return kind
}

// EnsureSchema creates the directory tables if they do not exist
func (s *ClientService) EnsureSchema(ctx context.Context) (err error) {
	ctx, span := middleware.StartSpan(ctx, "directory.ensure_schema", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer func(start time.Time) { s.observe(span, "ensure_schema", start, err) }(time.Now())

	return s.repo.EnsureSchema(ctx)
}

// AddClient validates and registers a new client with optional phones.
// Returns the new client id.
func (s *ClientService) AddClient(ctx context.Context, req domain.CreateClientRequest) (id int64, err error) {
	ctx, span := middleware.StartSpan(ctx, "client.add", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int("client.phones", len(req.Phones)),
	))
	defer func(start time.Time) { s.observe(span, "add_client", start, err) }(time.Now())

	if !domain.ValidName(req.Name) || !domain.ValidName(req.Surname) {
		return 0, fmt.Errorf("add client: %w", domain.ErrInvalidName)
	}
	if !domain.ValidEmail(req.Email) {
		return 0, fmt.Errorf("add client %q: %w", req.Email, domain.ErrInvalidEmail)
	}

	phones := make([]int64, 0, len(req.Phones))
	for _, raw := range req.Phones {
		n, err := domain.ParsePhoneNumber(raw)
		if err != nil {
			return 0, fmt.Errorf("add client %q: %w", req.Email, err)
		}
		phones = append(phones, n)
	}

	id, err = s.repo.CreateClient(ctx, req.Name, req.Surname, req.Email, phones)
	if err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int64("client.id", id))
	s.logger.Info("Client added", zap.Int64("client_id", id), zap.Int("phones", len(phones)))
	return id, nil
}

// AddPhone registers a phone number, given as text, for an existing client.
// Returns the new phone id.
func (s *ClientService) AddPhone(ctx context.Context, clientID int64, number string) (id int64, err error) {
	ctx, span := middleware.StartSpan(ctx, "phone.add", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("client.id", clientID),
	))
	defer func(start time.Time) { s.observe(span, "add_phone", start, err) }(time.Now())

	n, err := domain.ParsePhoneNumber(number)
	if err != nil {
		return 0, fmt.Errorf("add phone: %w", err)
	}

	id, err = s.repo.AddPhone(ctx, clientID, n)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Phone added", zap.Int64("client_id", clientID), zap.Int64("phone_id", id))
	return id, nil
}

// UpdateClient changes only the supplied fields and returns the refreshed record.
func (s *ClientService) UpdateClient(ctx context.Context, clientID int64, upd domain.ClientUpdate) (c *domain.Client, err error) {
	ctx, span := middleware.StartSpan(ctx, "client.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("client.id", clientID),
		attribute.Bool("update.name", upd.Name != nil),
		attribute.Bool("update.surname", upd.Surname != nil),
		attribute.Bool("update.email", upd.Email != nil),
	))
	defer func(start time.Time) { s.observe(span, "update_client", start, err) }(time.Now())

	if (upd.Name != nil && !domain.ValidName(*upd.Name)) || (upd.Surname != nil && !domain.ValidName(*upd.Surname)) {
		return nil, fmt.Errorf("update client %d: %w", clientID, domain.ErrInvalidName)
	}
	if upd.Email != nil && !domain.ValidEmail(*upd.Email) {
		return nil, fmt.Errorf("update client %d: %w", clientID, domain.ErrInvalidEmail)
	}

	c, err = s.repo.UpdateClient(ctx, clientID, upd)
	if err != nil {
		return nil, err
	}

	if !upd.IsEmpty() {
		s.logger.Info("Client updated", zap.Int64("client_id", clientID))
	}
	return c, nil
}

// DeletePhone removes a phone number, given as text, from a client
func (s *ClientService) DeletePhone(ctx context.Context, clientID int64, number string) (err error) {
	ctx, span := middleware.StartSpan(ctx, "phone.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("client.id", clientID),
	))
	defer func(start time.Time) { s.observe(span, "delete_phone", start, err) }(time.Now())

	n, err := domain.ParsePhoneNumber(number)
	if err != nil {
		return fmt.Errorf("delete phone: %w", err)
	}

	if err := s.repo.DeletePhone(ctx, clientID, n); err != nil {
		return err
	}

	s.logger.Info("Phone deleted", zap.Int64("client_id", clientID))
	return nil
}

// DeleteClient removes a client together with all of its phones
func (s *ClientService) DeleteClient(ctx context.Context, clientID int64) (err error) {
	ctx, span := middleware.StartSpan(ctx, "client.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("client.id", clientID),
	))
	defer func(start time.Time) { s.observe(span, "delete_client", start, err) }(time.Now())

	if err := s.repo.DeleteClient(ctx, clientID); err != nil {
		return err
	}

	s.logger.Info("Client deleted", zap.Int64("client_id", clientID))
	return nil
}

// FindClient returns every (client, phone) row matching all supplied criteria.
// Unset criteria match everything.
func (s *ClientService) FindClient(ctx context.Context, req domain.SearchRequest) (rows []domain.ClientPhone, err error) {
	ctx, span := middleware.StartSpan(ctx, "client.find", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer func(start time.Time) { s.observe(span, "find_client", start, err) }(time.Now())

	criteria := domain.Criteria{Name: req.Name, Surname: req.Surname, Email: req.Email}
	if req.Number != nil {
		n, err := domain.ParsePhoneNumber(*req.Number)
		if err != nil {
			return nil, fmt.Errorf("find client: %w", err)
		}
		criteria.Number = &n
	}

	rows, err = s.repo.FindClients(ctx, criteria)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.rows", len(rows)))
	return rows, nil
}

// ListClients returns every (client, phone) row ordered by client id
func (s *ClientService) ListClients(ctx context.Context) (rows []domain.ClientPhone, err error) {
	ctx, span := middleware.StartSpan(ctx, "client.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer func(start time.Time) { s.observe(span, "list_clients", start, err) }(time.Now())

	rows, err = s.repo.ListClients(ctx)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.rows", len(rows)))
	return rows, nil
}
