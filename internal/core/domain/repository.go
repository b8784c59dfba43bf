package domain

import "context"

// ClientRepository defines the interface for client directory data access
type ClientRepository interface {
	EnsureSchema(ctx context.Context) error
	CreateClient(ctx context.Context, name, surname, email string, phones []int64) (int64, error)
	AddPhone(ctx context.Context, clientID, number int64) (int64, error)
	GetClient(ctx context.Context, clientID int64) (*Client, error)
	UpdateClient(ctx context.Context, clientID int64, upd ClientUpdate) (*Client, error)
	DeletePhone(ctx context.Context, clientID, number int64) error
	DeleteClient(ctx context.Context, clientID int64) error
	FindClients(ctx context.Context, c Criteria) ([]ClientPhone, error)
	ListClients(ctx context.Context) ([]ClientPhone, error)
}
