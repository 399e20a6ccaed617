package resource

import (
	"context"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/client"
)

// Stores bundles one request store per resource collection, all sharing a
// single API client so credentials and retry behavior stay consistent.
type Stores struct {
	Organizations *client.Store[Organization]
	Teams         *client.Store[Team]
	Users         *client.Store[User]
	Clients       *client.Store[Client]
	Deals         *client.Store[Deal]
	Payments      *client.Store[Payment]
	Commissions   *client.Store[Commission]
	Invoices      *client.Store[Invoice]
}

// NewStores creates the per-resource stores for the given client.
func NewStores(c *client.Client) *Stores {
	return &Stores{
		Organizations: client.NewStore[Organization](c),
		Teams:         client.NewStore[Team](c),
		Users:         client.NewStore[User](c),
		Clients:       client.NewStore[Client](c),
		Deals:         client.NewStore[Deal](c),
		Payments:      client.NewStore[Payment](c),
		Commissions:   client.NewStore[Commission](c),
		Invoices:      client.NewStore[Invoice](c),
	}
}

// FetchDeals lists all deals visible to the backend credential and filters
// them to what the given role may see from its own scope.
func (s *Stores) FetchDeals(ctx context.Context, e *tollgate.Engine, role tollgate.Role, actor tollgate.Scope) ([]Deal, error) {
	deals, err := s.Deals.Fetch(ctx, EndpointDeals)
	if err != nil {
		return nil, err
	}
	return tollgate.FilterByScope(e, deals, role, actor, tollgate.PermManageDeals), nil
}

// FetchClients lists all clients and filters them by scope.
func (s *Stores) FetchClients(ctx context.Context, e *tollgate.Engine, role tollgate.Role, actor tollgate.Scope) ([]Client, error) {
	clients, err := s.Clients.Fetch(ctx, EndpointClients)
	if err != nil {
		return nil, err
	}
	return tollgate.FilterByScope(e, clients, role, actor, tollgate.PermManageClients), nil
}

// FetchPayments lists all payments and filters them by scope.
func (s *Stores) FetchPayments(ctx context.Context, e *tollgate.Engine, role tollgate.Role, actor tollgate.Scope) ([]Payment, error) {
	payments, err := s.Payments.Fetch(ctx, EndpointPayments)
	if err != nil {
		return nil, err
	}
	return tollgate.FilterByScope(e, payments, role, actor, tollgate.PermManagePayments), nil
}
