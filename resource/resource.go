// Package resource defines the payment receiving domain objects exchanged
// with the backend API, each carrying the ownership scope the engine uses
// for resource-level access decisions.
package resource

import (
	"time"

	"github.com/xraph/tollgate"
	"github.com/xraph/tollgate/id"
)

// API endpoints, matching the route identifiers in the default ruleset.
const (
	EndpointOrganizations = "/organizations"
	EndpointTeams         = "/teams"
	EndpointUsers         = "/users"
	EndpointClients       = "/clients"
	EndpointDeals         = "/deals"
	EndpointPayments      = "/payments"
	EndpointCommissions   = "/commissions"
	EndpointInvoices      = "/invoices"
)

// Organization is the top-level tenant.
type Organization struct {
	ID        id.ID     `json:"id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func (o Organization) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: o.ID.String()}
}

// Team groups users within an organization.
type Team struct {
	ID        id.ID     `json:"id"`
	OrgID     string    `json:"org_id"`
	Name      string    `json:"name"`
	LeadID    string    `json:"lead_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (t Team) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: t.OrgID, TeamID: t.ID.String()}
}

// User is an account holding one of the closed roles.
type User struct {
	ID        id.ID         `json:"id"`
	OrgID     string        `json:"org_id"`
	TeamID    string        `json:"team_id,omitempty"`
	Email     string        `json:"email"`
	FullName  string        `json:"full_name"`
	Role      tollgate.Role `json:"role"`
	Active    bool          `json:"active"`
	CreatedAt time.Time     `json:"created_at"`
}

func (u User) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: u.OrgID, TeamID: u.TeamID, UserID: u.ID.String()}
}

// Client is a customer the organization receives payments from.
type Client struct {
	ID        id.ID     `json:"id"`
	OrgID     string    `json:"org_id"`
	TeamID    string    `json:"team_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Client) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: c.OrgID, TeamID: c.TeamID, OwnerID: c.OwnerID}
}

// DealStatus tracks a deal through its lifecycle.
type DealStatus string

const (
	DealOpen      DealStatus = "open"
	DealWon       DealStatus = "won"
	DealLost      DealStatus = "lost"
	DealCancelled DealStatus = "cancelled"
)

// Deal is an agreement with a client that payments are received against.
type Deal struct {
	ID        id.ID      `json:"id"`
	OrgID     string     `json:"org_id"`
	TeamID    string     `json:"team_id,omitempty"`
	OwnerID   string     `json:"owner_id"`
	ClientID  string     `json:"client_id"`
	Title     string     `json:"title"`
	Amount    int64      `json:"amount"`
	Currency  string     `json:"currency"`
	Status    DealStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

func (d Deal) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: d.OrgID, TeamID: d.TeamID, OwnerID: d.OwnerID}
}

// PaymentStatus tracks a received payment through verification.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Payment is money received against a deal, pending verification.
type Payment struct {
	ID         id.ID         `json:"id"`
	OrgID      string        `json:"org_id"`
	TeamID     string        `json:"team_id,omitempty"`
	OwnerID    string        `json:"owner_id"`
	DealID     string        `json:"deal_id"`
	Amount     int64         `json:"amount"`
	Currency   string        `json:"currency"`
	Status     PaymentStatus `json:"status"`
	VerifiedBy string        `json:"verified_by,omitempty"`
	ReceivedAt time.Time     `json:"received_at"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (p Payment) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: p.OrgID, TeamID: p.TeamID, OwnerID: p.OwnerID}
}

// Commission is a salesperson's cut of a verified payment.
type Commission struct {
	ID        id.ID     `json:"id"`
	OrgID     string    `json:"org_id"`
	TeamID    string    `json:"team_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Rate      float64   `json:"rate"`
	Paid      bool      `json:"paid"`
	CreatedAt time.Time `json:"created_at"`
}

func (c Commission) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: c.OrgID, TeamID: c.TeamID, OwnerID: c.OwnerID}
}

// Invoice is a billing document issued for a deal.
type Invoice struct {
	ID        id.ID     `json:"id"`
	OrgID     string    `json:"org_id"`
	TeamID    string    `json:"team_id,omitempty"`
	OwnerID   string    `json:"owner_id"`
	DealID    string    `json:"deal_id"`
	Number    string    `json:"number"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Verified  bool      `json:"verified"`
	DueAt     time.Time `json:"due_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (i Invoice) AccessScope() tollgate.Scope {
	return tollgate.Scope{OrgID: i.OrgID, TeamID: i.TeamID, OwnerID: i.OwnerID}
}

// Compile-time scope checks.
var (
	_ tollgate.Scoped = Organization{}
	_ tollgate.Scoped = Team{}
	_ tollgate.Scoped = User{}
	_ tollgate.Scoped = Client{}
	_ tollgate.Scoped = Deal{}
	_ tollgate.Scoped = Payment{}
	_ tollgate.Scoped = Commission{}
	_ tollgate.Scoped = Invoice{}
)
