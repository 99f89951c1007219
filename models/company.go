package models

import (
	"strings"
	"time"
)

// Address is a postal address.
type Address struct {
	Street     string `bson:"street,omitempty" json:"street,omitempty" firestore:"street,omitempty"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty" firestore:"postalCode,omitempty"`
	City       string `bson:"city,omitempty" json:"city,omitempty" firestore:"city,omitempty"`
	Country    string `bson:"country,omitempty" json:"country,omitempty" firestore:"country,omitempty"`
}

// IsZero reports whether no address field is set.
func (a Address) IsZero() bool {
	return a == Address{}
}

// Contact is a read-only snapshot of a party's contact data.
type Contact struct {
	Name    string   `bson:"name" json:"name" firestore:"name"`
	Email   string   `bson:"email,omitempty" json:"email,omitempty" firestore:"email,omitempty"`
	Phone   string   `bson:"phone,omitempty" json:"phone,omitempty" firestore:"phone,omitempty"`
	Address *Address `bson:"address,omitempty" json:"address,omitempty" firestore:"address,omitempty"`
}

// TransferPointer is the denormalized "last transfer" on a company.
type TransferPointer struct {
	TransferID string    `bson:"transferId" json:"transferId" firestore:"transferId"`
	Amount     int64     `bson:"amount" json:"amount" firestore:"amount"`
	Currency   string    `bson:"currency" json:"currency" firestore:"currency"`
	At         time.Time `bson:"at" json:"at" firestore:"at"`
}

// Company is a service provider.
type Company struct {
	ID              string           `bson:"id" json:"id" firestore:"id"`
	CompanyName     string           `bson:"companyName" json:"companyName" firestore:"companyName"`
	Email           string           `bson:"email,omitempty" json:"email,omitempty" firestore:"email,omitempty"`
	Phone           string           `bson:"phone,omitempty" json:"phone,omitempty" firestore:"phone,omitempty"`
	Address         Address          `bson:"address" json:"address" firestore:"address"`
	StripeAccountID string           `bson:"stripeAccountId,omitempty" json:"stripeAccountId,omitempty" firestore:"stripeAccountId,omitempty"`
	FCMToken        string           `bson:"fcmToken,omitempty" json:"fcmToken,omitempty" firestore:"fcmToken,omitempty"`
	LastTransfer    *TransferPointer `bson:"lastTransfer,omitempty" json:"lastTransfer,omitempty" firestore:"lastTransfer,omitempty"`
	CreatedAt       time.Time        `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt       time.Time        `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// DisplayName returns the name shown to customers.
func (c *Company) DisplayName() string {
	if name := strings.TrimSpace(c.CompanyName); name != "" {
		return name
	}
	return "Anbieter"
}

// Contact snapshots the company's contact data.
func (c *Company) Contact() *Contact {
	contact := &Contact{Name: c.DisplayName(), Email: c.Email, Phone: c.Phone}
	if !c.Address.IsZero() {
		addr := c.Address
		contact.Address = &addr
	}
	return contact
}

// User is a customer.
type User struct {
	ID        string    `bson:"id" json:"id" firestore:"id"`
	FirstName string    `bson:"firstName,omitempty" json:"firstName,omitempty" firestore:"firstName,omitempty"`
	LastName  string    `bson:"lastName,omitempty" json:"lastName,omitempty" firestore:"lastName,omitempty"`
	Email     string    `bson:"email,omitempty" json:"email,omitempty" firestore:"email,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty" firestore:"phone,omitempty"`
	Address   Address   `bson:"address" json:"address" firestore:"address"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"fcmToken,omitempty" firestore:"fcmToken,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" firestore:"updatedAt"`
}

// DisplayName returns "First Last", falling back to the email and then to a
// generic label.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Email != "" {
		return u.Email
	}
	return "Kunde"
}

// Contact snapshots the user's contact data.
func (u *User) Contact() *Contact {
	contact := &Contact{Name: u.DisplayName(), Email: u.Email, Phone: u.Phone}
	if !u.Address.IsZero() {
		addr := u.Address
		contact.Address = &addr
	}
	return contact
}
