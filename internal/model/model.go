package model

import "time"

// Session is the authenticated identity the rest of the app acts under.
// It is owned by the session store; everything else only reads it.
type Session struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// User is the account record held by the identity provider.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ClientRef is the read-only projection used to populate client pickers.
type ClientRef struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type Client struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// SessionRecord is a scheduled or held appointment with a client.
// Date and Time are kept as the user entered them ("2006-01-02", "15:04");
// the store does not re-interpret them across timezones.
type SessionRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ClientID    string    `json:"clientId"`
	SessionDate string    `json:"sessionDate"`
	SessionTime string    `json:"sessionTime"`
	Duration    int       `json:"duration"`
	SessionType string    `json:"sessionType"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Payment struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	ClientID    string    `json:"clientId"`
	Amount      float64   `json:"amount"`
	Currency    string    `json:"currency"`
	PaymentDate string    `json:"paymentDate"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ClientID  string    `json:"clientId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
