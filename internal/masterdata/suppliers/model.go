package suppliers

import "time"

type Supplier struct {
	ID            int64     `json:"id"`
	CompanyID     int64     `json:"company_id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	Address       *string   `json:"address,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
