package storage

import (
	"encoding/json"
	"time"
)

const (
	RoleAdmin       = "admin"
	RoleOrganizer   = "organizer"
	RoleModerator   = "moderator"
	RoleMentor      = "mentor"
	RoleParticipant = "participant"
)

const (
	MentorPending  = "pending"
	MentorApproved = "approved"
	MentorRejected = "rejected"
)

type Profile struct {
	ID              int        `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	Role            string     `json:"role"`
	MentorStatus    *string    `json:"mentor_status,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	MaxTeams        int        `json:"max_teams"`
	CreatedAt       time.Time  `json:"created_at"`
}

type Team struct {
	ID                int       `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	LeaderID          int       `json:"leader_id"`
	JoinCode          string    `json:"join_code"`
	TechStack         []string  `json:"tech_stack"`
	IsReady           bool      `json:"is_ready"`
	LookingForMembers bool      `json:"looking_for_members"`
	MaxMembers        int       `json:"max_members"`
	CreatedAt         time.Time `json:"created_at"`
	MemberCount       int       `json:"member_count,omitempty"`
}

type TeamMember struct {
	ID       int    `json:"id"`
	TeamID   int    `json:"team_id"`
	UserID   int    `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type Vendor struct {
	ID                     int    `json:"id"`
	Name                   string `json:"name"`
	Website                string `json:"website"`
	Icon                   string `json:"icon"`
	RedemptionInstructions string `json:"redemption_instructions"`
}

type Benefit struct {
	ID         int        `json:"id"`
	VendorID   int        `json:"vendor_id"`
	CouponCode string     `json:"coupon_code"`
	IsAssigned bool       `json:"is_assigned"`
	IsActive   bool       `json:"is_active"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
	UserType   string     `json:"user_type"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Assignment joins a benefit assignment with the vendor and coupon the user
// sees on the benefits page.
type Assignment struct {
	ID                     int        `json:"id"`
	UserID                 int        `json:"user_id"`
	BenefitID              int        `json:"benefit_id"`
	IsRedeemed             bool       `json:"is_redeemed"`
	RedeemedAt             *time.Time `json:"redeemed_at,omitempty"`
	CouponCode             string     `json:"coupon_code,omitempty"`
	ExpiryDate             *time.Time `json:"expiry_date,omitempty"`
	VendorName             string     `json:"vendor_name,omitempty"`
	VendorWebsite          string     `json:"vendor_website,omitempty"`
	RedemptionInstructions string     `json:"redemption_instructions,omitempty"`
}

type Event struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	IsPublished bool       `json:"is_published"`
	CreatedAt   time.Time  `json:"created_at"`
}

type GalleryImage struct {
	ID        int       `json:"id"`
	EventID   int       `json:"event_id"`
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

type News struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	CoverImage  string    `json:"cover_image"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type LegalDocument struct {
	ID          int        `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Version     string     `json:"version"`
	IsPublished bool       `json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Theme struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Colors   json.RawMessage `json:"colors"`
	IsActive bool            `json:"is_active"`
}

type Setting struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type ContactMessage struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type LogEntry struct {
	ID        int64  `json:"id"`
	CreatedAt string `json:"created_at"`
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}
