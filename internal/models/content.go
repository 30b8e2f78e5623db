package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Meta holds the fields every reference-data document carries. They are always set by
// the server, never taken from a request body.
type Meta struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy string        `bson:"created_by" json:"createdBy"`
	CreatedAt time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updated_at" json:"updatedAt"`
}

// Stamp resets server-owned fields. prev is the stored document's meta on update; nil
// means a new document, which gets a fresh id.
func (m *Meta) Stamp(actor string, now time.Time, prev *Meta) {
	if prev == nil {
		m.ID = bson.NewObjectID()
		m.CreatedBy = actor
		m.CreatedAt = now
	} else {
		m.ID = prev.ID
		m.CreatedBy = prev.CreatedBy
		m.CreatedAt = prev.CreatedAt
	}
	m.UpdatedAt = now
}

func (m *Meta) Metadata() *Meta { return m }

type News struct {
	Meta     `bson:",inline"`
	Title    string  `bson:"title" json:"title" binding:"required,max=200"`
	Content  string  `bson:"content" json:"content" binding:"required"`
	Category string  `bson:"category" json:"category" binding:"omitempty,max=50"`
	ImageKey *string `bson:"image_key,omitempty" json:"imageKey,omitempty"`
}

type Event struct {
	Meta        `bson:",inline"`
	Title       string     `bson:"title" json:"title" binding:"required,max=200"`
	Description string     `bson:"description" json:"description"`
	Location    string     `bson:"location" json:"location" binding:"required"`
	Category    string     `bson:"category" json:"category" binding:"omitempty,max=50"`
	StartsAt    time.Time  `bson:"starts_at" json:"startsAt" binding:"required"`
	EndsAt      *time.Time `bson:"ends_at,omitempty" json:"endsAt,omitempty" binding:"omitempty,gtfield=StartsAt"`
}

type GalleryItem struct {
	Meta        `bson:",inline"`
	Title       string `bson:"title" json:"title" binding:"required,max=200"`
	Description string `bson:"description" json:"description"`
	Category    string `bson:"category" json:"category" binding:"omitempty,max=50"`
	ObjectKey   string `bson:"object_key" json:"objectKey" binding:"required"`
}

type Document struct {
	Meta        `bson:",inline"`
	Title       string `bson:"title" json:"title" binding:"required,max=200"`
	Description string `bson:"description" json:"description"`
	Category    string `bson:"category" json:"category" binding:"omitempty,max=50"`
	ObjectKey   string `bson:"object_key" json:"objectKey" binding:"required"`
	FileType    string `bson:"file_type" json:"fileType" binding:"required,max=20"`
}

type Meeting struct {
	Meta      `bson:",inline"`
	Title     string    `bson:"title" json:"title" binding:"required,max=200"`
	Agenda    string    `bson:"agenda" json:"agenda"`
	Venue     string    `bson:"venue" json:"venue" binding:"required"`
	HeldAt    time.Time `bson:"held_at" json:"heldAt" binding:"required"`
	Minutes   string    `bson:"minutes" json:"minutes"`
	Attendees []string  `bson:"attendees" json:"attendees"`
}

type Member struct {
	Meta        `bson:",inline"`
	Name        string     `bson:"name" json:"name" binding:"required,max=120"`
	Designation string     `bson:"designation" json:"designation" binding:"required,max=60"`
	Ward        string     `bson:"ward" json:"ward"`
	Phone       string     `bson:"phone" json:"phone"`
	Email       string     `bson:"email" json:"email" binding:"omitempty,email"`
	PhotoKey    *string    `bson:"photo_key,omitempty" json:"photoKey,omitempty"`
	TermStart   time.Time  `bson:"term_start" json:"termStart" binding:"required"`
	TermEnd     *time.Time `bson:"term_end,omitempty" json:"termEnd,omitempty"`
}

type ServiceType struct {
	Meta              `bson:",inline"`
	Name              string   `bson:"name" json:"name" binding:"required,max=120"`
	Description       string   `bson:"description" json:"description"`
	RequiredDocuments []string `bson:"required_documents" json:"requiredDocuments"`
	ProcessingDays    int      `bson:"processing_days" json:"processingDays" binding:"gte=0"`
	Fee               float64  `bson:"fee" json:"fee" binding:"gte=0"`
	IsActive          bool     `bson:"is_active" json:"isActive"`
}

type ServiceRequestStatus string

const (
	ServiceRequestPending    ServiceRequestStatus = "pending"
	ServiceRequestInProgress ServiceRequestStatus = "in_progress"
	ServiceRequestApproved   ServiceRequestStatus = "approved"
	ServiceRequestRejected   ServiceRequestStatus = "rejected"
)

type ServiceRequest struct {
	Meta          `bson:",inline"`
	ServiceTypeID string               `bson:"service_type_id" json:"serviceTypeId" binding:"required"`
	Details       string               `bson:"details" json:"details" binding:"required,max=2000"`
	Status        ServiceRequestStatus `bson:"status" json:"status"`
	Remarks       string               `bson:"remarks" json:"remarks"`
}

// ObjectKeys lists the stored objects a document references.
func (n *News) ObjectKeys() []string { return optionalKey(n.ImageKey) }

func (g *GalleryItem) ObjectKeys() []string { return []string{g.ObjectKey} }

func (d *Document) ObjectKeys() []string { return []string{d.ObjectKey} }

func (m *Member) ObjectKeys() []string { return optionalKey(m.PhotoKey) }

func optionalKey(key *string) []string {
	if key == nil || *key == "" {
		return nil
	}
	return []string{*key}
}

func (s ServiceRequestStatus) Valid() bool {
	switch s {
	case ServiceRequestPending, ServiceRequestInProgress, ServiceRequestApproved, ServiceRequestRejected:
		return true
	}
	return false
}
