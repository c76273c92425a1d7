package model

import "time"

// Lead is a job opening ingested from a platform job-alert email and
// cached locally. Leads are a client-side convenience list; they have
// no server-side counterpart resource.
type Lead struct {
	// ID is a locally generated identifier.
	ID string `json:"id" db:"id"`

	// MessageID is the Message-ID of the originating email, used to
	// deduplicate repeated ingestion runs.
	MessageID string `json:"message_id" db:"message_id"`

	// Title is the job title extracted from the alert.
	Title string `json:"title" db:"title"`

	// Company is the hiring company name.
	Company string `json:"company" db:"company"`

	// Location is the advertised location, free-form.
	Location string `json:"location" db:"location"`

	// URL links back to the posting on the platform.
	URL string `json:"url" db:"url"`

	// Summary is the plain-text body excerpt from the alert email.
	Summary string `json:"summary" db:"summary"`

	// Viewed reports whether the user opened this lead locally.
	Viewed bool `json:"viewed" db:"viewed"`

	// ReceivedAt is when the alert email arrived.
	ReceivedAt time.Time `json:"received_at" db:"received_at"`

	// IngestedAt is when this lead was written to the local cache.
	IngestedAt time.Time `json:"ingested_at" db:"ingested_at"`
}
