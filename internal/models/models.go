package models

// Opportunity is the read-only contract opportunity record the core consumes.
// It is assembled by the SAM.gov collaborator client; the core never writes it.
type Opportunity struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Agency            string   `json:"agency"`
	Link              string   `json:"link"`
	ClosingDate       string   `json:"closing_date"`
	ResourceLinks     []string `json:"resource_links"`
	DescriptionSource string   `json:"description_source"`
}

// ChatRole distinguishes the two sides of a transcript.
type ChatRole string

const (
	RoleAgent ChatRole = "agent"
	RoleUser  ChatRole = "user"
)

// ChatMessage is one turn in a transcript.
type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// BidStatus is the bid-progress workflow state. The set is ordered and
// extensible; transitions only move forward.
type BidStatus string

const (
	StatusDrafting       BidStatus = "Drafting"
	StatusRFQsSent       BidStatus = "RFQs Sent"
	StatusQuotesReceived BidStatus = "Quotes Received"
	StatusSubmitted      BidStatus = "Submitted"
)

// BidRecord tracks one opportunity through the bid workflow. At most one
// record exists per opportunity id in the ledger.
type BidRecord struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Agency            string    `json:"agency"`
	Status            BidStatus `json:"status"`
	Deadline          string    `json:"deadline"`
	Source            string    `json:"source"`
	LinkToOpportunity string    `json:"linkToOpportunity"`
}

// BidPatch carries the fields an upsert overwrites. Empty fields are left
// untouched on an existing record.
type BidPatch struct {
	Title             string
	Agency            string
	Status            BidStatus
	Deadline          string
	Source            string
	LinkToOpportunity string
}
