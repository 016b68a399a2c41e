// internal/models/application.go
package models

import "time"

// EligibilityPath is the outcome of the eligibility decision engine.
type EligibilityPath string

const (
	PathPending      EligibilityPath = ""
	PathFastTrack    EligibilityPath = "FAST_TRACK"
	PathConditional  EligibilityPath = "CONDITIONAL"
	PathManualReview EligibilityPath = "MANUAL_REVIEW"
	PathHardReject   EligibilityPath = "HARD_REJECT"
	PathRegister     EligibilityPath = "REGISTER"
)

// ConversationStage tracks where the application conversation currently is.
type ConversationStage string

const (
	StageLoanUnderstanding ConversationStage = "loan_understanding"
	StagePhoneGathering    ConversationStage = "phone_gathering"
	StageAmountGathering   ConversationStage = "amount_gathering"
	StageEligibilityCheck  ConversationStage = "eligibility_check"
	StageDocumentNeeded    ConversationStage = "document_needed"
	StageApproved          ConversationStage = "approved"
	StageCompleted         ConversationStage = "completed"
)

// Terminal reports whether the eligibility decision is settled for this stage.
// While "approved" the decision itself is final; only tenure selection remains.
func (s ConversationStage) Terminal() bool {
	return s == StageApproved || s == StageCompleted
}

// ApplicationState is the per-session conversation state. One instance per
// session, owned exclusively by the session while a turn is processed.
// Phone and RequestedAmount are write-once: once set they are never
// overwritten by later extraction.
type ApplicationState struct {
	SessionID string `json:"sessionId"`

	Phone    string `json:"phone,omitempty"`
	Verified bool   `json:"verified"`
	NotInCRM bool   `json:"notInCrm"`

	// Populated from the registry on successful verification, read-only after.
	CustomerName     string `json:"customerName,omitempty"`
	CreditScore      int    `json:"creditScore,omitempty"`
	PreApprovedLimit int64  `json:"preApprovedLimit"`
	Income           int64  `json:"income"`

	RequestedAmount  int64 `json:"requestedAmount"`
	DocumentUploaded bool  `json:"documentUploaded"`

	EligibilityPath   EligibilityPath   `json:"eligibilityPath,omitempty"`
	ConversationStage ConversationStage `json:"conversationStage"`

	SelectedTenure int     `json:"selectedTenure,omitempty"` // months
	FinalEMI       float64 `json:"finalEmi,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewApplicationState returns a fresh state at the opening stage.
func NewApplicationState(sessionID string) *ApplicationState {
	now := time.Now().UTC()
	return &ApplicationState{
		SessionID:         sessionID,
		ConversationStage: StageLoanUnderstanding,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Message is a single chat turn in the conversation history.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// TurnResult is what the orchestrator returns for a processed turn.
type TurnResult struct {
	Message string            `json:"message"`
	State   *ApplicationState `json:"state"`
	// Approval is populated the moment a terminal approval is reached.
	Approval *ApprovalContext `json:"approval,omitempty"`
}

// ApprovalContext carries everything the sanction letter and EMI statement
// need, fully populated at the moment a terminal approval state is reached.
type ApprovalContext struct {
	CustomerName     string  `json:"customerName"`
	Phone            string  `json:"phone"`
	RequestedAmount  int64   `json:"requestedAmount"`
	PreApprovedLimit int64   `json:"preApprovedLimit"`
	Income           int64   `json:"income"`
	CreditScore      int     `json:"creditScore"`
	EMI              float64 `json:"emi"`
	InterestRate     float64 `json:"interestRate"`
	TenureMonths     int     `json:"tenureMonths"`
	ReferenceID      string  `json:"referenceId"`
}
