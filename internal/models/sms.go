package models

// SMSStatus tracks delivery of a single SMS history entry.
type SMSStatus string

const (
	SMSPending SMSStatus = "pending"
	SMSSent    SMSStatus = "sent"
	SMSFailed  SMSStatus = "failed"
)

// SMSMethod is the channel an SMS was sent through.
type SMSMethod string

const (
	SMSMethodNative SMSMethod = "native"
	SMSMethodBridge SMSMethod = "bridge"
	SMSMethodAPI    SMSMethod = "api"
)

// SMSHistoryEntry is one per-recipient send attempt in sms_history.json.
// Resending never mutates an existing entry; it appends a new one.
type SMSHistoryEntry struct {
	ID            string    `json:"id"`
	TeacherID     string    `json:"teacherId"`
	TeacherName   string    `json:"teacherName"`
	PhoneNumber   string    `json:"phoneNumber"`
	Message       string    `json:"message"`
	Status        SMSStatus `json:"status"`
	Method        SMSMethod `json:"method,omitempty"`
	SentAt        string    `json:"sentAt"`
	FailureReason string    `json:"failureReason,omitempty"`
}
