package entity

import "strings"

// User is a tool user keyed by their Wikimedia username.
type User struct {
	Username            string `json:"username"`
	IsProjectLead       bool   `json:"is_project_lead"`
	RequestedLeadStatus bool   `json:"requested_lead_status"`
}

// Validate validates the user entity
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrInvalidUserName
	}
	return nil
}

// Role is the display role of a user.
func (u *User) Role() string {
	if u.IsProjectLead {
		return "project_lead"
	}
	return "contributor"
}

// Identity is the authenticated caller of a request, handed to every mutating operation.
type Identity struct {
	Username    string
	AccessToken string
}

// LoggedIn reports whether the identity names a user.
func (i *Identity) LoggedIn() bool {
	return i != nil && strings.TrimSpace(i.Username) != ""
}

// Comment is a project lead's remark on a contributor's staged statement.
type Comment struct {
	ID                  int64  `json:"comment_id"`
	StatementID         string `json:"statement_id"`
	Comment             string `json:"comment"`
	ProjectLeadUsername string `json:"project_lead_username"`
	ItemID              string `json:"item_id"`
	Username            string `json:"username"`
}

// Approval records the review state of one contributor's annotations on one item.
// The store keeps history; the latest row wins.
type Approval struct {
	ID       int64  `json:"approval_id"`
	Username string `json:"username"`
	ItemID   string `json:"item_id"`
	Approved bool   `json:"approved"`
}

// AnnotatedObject is an item with staged statements and the users who staged them.
type AnnotatedObject struct {
	ItemID       string   `json:"item_id"`
	Contributors []string `json:"contributors"`
}

// UserAnnotation is an item a user has staged statements for.
type UserAnnotation struct {
	ItemID   string `json:"item_id"`
	Approved bool   `json:"approved"`
}
