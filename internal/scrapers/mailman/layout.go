package mailman

// Layout locates the pieces of mailman's admin templates this client reads.
// None of these positions are documented by mailman, they are what the 2.1
// templates are observed to emit, so a template change should only ever
// require a different Layout.
//
// Zero fields of a Layout given to the client are taken from DefaultLayout,
// a partial Layout only overrides what it sets.
type Layout struct {
	// index of the roster among all <table> elements of the members page,
	// nested tables included, in document order
	RosterTable int `json:"roster_table"`
	// row of the roster table that carries the per-letter links when the
	// roster is split across pages
	LetterRow int `json:"letter_row"`
	// first row holding a member when the whole roster fits on one page
	SinglePageFirstRow int `json:"single_page_first_row"`
	// first row holding a member on a letter page, letter pages carry an
	// extra header row summarizing the pagination
	LetterPageFirstRow int `json:"letter_page_first_row"`
	// <td> of a roster row holding the member address
	AddressCell int `json:"address_cell"`

	// the csrf token is the value of the first TokenInput of the first
	// TokenForm of the members page
	TokenForm  string `json:"token_form"`
	TokenInput string `json:"token_input"`

	// result pages carry a ResultHeading if at least one entry succeeded,
	// followed by a ResultList of ResultItem entries
	ResultHeading string `json:"result_heading"`
	ResultList    string `json:"result_list"`
	ResultItem    string `json:"result_item"`
	// separates an entry from the warning attached to it
	FailureMarker string `json:"failure_marker"`

	// the first ConfirmationHeading of a change-of-address result echoes
	// both addresses on success
	ConfirmationHeading string `json:"confirmation_heading"`
}

var DefaultLayout = Layout{
	RosterTable:        4,
	LetterRow:          1,
	SinglePageFirstRow: 2,
	LetterPageFirstRow: 3,
	AddressCell:        1,

	TokenForm:  "form",
	TokenInput: "input",

	ResultHeading: "h5",
	ResultList:    "ul",
	ResultItem:    "li",
	FailureMarker: "--",

	ConfirmationHeading: "h3",
}

// the submit button label is localized by mailman, this is the one of the
// german templates
const DefaultSubmitLabel = "Änderungen speichern"

const (
	endpoint_login          = "/"
	endpoint_members        = "/members"
	endpoint_members_add    = "/members/add"
	endpoint_members_remove = "/members/remove"
	endpoint_members_change = "/members/change"
)

const (
	field_password = "adminpw"
	field_token    = "csrf_token"
	field_submit   = "setmemberopts_btn"

	field_subscribe_or_invite     = "subscribe_or_invite"
	field_send_welcome_msg        = "send_welcome_msg_to_this_batch"
	field_send_owner_notification = "send_notifications_to_list_owner"
	field_subscribees             = "subscribees"

	field_send_unsub_ack                = "send_unsub_ack_to_this_batch"
	field_send_owner_unsub_notification = "send_unsub_notifications_to_list_owner"
	field_unsubscribees                 = "unsubscribees"

	field_change_from = "change_from"
	field_change_to   = "change_to"
)
