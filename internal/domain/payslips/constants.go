package payslips

const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusPaid     = "paid"

	DefaultRegion = "Headquarters"
)

// nextStatus encodes the only legal forward transitions. Nothing moves a
// payslip backwards.
var nextStatus = map[string]string{
	StatusDraft:    StatusApproved,
	StatusApproved: StatusPaid,
}

func CanTransition(from, to string) bool {
	return nextStatus[from] == to && to != ""
}

var monthNames = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}
