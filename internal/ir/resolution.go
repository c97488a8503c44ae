package ir

// OutcomeOK is the Outcome of a resolution that produced a result.
const OutcomeOK = "OK"

// Resolution is one recorded resolver call.
//
// Outcome is OutcomeOK or the failure code of the call. Records and Digest
// are only set for OutcomeOK.
type Resolution struct {
	ID        string              `json:"id"`
	Seq       int64               `json:"seq"`
	ActionSet string              `json:"action_set"`
	Action    string              `json:"action"`
	Policy    string              `json:"policy"`
	Outcome   string              `json:"outcome"`
	Records   []BindingOriginData `json:"records"`
	Digest    string              `json:"digest,omitempty"`
}

// Succeeded reports whether the resolution produced a result.
func (r Resolution) Succeeded() bool {
	return r.Outcome == OutcomeOK
}
