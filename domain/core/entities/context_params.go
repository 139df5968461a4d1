package entities

// CompanyProfile describes the organization behind a query.
type CompanyProfile struct {
	Size     string `json:"size,omitempty"`
	Maturity string `json:"maturity,omitempty"`
	Industry string `json:"industry,omitempty"`
}

// ContextParams are the optional structured situational inputs that bias
// retrieval and generation. An explicit struct rather than an open map so
// the fixed prompt-assembly order is a compile-time contract: retrieval
// augmentation reads Company, ManagementChallenge; prompt serialization
// reads every field under a fixed label, and the absence of one field never
// shifts another.
type ContextParams struct {
	DocumentID          string            `json:"document_id,omitempty"`
	Company             *CompanyProfile   `json:"company,omitempty"`
	ManagementRole      string            `json:"management_role,omitempty"`
	ChallengeType       string            `json:"challenge_type,omitempty"`
	ManagementChallenge string            `json:"management_challenge,omitempty"`
	Environment         map[string]string `json:"environment,omitempty"`
	Extra               map[string]string `json:"extra,omitempty"`
}

// IsZero reports whether no parameter is set at all.
func (p *ContextParams) IsZero() bool {
	if p == nil {
		return true
	}
	return p.DocumentID == "" &&
		p.Company == nil &&
		p.ManagementRole == "" &&
		p.ChallengeType == "" &&
		p.ManagementChallenge == "" &&
		len(p.Environment) == 0 &&
		len(p.Extra) == 0
}
