package model

import "strings"

// OrganizationType classifies the responding organization
type OrganizationType string

const (
	OrgLargeHospital     OrganizationType = "Large Hospital (>500 beds)"
	OrgRegionalCenter    OrganizationType = "Regional Medical Center (100-500 beds)"
	OrgCommunityHospital OrganizationType = "Community Hospital (<100 beds)"
	OrgSpecialtyClinic   OrganizationType = "Specialty Clinic"
	OrgResearch          OrganizationType = "Research Institution"
	OrgHealthTech        OrganizationType = "Health Tech Provider"
)

var organizationTypes = []OrganizationType{
	OrgLargeHospital,
	OrgRegionalCenter,
	OrgCommunityHospital,
	OrgSpecialtyClinic,
	OrgResearch,
	OrgHealthTech,
}

// OrganizationTypes returns the selectable organization types in display order
func OrganizationTypes() []OrganizationType {
	out := make([]OrganizationType, len(organizationTypes))
	copy(out, organizationTypes)
	return out
}

// IsValid reports whether t is a known organization type
func (t OrganizationType) IsValid() bool {
	for _, known := range organizationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Contains is a substring match used by the benchmark tables
func (t OrganizationType) Contains(s string) bool {
	return strings.Contains(string(t), s)
}

// OrganizationContext identifies who is taking the assessment
type OrganizationContext struct {
	Email        string           `json:"email" bson:"email"`
	Organization string           `json:"organization" bson:"organization"`
	OrgType      OrganizationType `json:"orgType" bson:"orgType"`
}
