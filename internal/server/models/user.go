package models

import (
	"slices"
	"time"
)

// User is the local record of an identity-provider subject.
type User struct {
	ID string
	// TokenIdentifier is the stable external subject id ("issuer|subject").
	TokenIdentifier string
	// OrgIDs holds the organizations the user belongs to.
	OrgIDs    []string
	CreatedAt time.Time
}

// HasOrg reports whether orgID is among the user's memberships.
func (u *User) HasOrg(orgID string) bool {
	return slices.Contains(u.OrgIDs, orgID)
}

// SameOrgs reports whether the user's memberships equal orgIDs as a set.
func (u *User) SameOrgs(orgIDs []string) bool {
	a := slices.Clone(u.OrgIDs)
	b := slices.Clone(orgIDs)
	slices.Sort(a)
	slices.Sort(b)
	return slices.Equal(slices.Compact(a), slices.Compact(b))
}
