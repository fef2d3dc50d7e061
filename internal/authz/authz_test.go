package authz

import (
	"testing"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

func TestAllowed(t *testing.T) {
	owner := domain.User{ID: "u-owner", Role: domain.RoleBuyer}
	bidder := domain.User{ID: "u-bidder", Role: domain.RoleSeller}
	admin := domain.User{ID: "u-admin", Role: domain.RoleAdmin}
	res := Resource{OwnerID: "u-owner", AssigneeID: "u-bidder"}

	if !Allowed(owner, ManageProject, res) {
		t.Errorf("owner must manage their project")
	}
	if Allowed(bidder, ManageProject, res) {
		t.Errorf("bidder must not manage the project")
	}
	if !Allowed(bidder, SubmitWork, res) {
		t.Errorf("accepted bidder must submit work")
	}
	if Allowed(owner, SubmitWork, res) {
		t.Errorf("owner must not submit work")
	}
	if !Allowed(admin, Moderate, res) {
		t.Errorf("admin must moderate")
	}
	if Allowed(owner, Moderate, res) || Allowed(bidder, Moderate, res) {
		t.Errorf("non-admins must not moderate")
	}
	if Allowed(domain.User{}, ManageProject, Resource{}) {
		t.Errorf("empty actor on empty resource must be denied")
	}
}
