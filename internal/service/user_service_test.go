package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/binwatch/internal/domain"
	apperrors "github.com/spec-kit/binwatch/pkg/util"
)

func TestUpdateRoleRejectsSelfChange(t *testing.T) {
	profiles := newFakeProfileRepo()
	profiles.byUID["uid-super"] = &domain.UserProfile{UID: "uid-super", Role: domain.RoleSuperAdmin, Region: "Lagos"}
	svc := NewUserService(profiles, zap.NewNop())

	actor := &domain.UserProfile{UID: "uid-super", Role: domain.RoleSuperAdmin}
	err := svc.UpdateRole(context.Background(), actor, "uid-super", domain.RoleUser)
	if !apperrors.IsCode(err, "FORBIDDEN") {
		t.Fatalf("err = %v, want FORBIDDEN", err)
	}
	if profiles.byUID["uid-super"].Role != domain.RoleSuperAdmin {
		t.Fatal("self role change must not mutate")
	}
}

func TestUpdateRoleValidation(t *testing.T) {
	svc := NewUserService(newFakeProfileRepo(), zap.NewNop())
	actor := &domain.UserProfile{UID: "uid-super", Role: domain.RoleSuperAdmin}

	err := svc.UpdateRole(context.Background(), actor, "uid-x", "owner")
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	err = svc.UpdateRole(context.Background(), actor, "uid-missing", domain.RoleAdmin)
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestUpdateRegion(t *testing.T) {
	profiles := newFakeProfileRepo()
	profiles.byUID["uid-1"] = &domain.UserProfile{UID: "uid-1", Role: domain.RoleUser, Region: "Lagos"}
	svc := NewUserService(profiles, zap.NewNop())

	if err := svc.UpdateRegion(context.Background(), "uid-1", "Kano"); err != nil {
		t.Fatalf("update region: %v", err)
	}
	if profiles.byUID["uid-1"].Region != "Kano" {
		t.Fatalf("region = %q, want Kano", profiles.byUID["uid-1"].Region)
	}

	err := svc.UpdateRegion(context.Background(), "uid-1", "Atlantis")
	if !apperrors.IsCode(err, "VALIDATION_FAILED") {
		t.Fatalf("err = %v, want VALIDATION_FAILED", err)
	}

	err = svc.UpdateRegion(context.Background(), "uid-missing", "Kano")
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestNotificationMarkReadOwnership(t *testing.T) {
	mailbox := &fakeNotificationRepo{}
	svc := NewNotificationService(mailbox, nil, zap.NewNop())

	n := &domain.Notification{UserID: "uid-owner", Title: "Report Acknowledged", Type: domain.NotificationReportAcknowledged}
	if err := mailbox.Create(context.Background(), n); err != nil {
		t.Fatalf("seed: %v", err)
	}

	err := svc.MarkRead(context.Background(), n.ID, "uid-other")
	if !apperrors.IsCode(err, "NOT_FOUND") {
		t.Fatalf("err = %v, want NOT_FOUND for foreign mailbox", err)
	}

	if err := svc.MarkRead(context.Background(), n.ID, "uid-owner"); err != nil {
		t.Fatalf("owner mark read: %v", err)
	}
	items, _ := svc.ListForUser(context.Background(), "uid-owner", 10)
	if len(items) != 1 || !items[0].Read {
		t.Fatalf("items = %+v, want single read entry", items)
	}
}
