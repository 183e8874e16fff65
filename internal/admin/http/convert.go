package http

import (
	"encoding/json"

	"github.com/aussiebroadwan/godview/internal/admin/domain"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/pkg/adminsdk"
)

// Conversions from domain values to their wire form. Secrets such as
// password hashes, token fingerprints and MFA seeds never leave here.

func toUser(u domain.User) adminsdk.User {
	return adminsdk.User{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Role:           u.Role.String(),
		OrganizationID: u.OrganizationID,
		SupplierID:     u.SupplierID,
		IsSuspended:    u.IsSuspended,
		EmailVerified:  u.EmailVerified,
		MFAEnabled:     u.MFAEnabled(),
		CreatedAt:      u.CreatedAt,
	}
}

func toOrganization(o domain.Organization) adminsdk.Organization {
	return adminsdk.Organization{
		ID:               o.ID,
		Name:             o.Name,
		Slug:             o.Slug,
		Plan:             string(o.Plan),
		Status:           string(o.Status),
		MonthlyRevenue:   o.MonthlyRevenue.String(),
		Industry:         o.Industry,
		Size:             o.Size,
		ContactEmail:     o.ContactEmail,
		Phone:            o.Phone,
		Website:          o.Website,
		CreatedBy:        o.CreatedBy,
		LastActivityAt:   o.LastActivityAt,
		SuspendedAt:      o.SuspendedAt,
		SuspendedBy:      o.SuspendedBy,
		SuspensionReason: o.SuspensionReason,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

func toOrganizationDetail(d domain.OrganizationDetail) adminsdk.OrganizationDetail {
	members := make([]adminsdk.Member, 0, len(d.Members))
	for _, m := range d.Members {
		members = append(members, adminsdk.Member{
			ID:        m.ID,
			UserID:    m.UserID,
			Name:      m.UserName,
			Email:     m.UserEmail,
			Role:      m.Role.String(),
			CreatedAt: m.CreatedAt,
		})
	}
	return adminsdk.OrganizationDetail{Organization: toOrganization(d.Organization), Members: members}
}

func toInvitation(i domain.Invitation) adminsdk.Invitation {
	return adminsdk.Invitation{
		ID:             i.ID,
		Email:          i.Email,
		OrganizationID: i.OrganizationID,
		Role:           i.Role.String(),
		SupplierID:     i.SupplierID,
		Status:         string(i.Status),
		InvitedBy:      i.InvitedBy,
		ExpiresAt:      i.ExpiresAt,
		CreatedAt:      i.CreatedAt,
	}
}

func toIssuedInvitation(i service.IssuedInvitation) adminsdk.IssuedInvitation {
	return adminsdk.IssuedInvitation{
		Invitation: toInvitation(i.Invitation),
		Token:      i.Token,
		Link:       i.Link,
	}
}

func toSuperAdminInvitation(i domain.SuperAdminInvitation, inviterName string) adminsdk.SuperAdminInvitation {
	return adminsdk.SuperAdminInvitation{
		ID:          i.ID,
		Email:       i.Email,
		Status:      string(i.Status),
		InvitedBy:   i.InvitedBy,
		InviterName: inviterName,
		ExpiresAt:   i.ExpiresAt,
		CreatedAt:   i.CreatedAt,
	}
}

func toAuditLog(e domain.AuditEntry) adminsdk.AuditLog {
	var md json.RawMessage
	if e.Metadata != nil {
		// Metadata payloads are plain tagged structs; marshaling cannot fail.
		md, _ = json.Marshal(e.Metadata)
	}
	return adminsdk.AuditLog{
		ID:             e.ID,
		Action:         string(e.Action),
		PerformedBy:    e.PerformedBy,
		PerformerName:  e.PerformerName,
		PerformerEmail: e.PerformerEmail,
		TargetType:     string(e.Target.Type),
		TargetID:       e.Target.ID,
		TargetName:     e.Target.Name,
		Metadata:       md,
		IPAddress:      e.IPAddress,
		UserAgent:      e.UserAgent,
		CreatedAt:      e.CreatedAt,
	}
}

func toAuditLogs(entries []domain.AuditEntry) []adminsdk.AuditLog {
	out := make([]adminsdk.AuditLog, 0, len(entries))
	for _, e := range entries {
		out = append(out, toAuditLog(e))
	}
	return out
}

func toFeatureFlag(f domain.FeatureFlag) adminsdk.FeatureFlag {
	enabled, disabled := f.EnabledForOrgs, f.DisabledForOrgs
	if enabled == nil {
		enabled = []string{}
	}
	if disabled == nil {
		disabled = []string{}
	}
	return adminsdk.FeatureFlag{
		ID:              f.ID,
		Key:             f.Key,
		Name:            f.Name,
		Description:     f.Description,
		IsEnabled:       f.IsEnabled,
		EnabledForOrgs:  enabled,
		DisabledForOrgs: disabled,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

func toPlatformStats(s domain.PlatformStats) adminsdk.PlatformStats {
	byStatus := make(map[string]int, len(s.OrgsByStatus))
	for k, v := range s.OrgsByStatus {
		byStatus[string(k)] = v
	}
	byPlan := make(map[string]int, len(s.OrgsByPlan))
	for k, v := range s.OrgsByPlan {
		byPlan[string(k)] = v
	}
	return adminsdk.PlatformStats{
		TotalMRR:     s.TotalMRR.String(),
		ActiveOrgs:   s.ActiveOrgs,
		TotalOrgs:    s.TotalOrgs,
		TotalUsers:   s.TotalUsers,
		OrgsByStatus: byStatus,
		OrgsByPlan:   byPlan,
	}
}

func toEmailDelivery(d domain.EmailDelivery) adminsdk.EmailDelivery {
	return adminsdk.EmailDelivery{
		ID:                d.ID,
		Recipient:         d.Recipient,
		Subject:           d.Subject,
		Template:          d.Template,
		Status:            string(d.Status),
		ProviderMessageID: d.ProviderMessageID,
		Error:             d.Error,
		CreatedAt:         d.CreatedAt,
		SentAt:            d.SentAt,
	}
}
