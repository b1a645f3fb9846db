package commands

import (
	"context"
	"github.com/basset-hound/houndctl/rpc/common"
)

// EvidencePackage describes a new evidence package. Only Name is required.
type EvidencePackage struct {
	Name            string
	Description     string
	InvestigationID string
	CaseNumber      string
	Tags            []string
}

func CreateEvidencePackage(ctx context.Context, inv Invoker, pkg EvidencePackage) (common.Result, error) {
	p := params{"name": pkg.Name}.
		setString("description", pkg.Description).
		setString("investigationId", pkg.InvestigationID).
		setString("caseNumber", pkg.CaseNumber).
		setStrings("tags", pkg.Tags)
	return inv.Invoke(ctx, "create_evidence_package", p)
}

// SealEvidencePackage seals packageID (the active package if empty) so it
// can no longer be modified. sealedBy defaults to "investigator".
func SealEvidencePackage(ctx context.Context, inv Invoker, packageID, sealedBy string) (common.Result, error) {
	if sealedBy == "" {
		sealedBy = "investigator"
	}
	p := params{"sealedBy": sealedBy}
	return inv.Invoke(ctx, "seal_evidence_package", p.setString("packageId", packageID))
}

// VerifyEvidencePackage checks the hashes of all evidence in the package
func VerifyEvidencePackage(ctx context.Context, inv Invoker, packageID string) (common.Result, error) {
	return inv.Invoke(ctx, "verify_evidence_package", params{"packageId": packageID})
}

func ListEvidencePackages(ctx context.Context, inv Invoker) (common.Result, error) {
	return inv.Invoke(ctx, "list_evidence_packages", nil)
}
